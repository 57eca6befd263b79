package core

// Logger reports application events and errors to an external tracker
// (and the standard logger as fallback).
type Logger interface {
	Enable(enabled bool)
	Info(msg string, args ...interface{})
	Error(msg string, err error, args ...interface{})
}
