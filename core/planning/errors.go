package planning

import "errors"

// Every pipeline failure is a recoverable-by-caller validation condition, not a
// crash. Stages validate eagerly and fail before producing partial output.
var (
	ErrInvalidGrowthRate      = errors.New("growth rate outside the permitted band")
	ErrInvalidRetentionRate   = errors.New("retention rate must be within 0.50 and 1.00")
	ErrInvalidAttritionRate   = errors.New("attrition rate must be within 0.00 and 0.50")
	ErrCapacityExceeded       = errors.New("projected enrollment exceeds the capacity ceiling")
	ErrMissingPrerequisite    = errors.New("upstream stage output is missing for this version")
	ErrInvalidClassSizeBounds = errors.New("class size bounds must satisfy min < target <= max")
	ErrInvalidSubjectHours    = errors.New("hours per division must be within (0, 12]")
)
