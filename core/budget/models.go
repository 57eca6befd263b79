package budget

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/trezcool/bajeti/core"
)

// Status is a budget version's place in the approval workflow:
// draft -> submitted -> approved -> superseded.
type Status string

const (
	StatusDraft      Status = "draft"
	StatusSubmitted  Status = "submitted"
	StatusApproved   Status = "approved"
	StatusSuperseded Status = "superseded"
)

var validTransitions = map[Status][]Status{
	StatusDraft:     {StatusSubmitted},
	StatusSubmitted: {StatusApproved, StatusDraft},
	StatusApproved:  {StatusSuperseded},
}

// CanTransition reports whether moving from s to next is a legal workflow step.
func (s Status) CanTransition(next Status) bool {
	for _, allowed := range validTransitions[s] {
		if next == allowed {
			return true
		}
	}
	return false
}

// LineKind tags a statement line for rollup.
type LineKind string

const (
	LineRevenue LineKind = "revenue"
	LineCost    LineKind = "cost"
	LineCapex   LineKind = "capex"
)

type (
	// Version is one complete budget for a fiscal year. All pipeline records
	// are scoped to a version; approving a new version supersedes the prior
	// approved one for the same fiscal year.
	Version struct {
		ID           string          `json:"id"`
		Name         string          `json:"name"`
		FiscalYear   int             `json:"fiscal_year"`
		Status       Status          `json:"status"`
		ExchangeRate decimal.Decimal `json:"exchange_rate"`
		CreatedAt    time.Time       `json:"created_at"`
		UpdatedAt    time.Time       `json:"updated_at"`
		SubmittedAt  *time.Time      `json:"submitted_at,omitempty"`
		ApprovedAt   *time.Time      `json:"approved_at,omitempty"`
	}

	// NewVersion contains information needed to open a new budget version.
	NewVersion struct {
		Name         string          `json:"name" validate:"required"`
		FiscalYear   int             `json:"fiscal_year" validate:"min=2000,max=2100"`
		ExchangeRate decimal.Decimal `json:"exchange_rate"`
	}

	// StatementLine is one revenue/cost/capex line of a version's financial
	// statement. Rollups are plain summation; no decision logic lives here.
	StatementLine struct {
		Kind   LineKind        `json:"kind"`
		Label  string          `json:"label"`
		Amount decimal.Decimal `json:"amount"`
	}

	// Summary is the statement rollup; amounts use half-up money rounding.
	// NetConverted applies the version's single fixed exchange rate.
	Summary struct {
		Revenue      decimal.Decimal `json:"revenue"`
		Cost         decimal.Decimal `json:"cost"`
		Capex        decimal.Decimal `json:"capex"`
		Net          decimal.Decimal `json:"net"`
		NetConverted decimal.Decimal `json:"net_converted"`
	}
)

func (nv *NewVersion) Validate() error {
	nv.Name = core.CleanString(nv.Name)
	if err := core.Validate.Struct(nv); err != nil {
		return err
	}
	if nv.ExchangeRate.IsNegative() {
		return core.NewValidationError(
			nil,
			core.FieldError{Field: "exchange_rate", Error: "must not be negative"},
		)
	}
	return nil
}
