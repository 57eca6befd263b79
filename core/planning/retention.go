package planning

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/trezcool/bajeti/core"
)

var (
	minRetentionRate = decimal.RequireFromString("0.50")
	maxRetentionRate = decimal.NewFromInt(1)
	maxAttritionRate = decimal.RequireFromString("0.50")
)

// RetentionParams models one year-over-year cohort transition: how many of the
// current students stay and how many new students enter. Retention and
// attrition need not sum to 1; attrition is reported separately for audit.
type RetentionParams struct {
	RetentionRate decimal.Decimal `json:"retention_rate"`
	AttritionRate decimal.Decimal `json:"attrition_rate"`
	NewEntrants   int             `json:"new_entrants"`
}

func (p RetentionParams) Validate() error {
	if p.RetentionRate.Cmp(minRetentionRate) < 0 || p.RetentionRate.Cmp(maxRetentionRate) > 0 {
		return core.NewValidationError(
			ErrInvalidRetentionRate,
			core.FieldError{Field: "retention_rate", Error: fmt.Sprintf("got %s", p.RetentionRate)},
		)
	}
	if p.AttritionRate.IsNegative() || p.AttritionRate.Cmp(maxAttritionRate) > 0 {
		return core.NewValidationError(
			ErrInvalidAttritionRate,
			core.FieldError{Field: "attrition_rate", Error: fmt.Sprintf("got %s", p.AttritionRate)},
		)
	}
	if p.NewEntrants < 0 {
		return core.NewValidationError(
			nil,
			core.FieldError{Field: "new_entrants", Error: "must not be negative"},
		)
	}
	return nil
}

// NextCohort computes next year's count for a cohort:
// floor(count x retention) + new entrants, clamped to >= 0.
func NextCohort(count int, p RetentionParams) (int, error) {
	if err := p.Validate(); err != nil {
		return 0, err
	}
	survivors := int(decimal.NewFromInt(int64(count)).Mul(p.RetentionRate).Floor().IntPart())
	next := survivors + p.NewEntrants
	if next < 0 {
		next = 0
	}
	return next, nil
}

// Attrition answers "how many students leave": round-half-up(count x rate).
func Attrition(count int, rate decimal.Decimal) (int, error) {
	if rate.IsNegative() || rate.Cmp(maxAttritionRate) > 0 {
		return 0, core.NewValidationError(
			ErrInvalidAttritionRate,
			core.FieldError{Field: "attrition_rate", Error: fmt.Sprintf("got %s", rate)},
		)
	}
	return int(decimal.NewFromInt(int64(count)).Mul(rate).Round(0).IntPart()), nil
}
