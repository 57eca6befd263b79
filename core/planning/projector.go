package planning

import (
	"github.com/shopspring/decimal"

	"github.com/trezcool/bajeti/core"
)

type (
	// CohortInput describes one (level, segment) cohort to project. It is
	// immutable once submitted. Either a scenario (with optional custom-rate
	// override) or per-year retention parameters drive the projection.
	CohortInput struct {
		Level      string           `json:"level" validate:"required"`
		Segment    string           `json:"segment"`
		BaseCount  int              `json:"base_count" validate:"min=0"`
		Scenario   Scenario         `json:"scenario" validate:"omitempty,scenario"`
		CustomRate *decimal.Decimal `json:"custom_rate,omitempty"`
		Horizon    int              `json:"horizon" validate:"min=1,max=10"`

		// Retention switches the projector to cohort-progression mode: one
		// entry per year transition; a single entry is applied to every year.
		Retention []RetentionParams `json:"retention,omitempty"`
	}

	// YearPoint is one projected year. Year 1 is the base year: it carries the
	// base count with zero applied growth; compounding starts at year 2.
	YearPoint struct {
		Year             int             `json:"year"`
		Count            int             `json:"count"`
		AppliedRate      decimal.Decimal `json:"applied_rate"`
		CumulativeGrowth decimal.Decimal `json:"cumulative_growth"`
	}

	// CapacityClamp records a projected value that had to be reduced to the
	// level ceiling, preserved so a reviewer can see the unclamped demand.
	CapacityClamp struct {
		Year                int             `json:"year"`
		OriginalProjection  int             `json:"original_projection"`
		ReductionApplied    int             `json:"reduction_applied"`
		ReductionPercentage decimal.Decimal `json:"reduction_percentage"`
	}

	// Projection is the full multi-year result for one cohort.
	Projection struct {
		Input            CohortInput     `json:"input"`
		Years            []YearPoint     `json:"years"`
		TotalGrowth      int             `json:"total_growth"`
		TotalGrowthPct   decimal.Decimal `json:"total_growth_pct"`
		CapacityExceeded bool            `json:"capacity_exceeded"`
		Clamps           []CapacityClamp `json:"clamps,omitempty"`
	}
)

// FinalCount returns the projected count of the last horizon year.
func (p Projection) FinalCount() int {
	if len(p.Years) == 0 {
		return 0
	}
	return p.Years[len(p.Years)-1].Count
}

// ProjectEnrollment projects one cohort over its horizon. It is pure: the full
// yearly sequence plus totals are returned, nothing is stored. Values above the
// level ceiling are clamped down and flagged rather than rejected, since an
// over-capacity projection is a valid planning outcome to surface to a human.
func (cfg Config) ProjectEnrollment(in CohortInput) (Projection, error) {
	if err := in.Validate(); err != nil {
		return Projection{}, err
	}

	retentionMode := len(in.Retention) > 0
	var rate decimal.Decimal
	if !retentionMode {
		var err error
		if rate, err = cfg.GrowthRate(in.Scenario, in.CustomRate); err != nil {
			return Projection{}, err
		}
	} else {
		for _, p := range in.Retention {
			if err := p.Validate(); err != nil {
				return Projection{}, err
			}
		}
	}

	proj := Projection{
		Input: in,
		Years: make([]YearPoint, 0, in.Horizon),
	}
	base := in.BaseCount
	ceiling := cfg.LevelCapacities[in.Level]

	count := base
	for year := 1; year <= in.Horizon; year++ {
		applied := decimal.Zero
		if year > 1 {
			if retentionMode {
				idx := year - 2
				if idx >= len(in.Retention) {
					idx = len(in.Retention) - 1 // broadcast the last transition
				}
				params := in.Retention[idx]
				prev := count
				next, err := NextCohort(prev, params)
				if err != nil {
					return Projection{}, err
				}
				count = next
				applied = effectiveRate(prev, next)
			} else {
				count = int(decimal.NewFromInt(int64(count)).
					Mul(decimal.NewFromInt(1).Add(rate)).
					Floor().IntPart())
				applied = rate
			}
		}

		if ceiling > 0 && count > ceiling {
			reduction := count - ceiling
			proj.Clamps = append(proj.Clamps, CapacityClamp{
				Year:                year,
				OriginalProjection:  count,
				ReductionApplied:    reduction,
				ReductionPercentage: pct(reduction, count),
			})
			proj.CapacityExceeded = true
			count = ceiling
		}

		proj.Years = append(proj.Years, YearPoint{
			Year:             year,
			Count:            count,
			AppliedRate:      applied,
			CumulativeGrowth: pct(count-base, base),
		})
	}

	proj.TotalGrowth = count - base
	proj.TotalGrowthPct = pct(count-base, base)
	return proj, nil
}

// effectiveRate is the realized year-over-year change ratio, used as the
// applied rate in retention mode.
func effectiveRate(prev, next int) decimal.Decimal {
	return pct(next-prev, prev)
}

// pct computes num/denom rounded to 4 places; a zero denominator yields zero.
func pct(num, denom int) decimal.Decimal {
	if denom == 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(num)).
		Div(decimal.NewFromInt(int64(denom))).
		Round(4)
}

// Validate checks structural constraints; rate-band checks happen in GrowthRate.
func (in CohortInput) Validate() error {
	if err := core.Validate.Struct(in); err != nil {
		return err
	}
	if len(in.Retention) == 0 && !in.Scenario.Valid() && in.CustomRate == nil {
		return core.NewValidationError(
			nil,
			core.FieldError{Field: "scenario", Error: "one of scenario, custom_rate or retention is required"},
		)
	}
	return nil
}
