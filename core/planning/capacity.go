package planning

import (
	"fmt"

	"github.com/trezcool/bajeti/core"
)

// TotalCapacityCheck is the outcome of the school-wide aggregate check.
// Year and Total are only meaningful when Exceeded is set.
type TotalCapacityCheck struct {
	Exceeded bool `json:"exceeded"`
	Year     int  `json:"year,omitempty"`
	Total    int  `json:"total,omitempty"`
}

// ValidateCapacity checks a single projected value against a ceiling.
// Equality passes; only values beyond the ceiling fail.
func ValidateCapacity(value, ceiling int) error {
	if value > ceiling {
		return core.NewValidationError(
			ErrCapacityExceeded,
			core.FieldError{Field: "count", Error: fmt.Sprintf("%d exceeds ceiling %d", value, ceiling)},
		)
	}
	return nil
}

// CheckTotalCapacity sums all cohorts' projected counts per year and reports
// the first year whose total exceeds the global ceiling. An empty projection
// set is a no-op: not exceeded.
func CheckTotalCapacity(projections []Projection, ceiling int) TotalCapacityCheck {
	var horizon int
	for _, p := range projections {
		if len(p.Years) > horizon {
			horizon = len(p.Years)
		}
	}

	for year := 1; year <= horizon; year++ {
		var total int
		for _, p := range projections {
			if year <= len(p.Years) {
				total += p.Years[year-1].Count
			}
		}
		if total > ceiling {
			return TotalCapacityCheck{Exceeded: true, Year: year, Total: total}
		}
	}
	return TotalCapacityCheck{}
}
