package planning

import (
	"sort"

	"github.com/shopspring/decimal"
)

// Requirement is the whole-position staffing need of one subject for a version:
// exact fractional FTE (half-up, 2 places), the ceiling-rounded position count
// and the residual overtime hours beyond what whole positions cover.
type Requirement struct {
	Subject       string          `json:"subject"`
	Cycle         Cycle           `json:"cycle"`
	TotalHours    decimal.Decimal `json:"total_hours"`
	StandardLoad  decimal.Decimal `json:"standard_load"`
	ExactFTE      decimal.Decimal `json:"exact_fte"`
	RoundedFTE    int             `json:"rounded_fte"`
	OvertimeHours decimal.Decimal `json:"overtime_hours"`
}

// ComputeRequirements aggregates weekly hours by subject across levels and
// converts them into whole teaching positions. A subject spanning both cycles
// uses the secondary load, since secondary drives the tighter obligation.
func (cfg Config) ComputeRequirements(records []SubjectHoursRecord) ([]Requirement, error) {
	if len(records) == 0 {
		return nil, missingPrerequisite("no weekly hour records on record")
	}

	type subjectAgg struct {
		hours decimal.Decimal
		cycle Cycle
	}
	bySubject := make(map[string]*subjectAgg)
	for _, rec := range records {
		agg, ok := bySubject[rec.Subject]
		if !ok {
			agg = &subjectAgg{hours: decimal.Zero, cycle: CyclePrimary}
			bySubject[rec.Subject] = agg
		}
		agg.hours = agg.hours.Add(rec.TotalHours)
		if cfg.LevelCycle(rec.Level) == CycleSecondary {
			agg.cycle = CycleSecondary
		}
	}

	reqs := make([]Requirement, 0, len(bySubject))
	for subject, agg := range bySubject {
		load := cfg.StandardLoad(agg.cycle)
		exact := agg.hours.Div(load).Round(2)
		rounded := int(exact.Ceil().IntPart())
		overtime := agg.hours.Sub(decimal.NewFromInt(int64(rounded)).Mul(load))
		if overtime.IsNegative() {
			overtime = decimal.Zero
		}
		reqs = append(reqs, Requirement{
			Subject:       subject,
			Cycle:         agg.cycle,
			TotalHours:    agg.hours,
			StandardLoad:  load,
			ExactFTE:      exact,
			RoundedFTE:    rounded,
			OvertimeHours: overtime.Round(2),
		})
	}

	sort.Slice(reqs, func(i, j int) bool { return reqs[i].Subject < reqs[j].Subject })
	return reqs, nil
}
