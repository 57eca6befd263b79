package planning

import (
	"sort"

	"github.com/shopspring/decimal"
)

// GapStatus classifies a subject's needs-vs-means comparison. Exact equality,
// no tolerance band.
type GapStatus string

const (
	GapBalanced GapStatus = "balanced"
	GapDeficit  GapStatus = "deficit"
	GapSurplus  GapStatus = "surplus"
)

type (
	// Allocation is one actually-allocated staffing row, entered independently
	// of the pipeline and read-only here.
	Allocation struct {
		Subject  string          `json:"subject"`
		Cycle    Cycle           `json:"cycle"`
		Category string          `json:"category"`
		FTE      decimal.Decimal `json:"fte"`
	}

	// GapRow compares required whole-position staffing against allocated
	// staffing for one subject. Deficit = required - allocated.
	GapRow struct {
		Subject      string          `json:"subject"`
		RequiredFTE  int             `json:"required_fte"`
		AllocatedFTE decimal.Decimal `json:"allocated_fte"`
		Deficit      decimal.Decimal `json:"deficit"`
		Status       GapStatus       `json:"status"`
	}
)

// AnalyzeGaps builds one row per subject. An empty allocation set is valid and
// yields a full deficit. Allocations for subjects with no requirement surface
// as surplus rows rather than being dropped.
func AnalyzeGaps(requirements []Requirement, allocations []Allocation) ([]GapRow, error) {
	if len(requirements) == 0 {
		return nil, missingPrerequisite("no staffing requirements on record")
	}

	allocated := make(map[string]decimal.Decimal)
	for _, alloc := range allocations {
		allocated[alloc.Subject] = allocated[alloc.Subject].Add(alloc.FTE)
	}

	rows := make([]GapRow, 0, len(requirements))
	seen := make(map[string]bool, len(requirements))
	for _, req := range requirements {
		rows = append(rows, newGapRow(req.Subject, req.RoundedFTE, allocated[req.Subject]))
		seen[req.Subject] = true
	}
	for subject, fte := range allocated {
		if !seen[subject] {
			rows = append(rows, newGapRow(subject, 0, fte))
		}
	}

	sort.Slice(rows, func(i, j int) bool { return rows[i].Subject < rows[j].Subject })
	return rows, nil
}

func newGapRow(subject string, required int, allocated decimal.Decimal) GapRow {
	deficit := decimal.NewFromInt(int64(required)).Sub(allocated)
	status := GapBalanced
	switch {
	case deficit.IsPositive():
		status = GapDeficit
	case deficit.IsNegative():
		status = GapSurplus
	}
	return GapRow{
		Subject:      subject,
		RequiredFTE:  required,
		AllocatedFTE: allocated,
		Deficit:      deficit,
		Status:       status,
	}
}

// AllocatedByCycle aggregates allocated FTE per cycle, a cross-cut view
// independent of subject.
func AllocatedByCycle(allocations []Allocation) map[Cycle]decimal.Decimal {
	byCycle := make(map[Cycle]decimal.Decimal)
	for _, alloc := range allocations {
		byCycle[alloc.Cycle] = byCycle[alloc.Cycle].Add(alloc.FTE)
	}
	return byCycle
}
