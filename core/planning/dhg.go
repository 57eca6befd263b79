package planning

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/trezcool/bajeti/core"
)

var maxHoursPerDivision = decimal.NewFromInt(12)

type (
	// SubjectHoursEntry is one cell of the subject-hours matrix: how many
	// weekly hours one division of a level spends on a subject. Reference
	// data owned externally; read-only to the pipeline.
	SubjectHoursEntry struct {
		Subject          string          `json:"subject"`
		Level            string          `json:"level"`
		HoursPerDivision decimal.Decimal `json:"hours_per_division"`
		Split            bool            `json:"split"`
	}

	// SubjectHoursRecord is the computed weekly teaching-hour envelope for one
	// (subject, level) pair. Recomputation replaces prior records for the key.
	SubjectHoursRecord struct {
		Subject          string          `json:"subject"`
		Level            string          `json:"level"`
		Divisions        int             `json:"divisions"`
		HoursPerDivision decimal.Decimal `json:"hours_per_division"`
		Split            bool            `json:"split"`
		TotalHours       decimal.Decimal `json:"total_hours"`
	}
)

func (e SubjectHoursEntry) Validate() error {
	if !e.HoursPerDivision.IsPositive() || e.HoursPerDivision.Cmp(maxHoursPerDivision) > 0 {
		return core.NewValidationError(
			ErrInvalidSubjectHours,
			core.FieldError{
				Field: "hours_per_division",
				Error: fmt.Sprintf("%s/%s: got %s", e.Subject, e.Level, e.HoursPerDivision),
			},
		)
	}
	return nil
}

// ComputeSubjectHours converts division counts x the subject-hours matrix into
// weekly teaching-hour records: total = divisions x hours, doubled for split
// (half-group) classes. Deterministic and wall-clock independent: re-running on
// unchanged inputs yields identical records in identical order.
func ComputeSubjectHours(structures []ClassStructure, matrix []SubjectHoursEntry) ([]SubjectHoursRecord, error) {
	if len(structures) == 0 {
		return nil, missingPrerequisite("no class structures on record")
	}
	if len(matrix) == 0 {
		return nil, missingPrerequisite("subject-hours matrix is empty")
	}

	divisionsByLevel := make(map[string]int, len(structures))
	for _, cs := range structures {
		divisionsByLevel[cs.Level] = cs.Divisions
	}

	records := make([]SubjectHoursRecord, 0, len(matrix))
	for _, entry := range matrix {
		if err := entry.Validate(); err != nil {
			return nil, err
		}
		divisions, ok := divisionsByLevel[entry.Level]
		if !ok {
			continue // level not planned this version
		}
		total := entry.HoursPerDivision.Mul(decimal.NewFromInt(int64(divisions)))
		if entry.Split {
			total = total.Mul(decimal.NewFromInt(2))
		}
		records = append(records, SubjectHoursRecord{
			Subject:          entry.Subject,
			Level:            entry.Level,
			Divisions:        divisions,
			HoursPerDivision: entry.HoursPerDivision,
			Split:            entry.Split,
			TotalHours:       total,
		})
	}

	sort.Slice(records, func(i, j int) bool {
		if records[i].Subject != records[j].Subject {
			return records[i].Subject < records[j].Subject
		}
		return records[i].Level < records[j].Level
	})
	return records, nil
}

func missingPrerequisite(detail string) error {
	return core.NewValidationError(
		ErrMissingPrerequisite,
		core.FieldError{Field: "version", Error: detail},
	)
}
