package planning

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/trezcool/bajeti/core"
)

// sanity envelope for configurable class-size bounds
const (
	minClassSizeFloor   = 15
	maxClassSizeCeiling = 40
)

// ClassStructure is a level's division breakdown derived from its projected
// enrollment. It is recomputed (never hand-patched) whenever enrollment changes.
type ClassStructure struct {
	Level          string          `json:"level"`
	TotalStudents  int             `json:"total_students"`
	Divisions      int             `json:"divisions"`
	AvgSize        decimal.Decimal `json:"avg_size"`
	HasAuxiliary   bool            `json:"has_auxiliary"`
	AuxiliaryCount int             `json:"auxiliary_count"`
}

func (b ClassSizeBounds) Validate() error {
	if b.Min >= b.Target || b.Target > b.Max {
		return core.NewValidationError(
			ErrInvalidClassSizeBounds,
			core.FieldError{Field: "class_size", Error: fmt.Sprintf("got min=%d target=%d max=%d", b.Min, b.Target, b.Max)},
		)
	}
	if b.Min < minClassSizeFloor || b.Max > maxClassSizeCeiling {
		return core.NewValidationError(
			ErrInvalidClassSizeBounds,
			core.FieldError{Field: "class_size", Error: fmt.Sprintf("bounds must stay within [%d, %d]", minClassSizeFloor, maxClassSizeCeiling)},
		)
	}
	return nil
}

// BuildClassStructure converts a level's total students into the minimal
// division count keeping the average size within (0, MaxAvgDivisionSize]. This
// is a fixed target-size divisor with ceiling rounding, not a bin-packing
// optimizer. Early-years levels get auxPerDivision (default Config.AuxPerDivision)
// auxiliary staff per division.
func (cfg Config) BuildClassStructure(level string, students int, auxPerDivision ...int) (ClassStructure, error) {
	if err := cfg.ClassSize.Validate(); err != nil {
		return ClassStructure{}, err
	}
	if students < 0 {
		return ClassStructure{}, core.NewValidationError(
			nil,
			core.FieldError{Field: "total_students", Error: "must not be negative"},
		)
	}

	// A level with no students keeps a single empty division; the average-size
	// invariant only applies when there is someone to average.
	divisions := 1
	avg := decimal.Zero
	if students > 0 {
		divisions = ceilDiv(students, cfg.ClassSize.Target)
		avg = avgSize(students, divisions)
		for avg.Cmp(cfg.MaxAvgDivisionSize) > 0 {
			divisions++
			avg = avgSize(students, divisions)
		}
	}

	cs := ClassStructure{
		Level:         level,
		TotalStudents: students,
		Divisions:     divisions,
		AvgSize:       avg,
	}

	if cfg.EarlyYears[level] {
		per := cfg.AuxPerDivision
		if len(auxPerDivision) > 0 {
			per = auxPerDivision[0]
		}
		cs.AuxiliaryCount = divisions * per
		cs.HasAuxiliary = cs.AuxiliaryCount > 0
	}
	return cs, nil
}

func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}

func avgSize(students, divisions int) decimal.Decimal {
	return decimal.NewFromInt(int64(students)).
		Div(decimal.NewFromInt(int64(divisions))).
		Round(2)
}
