// Package inmemdb provides map-backed repositories used in tests and local
// development where a real Postgres instance is unavailable.
package inmemdb

import (
	"sync"

	"github.com/trezcool/bajeti/core/budget"
	"github.com/trezcool/bajeti/core/planning"
	"github.com/trezcool/bajeti/core/user"
)

type (
	userTable struct {
		mutex sync.RWMutex
		table map[string]*user.User
	}

	budgetTables struct {
		mutex    sync.RWMutex
		versions map[string]*budget.Version
		lines    map[string][]budget.StatementLine // by version ID
	}

	// planningTables hold every pipeline stage keyed by version ID.
	planningTables struct {
		mutex        sync.RWMutex
		projections  map[string][]planning.Projection
		structures   map[string][]planning.ClassStructure
		matrix       map[string][]planning.SubjectHoursEntry
		subjectHours map[string][]planning.SubjectHoursRecord
		requirements map[string][]planning.Requirement
		allocations  map[string][]planning.Allocation
		gapRows      map[string][]planning.GapRow
	}

	DB struct {
		user     *userTable
		budget   *budgetTables
		planning *planningTables
	}
)

func NewDB() *DB {
	return &DB{
		user: &userTable{table: make(map[string]*user.User)},
		budget: &budgetTables{
			versions: make(map[string]*budget.Version),
			lines:    make(map[string][]budget.StatementLine),
		},
		planning: &planningTables{
			projections:  make(map[string][]planning.Projection),
			structures:   make(map[string][]planning.ClassStructure),
			matrix:       make(map[string][]planning.SubjectHoursEntry),
			subjectHours: make(map[string][]planning.SubjectHoursRecord),
			requirements: make(map[string][]planning.Requirement),
			allocations:  make(map[string][]planning.Allocation),
			gapRows:      make(map[string][]planning.GapRow),
		},
	}
}
