package inmemdb

import (
	"context"

	"github.com/trezcool/bajeti/core/planning"
)

type planningRepository struct {
	db *planningTables
}

var _ planning.Repository = (*planningRepository)(nil) // interface compliance check

func NewPlanningRepository(db *DB) *planningRepository {
	return &planningRepository{db: db.planning}
}

func (repo *planningRepository) GetProjections(_ context.Context, versionID string) ([]planning.Projection, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()
	return append([]planning.Projection(nil), repo.db.projections[versionID]...), nil
}

func (repo *planningRepository) ReplaceProjections(_ context.Context, versionID string, projections []planning.Projection) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()
	repo.db.projections[versionID] = append([]planning.Projection(nil), projections...)
	return nil
}

func (repo *planningRepository) GetClassStructures(_ context.Context, versionID string) ([]planning.ClassStructure, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()
	return append([]planning.ClassStructure(nil), repo.db.structures[versionID]...), nil
}

func (repo *planningRepository) ReplaceClassStructures(_ context.Context, versionID string, structures []planning.ClassStructure) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()
	repo.db.structures[versionID] = append([]planning.ClassStructure(nil), structures...)
	return nil
}

func (repo *planningRepository) GetSubjectHoursMatrix(_ context.Context, versionID string) ([]planning.SubjectHoursEntry, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()
	return append([]planning.SubjectHoursEntry(nil), repo.db.matrix[versionID]...), nil
}

// SetSubjectHoursMatrix seeds the externally owned matrix; not part of
// planning.Repository.
func (repo *planningRepository) SetSubjectHoursMatrix(versionID string, entries []planning.SubjectHoursEntry) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()
	repo.db.matrix[versionID] = append([]planning.SubjectHoursEntry(nil), entries...)
}

func (repo *planningRepository) GetSubjectHours(_ context.Context, versionID string) ([]planning.SubjectHoursRecord, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()
	return append([]planning.SubjectHoursRecord(nil), repo.db.subjectHours[versionID]...), nil
}

func (repo *planningRepository) ReplaceSubjectHours(_ context.Context, versionID string, records []planning.SubjectHoursRecord) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()
	repo.db.subjectHours[versionID] = append([]planning.SubjectHoursRecord(nil), records...)
	return nil
}

func (repo *planningRepository) GetRequirements(_ context.Context, versionID string) ([]planning.Requirement, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()
	return append([]planning.Requirement(nil), repo.db.requirements[versionID]...), nil
}

func (repo *planningRepository) ReplaceRequirements(_ context.Context, versionID string, requirements []planning.Requirement) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()
	repo.db.requirements[versionID] = append([]planning.Requirement(nil), requirements...)
	return nil
}

func (repo *planningRepository) GetAllocations(_ context.Context, versionID string) ([]planning.Allocation, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()
	return append([]planning.Allocation(nil), repo.db.allocations[versionID]...), nil
}

// SetAllocations seeds the externally owned staffing allocations; not part of
// planning.Repository.
func (repo *planningRepository) SetAllocations(versionID string, allocations []planning.Allocation) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()
	repo.db.allocations[versionID] = append([]planning.Allocation(nil), allocations...)
}

func (repo *planningRepository) GetGapRows(_ context.Context, versionID string) ([]planning.GapRow, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()
	return append([]planning.GapRow(nil), repo.db.gapRows[versionID]...), nil
}

func (repo *planningRepository) ReplaceGapRows(_ context.Context, versionID string, rows []planning.GapRow) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()
	repo.db.gapRows[versionID] = append([]planning.GapRow(nil), rows...)
	return nil
}
