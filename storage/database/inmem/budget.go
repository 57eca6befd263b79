package inmemdb

import (
	"context"
	"sort"

	"github.com/trezcool/bajeti/core/budget"
)

type budgetRepository struct {
	db *budgetTables
}

var _ budget.Repository = (*budgetRepository)(nil) // interface compliance check

func NewBudgetRepository(db *DB) *budgetRepository {
	return &budgetRepository{db: db.budget}
}

func (repo *budgetRepository) CreateVersion(_ context.Context, v budget.Version) (budget.Version, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()
	repo.db.versions[v.ID] = &v
	return v, nil
}

func (repo *budgetRepository) GetVersion(_ context.Context, id string) (budget.Version, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()
	if v, ok := repo.db.versions[id]; ok {
		return *v, nil
	}
	return budget.Version{}, budget.ErrNotFound
}

func (repo *budgetRepository) QueryVersions(_ context.Context) ([]budget.Version, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	versions := make([]budget.Version, 0, len(repo.db.versions))
	for _, v := range repo.db.versions {
		versions = append(versions, *v)
	}
	sort.Slice(versions, func(i, j int) bool { return versions[i].CreatedAt.Before(versions[j].CreatedAt) })
	return versions, nil
}

func (repo *budgetRepository) GetApprovedVersion(_ context.Context, fiscalYear int) (budget.Version, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, v := range repo.db.versions {
		if v.FiscalYear == fiscalYear && v.Status == budget.StatusApproved {
			return *v, nil
		}
	}
	return budget.Version{}, budget.ErrNotFound
}

func (repo *budgetRepository) UpdateVersion(_ context.Context, v budget.Version) (budget.Version, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.versions[v.ID]; !ok {
		return budget.Version{}, budget.ErrNotFound
	}
	repo.db.versions[v.ID] = &v
	return v, nil
}

func (repo *budgetRepository) GetStatementLines(_ context.Context, versionID string) ([]budget.StatementLine, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()
	return append([]budget.StatementLine(nil), repo.db.lines[versionID]...), nil
}

func (repo *budgetRepository) ReplaceStatementLines(_ context.Context, versionID string, lines []budget.StatementLine) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()
	repo.db.lines[versionID] = append([]budget.StatementLine(nil), lines...)
	return nil
}
