package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/bajeti/core/budget"
)

type budgetRepository struct {
	db *sqlx.DB
}

var _ budget.Repository = (*budgetRepository)(nil) // interface compliance check

func NewBudgetRepository(db *sqlx.DB) *budgetRepository {
	return &budgetRepository{db: db}
}

type versionRow struct {
	ID           string          `db:"id"`
	Name         string          `db:"name"`
	FiscalYear   int             `db:"fiscal_year"`
	Status       string          `db:"status"`
	ExchangeRate decimal.Decimal `db:"exchange_rate"`
	CreatedAt    time.Time       `db:"created_at"`
	UpdatedAt    time.Time       `db:"updated_at"`
	SubmittedAt  null.Time       `db:"submitted_at"`
	ApprovedAt   null.Time       `db:"approved_at"`
}

func (repo budgetRepository) row(v budget.Version) versionRow {
	row := versionRow{
		ID:           v.ID,
		Name:         v.Name,
		FiscalYear:   v.FiscalYear,
		Status:       string(v.Status),
		ExchangeRate: v.ExchangeRate,
		CreatedAt:    v.CreatedAt.UTC(),
		UpdatedAt:    v.UpdatedAt.UTC(),
	}
	if v.SubmittedAt != nil {
		row.SubmittedAt = null.TimeFrom(v.SubmittedAt.UTC())
	}
	if v.ApprovedAt != nil {
		row.ApprovedAt = null.TimeFrom(v.ApprovedAt.UTC())
	}
	return row
}

func (repo budgetRepository) unrow(row versionRow) budget.Version {
	v := budget.Version{
		ID:           row.ID,
		Name:         row.Name,
		FiscalYear:   row.FiscalYear,
		Status:       budget.Status(row.Status),
		ExchangeRate: row.ExchangeRate,
		CreatedAt:    row.CreatedAt,
		UpdatedAt:    row.UpdatedAt,
	}
	v.SubmittedAt = row.SubmittedAt.Ptr()
	v.ApprovedAt = row.ApprovedAt.Ptr()
	return v
}

func (repo budgetRepository) trapNoRowsErr(err error, msg string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return budget.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo *budgetRepository) CreateVersion(ctx context.Context, v budget.Version) (budget.Version, error) {
	_, err := repo.db.NamedExecContext(ctx, `
		INSERT INTO budget_version (id, name, fiscal_year, status, exchange_rate, created_at, updated_at, submitted_at, approved_at)
		VALUES (:id, :name, :fiscal_year, :status, :exchange_rate, :created_at, :updated_at, :submitted_at, :approved_at)`,
		repo.row(v))
	if err != nil {
		return budget.Version{}, errors.Wrap(err, "inserting budget version")
	}
	return v, nil
}

func (repo *budgetRepository) GetVersion(ctx context.Context, id string) (budget.Version, error) {
	var row versionRow
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM budget_version WHERE id = $1`, id); err != nil {
		return budget.Version{}, repo.trapNoRowsErr(err, "finding budget version")
	}
	return repo.unrow(row), nil
}

func (repo *budgetRepository) QueryVersions(ctx context.Context) ([]budget.Version, error) {
	var rows []versionRow
	err := repo.db.SelectContext(ctx, &rows, `SELECT * FROM budget_version ORDER BY created_at`)
	if err != nil {
		return nil, errors.Wrap(err, "querying budget versions")
	}
	versions := make([]budget.Version, 0, len(rows))
	for _, row := range rows {
		versions = append(versions, repo.unrow(row))
	}
	return versions, nil
}

func (repo *budgetRepository) GetApprovedVersion(ctx context.Context, fiscalYear int) (budget.Version, error) {
	var row versionRow
	err := repo.db.GetContext(ctx, &row, `
		SELECT * FROM budget_version WHERE fiscal_year = $1 AND status = $2`,
		fiscalYear, budget.StatusApproved)
	if err != nil {
		return budget.Version{}, repo.trapNoRowsErr(err, "finding approved budget version")
	}
	return repo.unrow(row), nil
}

func (repo *budgetRepository) UpdateVersion(ctx context.Context, v budget.Version) (budget.Version, error) {
	res, err := repo.db.NamedExecContext(ctx, `
		UPDATE budget_version
		SET name = :name, fiscal_year = :fiscal_year, status = :status, exchange_rate = :exchange_rate,
		    updated_at = :updated_at, submitted_at = :submitted_at, approved_at = :approved_at
		WHERE id = :id`,
		repo.row(v))
	if err != nil {
		return budget.Version{}, errors.Wrap(err, "updating budget version")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return budget.Version{}, budget.ErrNotFound
	}
	return v, nil
}

type statementLineRow struct {
	Kind   string          `db:"kind"`
	Label  string          `db:"label"`
	Amount decimal.Decimal `db:"amount"`
}

func (repo *budgetRepository) GetStatementLines(ctx context.Context, versionID string) ([]budget.StatementLine, error) {
	var rows []statementLineRow
	err := repo.db.SelectContext(ctx, &rows, `
		SELECT kind, label, amount FROM statement_line WHERE version_id = $1 ORDER BY id`,
		versionID)
	if err != nil {
		return nil, errors.Wrap(err, "querying statement lines")
	}
	lines := make([]budget.StatementLine, 0, len(rows))
	for _, row := range rows {
		lines = append(lines, budget.StatementLine{
			Kind:   budget.LineKind(row.Kind),
			Label:  row.Label,
			Amount: row.Amount,
		})
	}
	return lines, nil
}

func (repo *budgetRepository) ReplaceStatementLines(ctx context.Context, versionID string, lines []budget.StatementLine) error {
	tx, err := repo.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "beginning transaction")
	}
	defer func() { _ = tx.Rollback() }()

	if _, err = tx.ExecContext(ctx, `DELETE FROM statement_line WHERE version_id = $1`, versionID); err != nil {
		return errors.Wrap(err, "clearing statement lines")
	}
	for _, line := range lines {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO statement_line (version_id, kind, label, amount) VALUES ($1, $2, $3, $4)`,
			versionID, line.Kind, line.Label, line.Amount)
		if err != nil {
			return errors.Wrap(err, "inserting statement line")
		}
	}
	return errors.Wrap(tx.Commit(), "committing statement lines")
}
