package sqlxrepos

import (
	"context"
	"encoding/json"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/trezcool/bajeti/core/planning"
)

type planningRepository struct {
	db *sqlx.DB
}

var _ planning.Repository = (*planningRepository)(nil) // interface compliance check

func NewPlanningRepository(db *sqlx.DB) *planningRepository {
	return &planningRepository{db: db}
}

// replaceInTx clears a stage's rows for the version and re-inserts them in one
// transaction so readers never observe a half-written stage.
func (repo *planningRepository) replaceInTx(ctx context.Context, clearStmt, versionID string, insert func(tx *sqlx.Tx) error) error {
	tx, err := repo.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "beginning transaction")
	}
	defer func() { _ = tx.Rollback() }()

	if _, err = tx.ExecContext(ctx, clearStmt, versionID); err != nil {
		return errors.Wrap(err, "clearing stage rows")
	}
	if err = insert(tx); err != nil {
		return err
	}
	return errors.Wrap(tx.Commit(), "committing stage rows")
}

// Projections are stored as one JSONB payload per cohort: the yearly sequence
// is read back whole, never queried by year.

type projectionRow struct {
	Level   string `db:"level"`
	Segment string `db:"segment"`
	Payload []byte `db:"payload"`
}

func (repo *planningRepository) GetProjections(ctx context.Context, versionID string) ([]planning.Projection, error) {
	var rows []projectionRow
	err := repo.db.SelectContext(ctx, &rows, `
		SELECT level, segment, payload FROM enrollment_projection WHERE version_id = $1 ORDER BY level, segment`,
		versionID)
	if err != nil {
		return nil, errors.Wrap(err, "querying projections")
	}

	projections := make([]planning.Projection, 0, len(rows))
	for _, row := range rows {
		var proj planning.Projection
		if err = json.Unmarshal(row.Payload, &proj); err != nil {
			return nil, errors.Wrapf(err, "decoding projection %s/%s", row.Level, row.Segment)
		}
		projections = append(projections, proj)
	}
	return projections, nil
}

func (repo *planningRepository) ReplaceProjections(ctx context.Context, versionID string, projections []planning.Projection) error {
	return repo.replaceInTx(ctx, `DELETE FROM enrollment_projection WHERE version_id = $1`, versionID,
		func(tx *sqlx.Tx) error {
			for _, proj := range projections {
				payload, err := json.Marshal(proj)
				if err != nil {
					return errors.Wrap(err, "encoding projection")
				}
				_, err = tx.ExecContext(ctx, `
					INSERT INTO enrollment_projection (version_id, level, segment, payload) VALUES ($1, $2, $3, $4)`,
					versionID, proj.Input.Level, proj.Input.Segment, payload)
				if err != nil {
					return errors.Wrap(err, "inserting projection")
				}
			}
			return nil
		})
}

type classStructureRow struct {
	Level          string          `db:"level"`
	TotalStudents  int             `db:"total_students"`
	Divisions      int             `db:"divisions"`
	AvgSize        decimal.Decimal `db:"avg_size"`
	HasAuxiliary   bool            `db:"has_auxiliary"`
	AuxiliaryCount int             `db:"auxiliary_count"`
}

func (repo *planningRepository) GetClassStructures(ctx context.Context, versionID string) ([]planning.ClassStructure, error) {
	var rows []classStructureRow
	err := repo.db.SelectContext(ctx, &rows, `
		SELECT level, total_students, divisions, avg_size, has_auxiliary, auxiliary_count
		FROM class_structure WHERE version_id = $1 ORDER BY level`,
		versionID)
	if err != nil {
		return nil, errors.Wrap(err, "querying class structures")
	}

	structures := make([]planning.ClassStructure, 0, len(rows))
	for _, row := range rows {
		structures = append(structures, planning.ClassStructure{
			Level:          row.Level,
			TotalStudents:  row.TotalStudents,
			Divisions:      row.Divisions,
			AvgSize:        row.AvgSize,
			HasAuxiliary:   row.HasAuxiliary,
			AuxiliaryCount: row.AuxiliaryCount,
		})
	}
	return structures, nil
}

func (repo *planningRepository) ReplaceClassStructures(ctx context.Context, versionID string, structures []planning.ClassStructure) error {
	return repo.replaceInTx(ctx, `DELETE FROM class_structure WHERE version_id = $1`, versionID,
		func(tx *sqlx.Tx) error {
			for _, cs := range structures {
				_, err := tx.ExecContext(ctx, `
					INSERT INTO class_structure (version_id, level, total_students, divisions, avg_size, has_auxiliary, auxiliary_count)
					VALUES ($1, $2, $3, $4, $5, $6, $7)`,
					versionID, cs.Level, cs.TotalStudents, cs.Divisions, cs.AvgSize, cs.HasAuxiliary, cs.AuxiliaryCount)
				if err != nil {
					return errors.Wrap(err, "inserting class structure")
				}
			}
			return nil
		})
}

type matrixRow struct {
	Subject          string          `db:"subject"`
	Level            string          `db:"level"`
	HoursPerDivision decimal.Decimal `db:"hours_per_division"`
	Split            bool            `db:"split"`
}

func (repo *planningRepository) GetSubjectHoursMatrix(ctx context.Context, versionID string) ([]planning.SubjectHoursEntry, error) {
	var rows []matrixRow
	err := repo.db.SelectContext(ctx, &rows, `
		SELECT subject, level, hours_per_division, split
		FROM subject_hours_matrix WHERE version_id = $1 ORDER BY subject, level`,
		versionID)
	if err != nil {
		return nil, errors.Wrap(err, "querying subject-hours matrix")
	}

	entries := make([]planning.SubjectHoursEntry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, planning.SubjectHoursEntry{
			Subject:          row.Subject,
			Level:            row.Level,
			HoursPerDivision: row.HoursPerDivision,
			Split:            row.Split,
		})
	}
	return entries, nil
}

type subjectHoursRow struct {
	Subject          string          `db:"subject"`
	Level            string          `db:"level"`
	Divisions        int             `db:"divisions"`
	HoursPerDivision decimal.Decimal `db:"hours_per_division"`
	Split            bool            `db:"split"`
	TotalHours       decimal.Decimal `db:"total_hours"`
}

func (repo *planningRepository) GetSubjectHours(ctx context.Context, versionID string) ([]planning.SubjectHoursRecord, error) {
	var rows []subjectHoursRow
	err := repo.db.SelectContext(ctx, &rows, `
		SELECT subject, level, divisions, hours_per_division, split, total_hours
		FROM subject_hours WHERE version_id = $1 ORDER BY subject, level`,
		versionID)
	if err != nil {
		return nil, errors.Wrap(err, "querying subject hours")
	}

	records := make([]planning.SubjectHoursRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, planning.SubjectHoursRecord{
			Subject:          row.Subject,
			Level:            row.Level,
			Divisions:        row.Divisions,
			HoursPerDivision: row.HoursPerDivision,
			Split:            row.Split,
			TotalHours:       row.TotalHours,
		})
	}
	return records, nil
}

func (repo *planningRepository) ReplaceSubjectHours(ctx context.Context, versionID string, records []planning.SubjectHoursRecord) error {
	return repo.replaceInTx(ctx, `DELETE FROM subject_hours WHERE version_id = $1`, versionID,
		func(tx *sqlx.Tx) error {
			for _, rec := range records {
				_, err := tx.ExecContext(ctx, `
					INSERT INTO subject_hours (version_id, subject, level, divisions, hours_per_division, split, total_hours)
					VALUES ($1, $2, $3, $4, $5, $6, $7)`,
					versionID, rec.Subject, rec.Level, rec.Divisions, rec.HoursPerDivision, rec.Split, rec.TotalHours)
				if err != nil {
					return errors.Wrap(err, "inserting subject hours")
				}
			}
			return nil
		})
}

type requirementRow struct {
	Subject       string          `db:"subject"`
	Cycle         string          `db:"cycle"`
	TotalHours    decimal.Decimal `db:"total_hours"`
	StandardLoad  decimal.Decimal `db:"standard_load"`
	ExactFTE      decimal.Decimal `db:"exact_fte"`
	RoundedFTE    int             `db:"rounded_fte"`
	OvertimeHours decimal.Decimal `db:"overtime_hours"`
}

func (repo *planningRepository) GetRequirements(ctx context.Context, versionID string) ([]planning.Requirement, error) {
	var rows []requirementRow
	err := repo.db.SelectContext(ctx, &rows, `
		SELECT subject, cycle, total_hours, standard_load, exact_fte, rounded_fte, overtime_hours
		FROM fte_requirement WHERE version_id = $1 ORDER BY subject`,
		versionID)
	if err != nil {
		return nil, errors.Wrap(err, "querying requirements")
	}

	reqs := make([]planning.Requirement, 0, len(rows))
	for _, row := range rows {
		reqs = append(reqs, planning.Requirement{
			Subject:       row.Subject,
			Cycle:         planning.Cycle(row.Cycle),
			TotalHours:    row.TotalHours,
			StandardLoad:  row.StandardLoad,
			ExactFTE:      row.ExactFTE,
			RoundedFTE:    row.RoundedFTE,
			OvertimeHours: row.OvertimeHours,
		})
	}
	return reqs, nil
}

func (repo *planningRepository) ReplaceRequirements(ctx context.Context, versionID string, requirements []planning.Requirement) error {
	return repo.replaceInTx(ctx, `DELETE FROM fte_requirement WHERE version_id = $1`, versionID,
		func(tx *sqlx.Tx) error {
			for _, req := range requirements {
				_, err := tx.ExecContext(ctx, `
					INSERT INTO fte_requirement (version_id, subject, cycle, total_hours, standard_load, exact_fte, rounded_fte, overtime_hours)
					VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
					versionID, req.Subject, req.Cycle, req.TotalHours, req.StandardLoad, req.ExactFTE, req.RoundedFTE, req.OvertimeHours)
				if err != nil {
					return errors.Wrap(err, "inserting requirement")
				}
			}
			return nil
		})
}

type allocationRow struct {
	Subject  string          `db:"subject"`
	Cycle    string          `db:"cycle"`
	Category string          `db:"category"`
	FTE      decimal.Decimal `db:"fte"`
}

func (repo *planningRepository) GetAllocations(ctx context.Context, versionID string) ([]planning.Allocation, error) {
	var rows []allocationRow
	err := repo.db.SelectContext(ctx, &rows, `
		SELECT subject, cycle, category, fte
		FROM staffing_allocation WHERE version_id = $1 ORDER BY subject, cycle, category`,
		versionID)
	if err != nil {
		return nil, errors.Wrap(err, "querying allocations")
	}

	allocations := make([]planning.Allocation, 0, len(rows))
	for _, row := range rows {
		allocations = append(allocations, planning.Allocation{
			Subject:  row.Subject,
			Cycle:    planning.Cycle(row.Cycle),
			Category: row.Category,
			FTE:      row.FTE,
		})
	}
	return allocations, nil
}

type gapRowRow struct {
	Subject      string          `db:"subject"`
	RequiredFTE  int             `db:"required_fte"`
	AllocatedFTE decimal.Decimal `db:"allocated_fte"`
	Deficit      decimal.Decimal `db:"deficit"`
	Status       string          `db:"status"`
}

func (repo *planningRepository) GetGapRows(ctx context.Context, versionID string) ([]planning.GapRow, error) {
	var rows []gapRowRow
	err := repo.db.SelectContext(ctx, &rows, `
		SELECT subject, required_fte, allocated_fte, deficit, status
		FROM gap_row WHERE version_id = $1 ORDER BY subject`,
		versionID)
	if err != nil {
		return nil, errors.Wrap(err, "querying gap rows")
	}

	gaps := make([]planning.GapRow, 0, len(rows))
	for _, row := range rows {
		gaps = append(gaps, planning.GapRow{
			Subject:      row.Subject,
			RequiredFTE:  row.RequiredFTE,
			AllocatedFTE: row.AllocatedFTE,
			Deficit:      row.Deficit,
			Status:       planning.GapStatus(row.Status),
		})
	}
	return gaps, nil
}

func (repo *planningRepository) ReplaceGapRows(ctx context.Context, versionID string, rows []planning.GapRow) error {
	return repo.replaceInTx(ctx, `DELETE FROM gap_row WHERE version_id = $1`, versionID,
		func(tx *sqlx.Tx) error {
			for _, row := range rows {
				_, err := tx.ExecContext(ctx, `
					INSERT INTO gap_row (version_id, subject, required_fte, allocated_fte, deficit, status)
					VALUES ($1, $2, $3, $4, $5, $6)`,
					versionID, row.Subject, row.RequiredFTE, row.AllocatedFTE, row.Deficit, row.Status)
				if err != nil {
					return errors.Wrap(err, "inserting gap row")
				}
			}
			return nil
		})
}
