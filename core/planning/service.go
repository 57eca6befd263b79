package planning

import (
	"context"
	"sort"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

type (
	// Repository persists pipeline inputs and derived records, all scoped to a
	// planning version. Replace* methods swap a stage's full record set for the
	// version in one shot so a reader never observes a half-written stage.
	// The caller must serialize writers per (version, stage).
	Repository interface {
		GetProjections(ctx context.Context, versionID string) ([]Projection, error)
		ReplaceProjections(ctx context.Context, versionID string, projections []Projection) error

		GetClassStructures(ctx context.Context, versionID string) ([]ClassStructure, error)
		ReplaceClassStructures(ctx context.Context, versionID string, structures []ClassStructure) error

		GetSubjectHoursMatrix(ctx context.Context, versionID string) ([]SubjectHoursEntry, error)

		GetSubjectHours(ctx context.Context, versionID string) ([]SubjectHoursRecord, error)
		ReplaceSubjectHours(ctx context.Context, versionID string, records []SubjectHoursRecord) error

		GetRequirements(ctx context.Context, versionID string) ([]Requirement, error)
		ReplaceRequirements(ctx context.Context, versionID string, requirements []Requirement) error

		GetAllocations(ctx context.Context, versionID string) ([]Allocation, error)

		GetGapRows(ctx context.Context, versionID string) ([]GapRow, error)
		ReplaceGapRows(ctx context.Context, versionID string, rows []GapRow) error
	}

	Service struct {
		cfg  Config
		repo Repository
	}

	// ProjectionSet is the outcome of a projection run: all cohort projections
	// plus the school-wide aggregate capacity check.
	ProjectionSet struct {
		Projections []Projection       `json:"projections"`
		Capacity    TotalCapacityCheck `json:"capacity"`
	}

	// PipelineResult is the outcome of a full downstream recomputation.
	PipelineResult struct {
		Structures   []ClassStructure     `json:"structures"`
		SubjectHours []SubjectHoursRecord `json:"subject_hours"`
		Requirements []Requirement        `json:"requirements"`
		Gaps         []GapRow             `json:"gaps"`
	}
)

func NewService(cfg Config, repo Repository) *Service {
	return &Service{cfg: cfg, repo: repo}
}

func (svc *Service) Config() Config {
	return svc.cfg
}

// Project runs the enrollment projector for every cohort input and replaces
// the version's stored projections. The school-wide capacity check result is
// returned alongside; it never aborts the run.
func (svc *Service) Project(ctx context.Context, versionID string, inputs []CohortInput) (ProjectionSet, error) {
	if len(inputs) == 0 {
		return ProjectionSet{}, missingPrerequisite("no cohort inputs submitted")
	}

	set := ProjectionSet{Projections: make([]Projection, 0, len(inputs))}
	for _, in := range inputs {
		proj, err := svc.cfg.ProjectEnrollment(in)
		if err != nil {
			return ProjectionSet{}, err
		}
		set.Projections = append(set.Projections, proj)
	}

	if svc.cfg.SchoolCapacity > 0 {
		set.Capacity = CheckTotalCapacity(set.Projections, svc.cfg.SchoolCapacity)
	}

	if err := svc.repo.ReplaceProjections(ctx, versionID, set.Projections); err != nil {
		return ProjectionSet{}, errors.Wrap(err, "replacing projections")
	}
	return set, nil
}

// RebuildClassStructures derives one class structure per level from the stored
// projections' final-year counts, summed across segments, and replaces the
// version's structures.
func (svc *Service) RebuildClassStructures(ctx context.Context, versionID string) ([]ClassStructure, error) {
	projections, err := svc.repo.GetProjections(ctx, versionID)
	if err != nil {
		return nil, errors.Wrap(err, "loading projections")
	}
	if len(projections) == 0 {
		return nil, missingPrerequisite("no projections on record; run the projector first")
	}

	totals := make(map[string]int)
	for _, proj := range projections {
		totals[proj.Input.Level] += proj.FinalCount()
	}
	levels := make([]string, 0, len(totals))
	for level := range totals {
		levels = append(levels, level)
	}
	sort.Strings(levels)

	structures := make([]ClassStructure, 0, len(levels))
	for _, level := range levels {
		cs, err := svc.cfg.BuildClassStructure(level, totals[level])
		if err != nil {
			return nil, err
		}
		structures = append(structures, cs)
	}

	if err := svc.repo.ReplaceClassStructures(ctx, versionID, structures); err != nil {
		return nil, errors.Wrap(err, "replacing class structures")
	}
	return structures, nil
}

// RecalculateSubjectHours recomputes the weekly teaching-hour records from the
// stored class structures and the version's subject-hours matrix.
func (svc *Service) RecalculateSubjectHours(ctx context.Context, versionID string) ([]SubjectHoursRecord, error) {
	structures, err := svc.repo.GetClassStructures(ctx, versionID)
	if err != nil {
		return nil, errors.Wrap(err, "loading class structures")
	}
	matrix, err := svc.repo.GetSubjectHoursMatrix(ctx, versionID)
	if err != nil {
		return nil, errors.Wrap(err, "loading subject-hours matrix")
	}

	records, err := ComputeSubjectHours(structures, matrix)
	if err != nil {
		return nil, err
	}
	if err := svc.repo.ReplaceSubjectHours(ctx, versionID, records); err != nil {
		return nil, errors.Wrap(err, "replacing subject hours")
	}
	return records, nil
}

// RecalculateRequirements recomputes per-subject staffing requirements from the
// stored weekly hour records.
func (svc *Service) RecalculateRequirements(ctx context.Context, versionID string) ([]Requirement, error) {
	records, err := svc.repo.GetSubjectHours(ctx, versionID)
	if err != nil {
		return nil, errors.Wrap(err, "loading subject hours")
	}

	requirements, err := svc.cfg.ComputeRequirements(records)
	if err != nil {
		return nil, err
	}
	if err := svc.repo.ReplaceRequirements(ctx, versionID, requirements); err != nil {
		return nil, errors.Wrap(err, "replacing requirements")
	}
	return requirements, nil
}

// RefreshGapAnalysis recomputes the needs-vs-means rows from the stored
// requirements and the independently entered staffing allocations.
func (svc *Service) RefreshGapAnalysis(ctx context.Context, versionID string) ([]GapRow, error) {
	requirements, err := svc.repo.GetRequirements(ctx, versionID)
	if err != nil {
		return nil, errors.Wrap(err, "loading requirements")
	}
	allocations, err := svc.repo.GetAllocations(ctx, versionID)
	if err != nil {
		return nil, errors.Wrap(err, "loading allocations")
	}

	rows, err := AnalyzeGaps(requirements, allocations)
	if err != nil {
		return nil, err
	}
	if err := svc.repo.ReplaceGapRows(ctx, versionID, rows); err != nil {
		return nil, errors.Wrap(err, "replacing gap rows")
	}
	return rows, nil
}

// Stored-record accessors, one per pipeline stage.

func (svc *Service) Projections(ctx context.Context, versionID string) ([]Projection, error) {
	return svc.repo.GetProjections(ctx, versionID)
}

func (svc *Service) ClassStructures(ctx context.Context, versionID string) ([]ClassStructure, error) {
	return svc.repo.GetClassStructures(ctx, versionID)
}

func (svc *Service) SubjectHours(ctx context.Context, versionID string) ([]SubjectHoursRecord, error) {
	return svc.repo.GetSubjectHours(ctx, versionID)
}

func (svc *Service) Requirements(ctx context.Context, versionID string) ([]Requirement, error) {
	return svc.repo.GetRequirements(ctx, versionID)
}

func (svc *Service) GapRows(ctx context.Context, versionID string) ([]GapRow, error) {
	return svc.repo.GetGapRows(ctx, versionID)
}

// AllocationsByCycle returns the allocated-FTE cross-cut per cycle.
func (svc *Service) AllocationsByCycle(ctx context.Context, versionID string) (map[Cycle]decimal.Decimal, error) {
	allocations, err := svc.repo.GetAllocations(ctx, versionID)
	if err != nil {
		return nil, errors.Wrap(err, "loading allocations")
	}
	return AllocatedByCycle(allocations), nil
}

// Recalculate runs every downstream stage in order after enrollment changed:
// class structures, weekly hours, staffing requirements, gap analysis. Each
// stage reads the previous stage's freshly committed output.
func (svc *Service) Recalculate(ctx context.Context, versionID string) (*PipelineResult, error) {
	structures, err := svc.RebuildClassStructures(ctx, versionID)
	if err != nil {
		return nil, err
	}
	records, err := svc.RecalculateSubjectHours(ctx, versionID)
	if err != nil {
		return nil, err
	}
	requirements, err := svc.RecalculateRequirements(ctx, versionID)
	if err != nil {
		return nil, err
	}
	gaps, err := svc.RefreshGapAnalysis(ctx, versionID)
	if err != nil {
		return nil, err
	}
	return &PipelineResult{
		Structures:   structures,
		SubjectHours: records,
		Requirements: requirements,
		Gaps:         gaps,
	}, nil
}
