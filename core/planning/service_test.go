package planning_test

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/trezcool/bajeti/core/planning"
	inmemdb "github.com/trezcool/bajeti/storage/database/inmem"
)

func dec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("decimal.NewFromString(%q): %v", s, err)
	}
	return d
}

func testConfig() planning.Config {
	cfg := planning.DefaultConfig()
	cfg.LevelCycles = map[string]planning.Cycle{
		"CP":  planning.CyclePrimary,
		"6e":  planning.CycleSecondary,
		"3e":  planning.CycleSecondary,
		"Tle": planning.CycleSecondary,
	}
	return cfg
}

func setup(t *testing.T) (*planning.Service, *inmemdb.DB) {
	t.Helper()
	db := inmemdb.NewDB()
	return planning.NewService(testConfig(), inmemdb.NewPlanningRepository(db)), db
}

const versionID = "4b4086cc-1b7a-4c60-9af3-04ed10a1d8e8"

func TestServicePipeline(t *testing.T) {
	ctx := context.Background()
	svc, db := setup(t)
	repo := inmemdb.NewPlanningRepository(db)

	// stage 1: projections
	inputs := []planning.CohortInput{
		{Level: "6e", BaseCount: 100, Scenario: planning.ScenarioBase, Horizon: 3},
		{Level: "CP", BaseCount: 50, Scenario: planning.ScenarioConservative, Horizon: 3},
	}
	set, err := svc.Project(ctx, versionID, inputs)
	if err != nil {
		t.Fatalf("Project() error = %v", err)
	}
	if len(set.Projections) != 2 {
		t.Fatalf("Project() returned %d projections, want 2", len(set.Projections))
	}
	// 100 -> floor(100*1.04)=104 -> floor(104*1.04)=108
	if got := set.Projections[0].FinalCount(); got != 108 {
		t.Errorf("FinalCount() = %d, want 108", got)
	}

	// stage 2-4: class structures, weekly hours, requirements
	repo.SetSubjectHoursMatrix(versionID, []planning.SubjectHoursEntry{
		{Subject: "Mathematics", Level: "6e", HoursPerDivision: dec(t, "4")},
		{Subject: "Mathematics", Level: "CP", HoursPerDivision: dec(t, "5")},
		{Subject: "Sciences", Level: "6e", HoursPerDivision: dec(t, "3"), Split: true},
	})
	repo.SetAllocations(versionID, []planning.Allocation{
		{Subject: "Mathematics", Cycle: planning.CycleSecondary, Category: "permanent", FTE: dec(t, "1.5")},
		{Subject: "History", Cycle: planning.CycleSecondary, Category: "vacataire", FTE: dec(t, "0.5")},
	})

	result, err := svc.Recalculate(ctx, versionID)
	if err != nil {
		t.Fatalf("Recalculate() error = %v", err)
	}

	// 108 students at target 25 -> 5 divisions; CP stays at 50 -> 2 divisions
	wantDivisions := map[string]int{"6e": 5, "CP": 2}
	for _, cs := range result.Structures {
		if cs.Divisions != wantDivisions[cs.Level] {
			t.Errorf("Divisions[%s] = %d, want %d", cs.Level, cs.Divisions, wantDivisions[cs.Level])
		}
	}

	// Mathematics spans both cycles: secondary load applies.
	// hours = 4*5 + 5*2 = 30; 30/18 = 1.67 -> 2 positions
	var math planning.Requirement
	for _, req := range result.Requirements {
		if req.Subject == "Mathematics" {
			math = req
		}
	}
	if math.Cycle != planning.CycleSecondary {
		t.Errorf("Cycle = %s, want secondary", math.Cycle)
	}
	if !math.TotalHours.Equal(dec(t, "30")) {
		t.Errorf("TotalHours = %s, want 30", math.TotalHours)
	}
	if !math.ExactFTE.Equal(dec(t, "1.67")) {
		t.Errorf("ExactFTE = %s, want 1.67", math.ExactFTE)
	}
	if math.RoundedFTE != 2 {
		t.Errorf("RoundedFTE = %d, want 2", math.RoundedFTE)
	}

	// gap analysis: Mathematics deficit, History orphan surplus
	wantStatuses := map[string]planning.GapStatus{
		"History":     planning.GapSurplus,
		"Mathematics": planning.GapDeficit,
		"Sciences":    planning.GapDeficit,
	}
	if len(result.Gaps) != len(wantStatuses) {
		t.Fatalf("Recalculate() returned %d gap rows, want %d", len(result.Gaps), len(wantStatuses))
	}
	for _, row := range result.Gaps {
		if row.Status != wantStatuses[row.Subject] {
			t.Errorf("Status[%s] = %s, want %s", row.Subject, row.Status, wantStatuses[row.Subject])
		}
	}

	// recomputation on unchanged inputs is a no-op
	again, err := svc.Recalculate(ctx, versionID)
	if err != nil {
		t.Fatalf("Recalculate() second run error = %v", err)
	}
	if !reflect.DeepEqual(result, again) {
		t.Error("Recalculate() is not idempotent on unchanged inputs")
	}
}

func TestServiceMissingPrerequisites(t *testing.T) {
	ctx := context.Background()
	svc, _ := setup(t)

	if _, err := svc.Project(ctx, versionID, nil); !errors.Is(err, planning.ErrMissingPrerequisite) {
		t.Errorf("Project() error = %v, want ErrMissingPrerequisite", err)
	}
	if _, err := svc.RebuildClassStructures(ctx, versionID); !errors.Is(err, planning.ErrMissingPrerequisite) {
		t.Errorf("RebuildClassStructures() error = %v, want ErrMissingPrerequisite", err)
	}
	if _, err := svc.RecalculateSubjectHours(ctx, versionID); !errors.Is(err, planning.ErrMissingPrerequisite) {
		t.Errorf("RecalculateSubjectHours() error = %v, want ErrMissingPrerequisite", err)
	}
	if _, err := svc.RecalculateRequirements(ctx, versionID); !errors.Is(err, planning.ErrMissingPrerequisite) {
		t.Errorf("RecalculateRequirements() error = %v, want ErrMissingPrerequisite", err)
	}
	if _, err := svc.RefreshGapAnalysis(ctx, versionID); !errors.Is(err, planning.ErrMissingPrerequisite) {
		t.Errorf("RefreshGapAnalysis() error = %v, want ErrMissingPrerequisite", err)
	}
}

func TestServiceProjectReplacesPriorRun(t *testing.T) {
	ctx := context.Background()
	svc, _ := setup(t)

	first := []planning.CohortInput{
		{Level: "6e", BaseCount: 100, Scenario: planning.ScenarioBase, Horizon: 2},
		{Level: "3e", BaseCount: 80, Scenario: planning.ScenarioBase, Horizon: 2},
	}
	if _, err := svc.Project(ctx, versionID, first); err != nil {
		t.Fatalf("Project() error = %v", err)
	}

	second := []planning.CohortInput{
		{Level: "Tle", BaseCount: 60, Scenario: planning.ScenarioOptimistic, Horizon: 2},
	}
	if _, err := svc.Project(ctx, versionID, second); err != nil {
		t.Fatalf("Project() second run error = %v", err)
	}

	stored, err := svc.Projections(ctx, versionID)
	if err != nil {
		t.Fatalf("Projections() error = %v", err)
	}
	if len(stored) != 1 || stored[0].Input.Level != "Tle" {
		t.Errorf("Projections() = %d records, want the second run only", len(stored))
	}
}

func TestServiceAllocationsByCycle(t *testing.T) {
	ctx := context.Background()
	svc, db := setup(t)
	repo := inmemdb.NewPlanningRepository(db)

	repo.SetAllocations(versionID, []planning.Allocation{
		{Subject: "Mathematics", Cycle: planning.CycleSecondary, Category: "permanent", FTE: dec(t, "2")},
		{Subject: "French", Cycle: planning.CycleSecondary, Category: "permanent", FTE: dec(t, "1.5")},
		{Subject: "Reading", Cycle: planning.CyclePrimary, Category: "permanent", FTE: dec(t, "3")},
	})

	byCycle, err := svc.AllocationsByCycle(ctx, versionID)
	if err != nil {
		t.Fatalf("AllocationsByCycle() error = %v", err)
	}
	if !byCycle[planning.CycleSecondary].Equal(dec(t, "3.5")) {
		t.Errorf("secondary = %s, want 3.5", byCycle[planning.CycleSecondary])
	}
	if !byCycle[planning.CyclePrimary].Equal(dec(t, "3")) {
		t.Errorf("primary = %s, want 3", byCycle[planning.CyclePrimary])
	}
}
