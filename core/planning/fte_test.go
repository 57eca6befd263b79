package planning

import (
	"errors"
	"testing"
)

func secondaryConfig() Config {
	cfg := DefaultConfig()
	cfg.LevelCycles = map[string]Cycle{
		"6e":  CycleSecondary,
		"5e":  CycleSecondary,
		"cm1": CyclePrimary,
		"cm2": CyclePrimary,
	}
	return cfg
}

func TestComputeRequirements(t *testing.T) {
	cfg := secondaryConfig()

	// 57.5 weekly hours against the 18h secondary load
	records := []SubjectHoursRecord{
		{Subject: "mathematics", Level: "6e", Divisions: 5, HoursPerDivision: dec(t, "6"), TotalHours: dec(t, "30")},
		{Subject: "mathematics", Level: "5e", Divisions: 5, HoursPerDivision: dec(t, "5.5"), TotalHours: dec(t, "27.5")},
	}

	reqs, err := cfg.ComputeRequirements(records)
	if err != nil {
		t.Fatalf("ComputeRequirements() error = %v", err)
	}
	if len(reqs) != 1 {
		t.Fatalf("got %d requirements, want 1", len(reqs))
	}

	req := reqs[0]
	if !req.TotalHours.Equal(dec(t, "57.5")) {
		t.Errorf("total hours = %s, want 57.5", req.TotalHours)
	}
	if !req.StandardLoad.Equal(dec(t, "18")) {
		t.Errorf("standard load = %s, want 18", req.StandardLoad)
	}
	if !req.ExactFTE.Equal(dec(t, "3.19")) {
		t.Errorf("exact FTE = %s, want 3.19", req.ExactFTE)
	}
	if req.RoundedFTE != 4 {
		t.Errorf("rounded FTE = %d, want 4", req.RoundedFTE)
	}
	// 57.5 - 4x18 is negative: clamped, never negative
	if !req.OvertimeHours.IsZero() {
		t.Errorf("overtime hours = %s, want 0", req.OvertimeHours)
	}
}

func TestComputeRequirementsPrimaryLoad(t *testing.T) {
	cfg := secondaryConfig()

	records := []SubjectHoursRecord{
		{Subject: "french", Level: "cm1", Divisions: 4, HoursPerDivision: dec(t, "6"), TotalHours: dec(t, "24")},
		{Subject: "french", Level: "cm2", Divisions: 4, HoursPerDivision: dec(t, "6"), TotalHours: dec(t, "24")},
	}

	reqs, err := cfg.ComputeRequirements(records)
	if err != nil {
		t.Fatalf("ComputeRequirements() error = %v", err)
	}
	req := reqs[0]
	if req.Cycle != CyclePrimary {
		t.Errorf("cycle = %s, want primary", req.Cycle)
	}
	if !req.StandardLoad.Equal(dec(t, "24")) {
		t.Errorf("standard load = %s, want 24", req.StandardLoad)
	}
	if !req.ExactFTE.Equal(dec(t, "2")) {
		t.Errorf("exact FTE = %s, want 2", req.ExactFTE)
	}
	if req.RoundedFTE != 2 {
		t.Errorf("rounded FTE = %d, want 2", req.RoundedFTE)
	}
}

// A subject contributing hours from both cycles uses the secondary load,
// which drives the tighter obligation.
func TestComputeRequirementsMixedCyclesUseSecondary(t *testing.T) {
	cfg := secondaryConfig()

	records := []SubjectHoursRecord{
		{Subject: "music", Level: "cm2", TotalHours: dec(t, "20")},
		{Subject: "music", Level: "6e", TotalHours: dec(t, "10")},
	}

	reqs, err := cfg.ComputeRequirements(records)
	if err != nil {
		t.Fatalf("ComputeRequirements() error = %v", err)
	}
	req := reqs[0]
	if req.Cycle != CycleSecondary {
		t.Errorf("cycle = %s, want secondary", req.Cycle)
	}
	if !req.StandardLoad.Equal(dec(t, "18")) {
		t.Errorf("standard load = %s, want 18", req.StandardLoad)
	}
	if !req.ExactFTE.Equal(dec(t, "1.67")) { // 30/18
		t.Errorf("exact FTE = %s, want 1.67", req.ExactFTE)
	}
	if req.RoundedFTE != 2 {
		t.Errorf("rounded FTE = %d, want 2", req.RoundedFTE)
	}
}

func TestComputeRequirementsMissingPrerequisite(t *testing.T) {
	cfg := secondaryConfig()
	if _, err := cfg.ComputeRequirements(nil); !errors.Is(err, ErrMissingPrerequisite) {
		t.Errorf("ComputeRequirements() error = %v, want ErrMissingPrerequisite", err)
	}
}
