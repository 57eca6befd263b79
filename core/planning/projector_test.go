package planning

import (
	"math"
	"testing"

	"github.com/shopspring/decimal"
)

func TestProjectEnrollmentBaseYear(t *testing.T) {
	cfg := DefaultConfig()

	proj, err := cfg.ProjectEnrollment(CohortInput{
		Level:     "6e",
		Segment:   "national",
		BaseCount: 120,
		Scenario:  ScenarioOptimistic,
		Horizon:   5,
	})
	if err != nil {
		t.Fatalf("ProjectEnrollment() error = %v", err)
	}

	// year 1 is "now": base count, no growth applied
	y1 := proj.Years[0]
	if y1.Count != 120 {
		t.Errorf("year 1 count = %d, want base 120", y1.Count)
	}
	if !y1.AppliedRate.IsZero() {
		t.Errorf("year 1 applied rate = %s, want 0", y1.AppliedRate)
	}
	if !y1.CumulativeGrowth.IsZero() {
		t.Errorf("year 1 cumulative growth = %s, want 0", y1.CumulativeGrowth)
	}
}

func TestProjectEnrollmentZeroRate(t *testing.T) {
	cfg := DefaultConfig()

	proj, err := cfg.ProjectEnrollment(CohortInput{
		Level:      "5e",
		BaseCount:  250,
		CustomRate: decPtr(t, "0"),
		Horizon:    10,
	})
	if err != nil {
		t.Fatalf("ProjectEnrollment() error = %v", err)
	}
	for _, y := range proj.Years {
		if y.Count != 250 {
			t.Errorf("year %d count = %d, want 250", y.Year, y.Count)
		}
	}
	if proj.TotalGrowth != 0 {
		t.Errorf("total growth = %d, want 0", proj.TotalGrowth)
	}
}

// Per-step floor compounding must track floor(base x (1+r)^(k-1)) within 1.
func TestProjectEnrollmentCompounding(t *testing.T) {
	cfg := DefaultConfig()
	base, rate := 900, 0.041

	proj, err := cfg.ProjectEnrollment(CohortInput{
		Level:      "cm2",
		BaseCount:  base,
		CustomRate: decPtr(t, "0.041"),
		Horizon:    10,
	})
	if err != nil {
		t.Fatalf("ProjectEnrollment() error = %v", err)
	}

	for k := 1; k <= 10; k++ {
		direct := int(math.Floor(float64(base) * math.Pow(1+rate, float64(k-1))))
		got := proj.Years[k-1].Count
		if diff := got - direct; diff < -1 || diff > 1 {
			t.Errorf("year %d count = %d, want %d +/- 1", k, got, direct)
		}
	}
}

func TestProjectEnrollmentCustomOverridesScenario(t *testing.T) {
	cfg := DefaultConfig()

	// scenario says ~1%, the custom rate must win
	proj, err := cfg.ProjectEnrollment(CohortInput{
		Level:      "6e",
		BaseCount:  100,
		Scenario:   ScenarioConservative,
		CustomRate: decPtr(t, "0.07"),
		Horizon:    2,
	})
	if err != nil {
		t.Fatalf("ProjectEnrollment() error = %v", err)
	}
	if got := proj.Years[1].Count; got != 107 {
		t.Errorf("year 2 count = %d, want 107 (7%% applied)", got)
	}
	if !proj.Years[1].AppliedRate.Equal(dec(t, "0.07")) {
		t.Errorf("year 2 applied rate = %s, want 0.07", proj.Years[1].AppliedRate)
	}
}

func TestProjectEnrollmentRetentionMode(t *testing.T) {
	cfg := DefaultConfig()

	proj, err := cfg.ProjectEnrollment(CohortInput{
		Level:     "ce1",
		BaseCount: 100,
		Horizon:   3,
		Retention: []RetentionParams{
			{RetentionRate: dec(t, "0.90"), AttritionRate: dec(t, "0.10"), NewEntrants: 20},
		},
	})
	if err != nil {
		t.Fatalf("ProjectEnrollment() error = %v", err)
	}

	// floor(100*0.9)+20 = 110, then floor(110*0.9)+20 = 119
	wants := []int{100, 110, 119}
	for i, want := range wants {
		if got := proj.Years[i].Count; got != want {
			t.Errorf("year %d count = %d, want %d", i+1, got, want)
		}
	}
}

func TestProjectEnrollmentClampsToLevelCeiling(t *testing.T) {
	cfg := DefaultConfig()
	cfg.LevelCapacities["6e"] = 100

	proj, err := cfg.ProjectEnrollment(CohortInput{
		Level:      "6e",
		BaseCount:  98,
		CustomRate: decPtr(t, "0.07"),
		Horizon:    3,
	})
	if err != nil {
		t.Fatalf("ProjectEnrollment() error = %v", err)
	}

	if !proj.CapacityExceeded {
		t.Error("CapacityExceeded = false, want true")
	}
	// year 2: floor(98*1.07) = 104 -> clamped to 100
	if got := proj.Years[1].Count; got != 100 {
		t.Errorf("year 2 count = %d, want ceiling 100", got)
	}
	if len(proj.Clamps) == 0 {
		t.Fatal("no clamp recorded")
	}
	clamp := proj.Clamps[0]
	if clamp.Year != 2 || clamp.OriginalProjection != 104 || clamp.ReductionApplied != 4 {
		t.Errorf("clamp = %+v, want year 2, original 104, reduction 4", clamp)
	}
	if want := dec(t, "0.0385"); !clamp.ReductionPercentage.Equal(want) {
		t.Errorf("reduction percentage = %s, want %s", clamp.ReductionPercentage, want)
	}
}

func TestProjectEnrollmentValidation(t *testing.T) {
	cfg := DefaultConfig()

	tests := []struct {
		name  string
		input CohortInput
	}{
		{name: "zero horizon", input: CohortInput{Level: "6e", BaseCount: 10, Scenario: ScenarioBase, Horizon: 0}},
		{name: "horizon too long", input: CohortInput{Level: "6e", BaseCount: 10, Scenario: ScenarioBase, Horizon: 11}},
		{name: "negative base count", input: CohortInput{Level: "6e", BaseCount: -1, Scenario: ScenarioBase, Horizon: 3}},
		{name: "missing level", input: CohortInput{BaseCount: 10, Scenario: ScenarioBase, Horizon: 3}},
		{name: "no rate source", input: CohortInput{Level: "6e", BaseCount: 10, Horizon: 3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := cfg.ProjectEnrollment(tt.input); err == nil {
				t.Error("ProjectEnrollment() error = nil, want validation error")
			}
		})
	}
}

func TestProjectEnrollmentIsPure(t *testing.T) {
	cfg := DefaultConfig()
	in := CohortInput{
		Level:      "4e",
		BaseCount:  300,
		CustomRate: func() *decimal.Decimal { d := decimal.RequireFromString("0.05"); return &d }(),
		Horizon:    6,
	}

	first, err := cfg.ProjectEnrollment(in)
	if err != nil {
		t.Fatalf("ProjectEnrollment() error = %v", err)
	}
	second, err := cfg.ProjectEnrollment(in)
	if err != nil {
		t.Fatalf("ProjectEnrollment() error = %v", err)
	}
	for i := range first.Years {
		if first.Years[i].Count != second.Years[i].Count {
			t.Errorf("year %d differs between runs: %d vs %d", i+1, first.Years[i].Count, second.Years[i].Count)
		}
	}
}
