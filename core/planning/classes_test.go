package planning

import (
	"errors"
	"testing"
)

func TestClassSizeBoundsValidate(t *testing.T) {
	tests := []struct {
		name    string
		bounds  ClassSizeBounds
		wantErr bool
	}{
		{name: "valid", bounds: ClassSizeBounds{Min: 15, Target: 25, Max: 35}},
		{name: "target equals max", bounds: ClassSizeBounds{Min: 15, Target: 30, Max: 30}},
		{name: "min equals target", bounds: ClassSizeBounds{Min: 25, Target: 25, Max: 35}, wantErr: true},
		{name: "target above max", bounds: ClassSizeBounds{Min: 15, Target: 36, Max: 35}, wantErr: true},
		{name: "min below envelope", bounds: ClassSizeBounds{Min: 14, Target: 25, Max: 35}, wantErr: true},
		{name: "max above envelope", bounds: ClassSizeBounds{Min: 15, Target: 25, Max: 41}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.bounds.Validate()
			if tt.wantErr && !errors.Is(err, ErrInvalidClassSizeBounds) {
				t.Errorf("Validate() error = %v, want ErrInvalidClassSizeBounds", err)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("Validate() error = %v", err)
			}
		})
	}
}

func TestBuildClassStructure(t *testing.T) {
	cfg := DefaultConfig() // target 25, max avg 35

	tests := []struct {
		name          string
		students      int
		wantDivisions int
		wantAvg       string
	}{
		{name: "exact multiple", students: 100, wantDivisions: 4, wantAvg: "25"},
		{name: "one extra student adds a division", students: 101, wantDivisions: 5, wantAvg: "20.2"},
		{name: "small level", students: 18, wantDivisions: 1, wantAvg: "18"},
		{name: "empty level keeps one division", students: 0, wantDivisions: 1, wantAvg: "0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cs, err := cfg.BuildClassStructure("6e", tt.students)
			if err != nil {
				t.Fatalf("BuildClassStructure() error = %v", err)
			}
			if cs.Divisions != tt.wantDivisions {
				t.Errorf("divisions = %d, want %d", cs.Divisions, tt.wantDivisions)
			}
			if !cs.AvgSize.Equal(dec(t, tt.wantAvg)) {
				t.Errorf("avg size = %s, want %s", cs.AvgSize, tt.wantAvg)
			}
		})
	}
}

// A target above the 35 average cap still yields a legal structure: the builder
// keeps adding divisions until the true average falls inside (0, 35].
func TestBuildClassStructureRespectsAvgCap(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ClassSize = ClassSizeBounds{Min: 15, Target: 38, Max: 40}

	cs, err := cfg.BuildClassStructure("3e", 38)
	if err != nil {
		t.Fatalf("BuildClassStructure() error = %v", err)
	}
	if cs.Divisions != 2 {
		t.Errorf("divisions = %d, want 2", cs.Divisions)
	}
	if !cs.AvgSize.Equal(dec(t, "19")) {
		t.Errorf("avg size = %s, want 19", cs.AvgSize)
	}
}

func TestBuildClassStructureAuxiliaryStaff(t *testing.T) {
	cfg := DefaultConfig()
	cfg.EarlyYears["maternelle"] = true

	// default: one auxiliary per division
	cs, err := cfg.BuildClassStructure("maternelle", 70) // 3 divisions
	if err != nil {
		t.Fatalf("BuildClassStructure() error = %v", err)
	}
	if !cs.HasAuxiliary || cs.AuxiliaryCount != 3 {
		t.Errorf("auxiliary = (%v, %d), want (true, 3)", cs.HasAuxiliary, cs.AuxiliaryCount)
	}

	// override
	cs, err = cfg.BuildClassStructure("maternelle", 70, 2)
	if err != nil {
		t.Fatalf("BuildClassStructure() error = %v", err)
	}
	if cs.AuxiliaryCount != 6 {
		t.Errorf("auxiliary count = %d, want 6", cs.AuxiliaryCount)
	}

	// non early-years level gets none
	cs, err = cfg.BuildClassStructure("6e", 70)
	if err != nil {
		t.Fatalf("BuildClassStructure() error = %v", err)
	}
	if cs.HasAuxiliary || cs.AuxiliaryCount != 0 {
		t.Errorf("auxiliary = (%v, %d), want (false, 0)", cs.HasAuxiliary, cs.AuxiliaryCount)
	}
}

func TestBuildClassStructureInvalidBounds(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ClassSize = ClassSizeBounds{Min: 25, Target: 20, Max: 35}

	if _, err := cfg.BuildClassStructure("6e", 100); !errors.Is(err, ErrInvalidClassSizeBounds) {
		t.Errorf("BuildClassStructure() error = %v, want ErrInvalidClassSizeBounds", err)
	}
}
