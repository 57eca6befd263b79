package planning

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func dec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("decimal.NewFromString(%q): %v", s, err)
	}
	return d
}

func decPtr(t *testing.T, s string) *decimal.Decimal {
	d := dec(t, s)
	return &d
}

func TestGrowthRate(t *testing.T) {
	cfg := DefaultConfig()

	tests := []struct {
		name     string
		scenario Scenario
		custom   *decimal.Decimal
		want     string
		wantErr  error
	}{
		{name: "conservative default", scenario: ScenarioConservative, want: "0.01"},
		{name: "base default", scenario: ScenarioBase, want: "0.04"},
		{name: "optimistic default", scenario: ScenarioOptimistic, want: "0.07"},
		{name: "unknown scenario", scenario: "aggressive", wantErr: ErrInvalidGrowthRate},
		{name: "custom overrides scenario", scenario: ScenarioConservative, custom: decPtr(t, "0.10"), want: "0.10"},
		{name: "custom without scenario", custom: decPtr(t, "-0.25"), want: "-0.25"},
		{name: "custom lower bound", custom: decPtr(t, "-0.50"), want: "-0.50"},
		{name: "custom upper bound", custom: decPtr(t, "1.00"), want: "1.00"},
		{name: "custom too low", custom: decPtr(t, "-0.51"), wantErr: ErrInvalidGrowthRate},
		{name: "custom too high", custom: decPtr(t, "1.01"), wantErr: ErrInvalidGrowthRate},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := cfg.GrowthRate(tt.scenario, tt.custom)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("GrowthRate() error = %v, wantErr %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("GrowthRate() error = %v", err)
			}
			if !got.Equal(dec(t, tt.want)) {
				t.Errorf("GrowthRate() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestGrowthRateMisconfiguredBand(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ScenarioBands[ScenarioBase] = RateBand{
		Min:     dec(t, "0.03"),
		Max:     dec(t, "0.05"),
		Default: dec(t, "0.06"), // outside its own band
	}

	if _, err := cfg.GrowthRate(ScenarioBase, nil); !errors.Is(err, ErrInvalidGrowthRate) {
		t.Errorf("GrowthRate() error = %v, want ErrInvalidGrowthRate", err)
	}
}
