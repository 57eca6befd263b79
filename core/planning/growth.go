package planning

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/trezcool/bajeti/core"
)

// Scenario is a named growth-rate preset. An explicit custom rate always takes
// precedence over the scenario's default for calculation, even when both are
// stored for audit.
type Scenario string

const (
	ScenarioConservative Scenario = "conservative"
	ScenarioBase         Scenario = "base"
	ScenarioOptimistic   Scenario = "optimistic"
)

var AllScenarios = []Scenario{ScenarioConservative, ScenarioBase, ScenarioOptimistic}

func (s Scenario) Valid() bool {
	for _, known := range AllScenarios {
		if s == known {
			return true
		}
	}
	return false
}

// GrowthRate resolves the per-year growth multiplier for a scenario and/or
// custom rate. A custom rate must lie in [CustomRateMin, CustomRateMax]
// regardless of scenario; a scenario default must lie within its own band.
func (cfg Config) GrowthRate(scenario Scenario, custom *decimal.Decimal) (decimal.Decimal, error) {
	if custom != nil {
		if custom.Cmp(cfg.CustomRateMin) < 0 || custom.Cmp(cfg.CustomRateMax) > 0 {
			return decimal.Zero, core.NewValidationError(
				ErrInvalidGrowthRate,
				core.FieldError{
					Field: "custom_rate",
					Error: fmt.Sprintf("rate %s outside [%s, %s]", custom, cfg.CustomRateMin, cfg.CustomRateMax),
				},
			)
		}
		return *custom, nil
	}

	band, ok := cfg.ScenarioBands[scenario]
	if !ok {
		return decimal.Zero, core.NewValidationError(
			ErrInvalidGrowthRate,
			core.FieldError{Field: "scenario", Error: fmt.Sprintf("unknown scenario %q", scenario)},
		)
	}
	if band.Default.Cmp(band.Min) < 0 || band.Default.Cmp(band.Max) > 0 {
		return decimal.Zero, core.NewValidationError(
			ErrInvalidGrowthRate,
			core.FieldError{
				Field: "scenario",
				Error: fmt.Sprintf("%s default rate %s outside band [%s, %s]", scenario, band.Default, band.Min, band.Max),
			},
		)
	}
	return band.Default, nil
}
