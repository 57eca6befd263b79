package planning

import "github.com/shopspring/decimal"

// Cycle identifies the school cohort a level belongs to. The standard weekly
// teaching load differs per cycle.
type Cycle string

const (
	CyclePrimary   Cycle = "primary"
	CycleSecondary Cycle = "secondary"
)

type (
	// RateBand is the permitted growth-rate range of a scenario and the rate
	// applied when no custom rate is given.
	RateBand struct {
		Min     decimal.Decimal
		Max     decimal.Decimal
		Default decimal.Decimal
	}

	// ClassSizeBounds are the per-division size bounds used by the class
	// structure builder.
	ClassSizeBounds struct {
		Min    int
		Target int
		Max    int
	}

	// Config carries every tunable constant of the pipeline. Stages take it as
	// an explicit parameter; there are no package-level knobs.
	Config struct {
		ScenarioBands map[Scenario]RateBand
		CustomRateMin decimal.Decimal
		CustomRateMax decimal.Decimal

		// standard weekly teaching load per cycle, in hours
		StandardLoads map[Cycle]decimal.Decimal

		// SchoolCapacity is the school-wide enrollment ceiling; 0 disables the
		// aggregate check. LevelCapacities are per-level ceilings; levels with
		// no entry are unbounded.
		SchoolCapacity  int
		LevelCapacities map[string]int

		ClassSize          ClassSizeBounds
		MaxAvgDivisionSize decimal.Decimal

		// EarlyYears is the set of levels that need auxiliary staff;
		// AuxPerDivision is the default auxiliary headcount per division.
		EarlyYears     map[string]bool
		AuxPerDivision int

		// LevelCycles maps a level to its cycle. Unmapped levels are treated as
		// secondary since secondary drives the tighter staffing obligation.
		LevelCycles map[string]Cycle
	}
)

// DefaultConfig returns the stock constants: scenario bands around 1%/4%/7%,
// 18h/24h standard loads and the 15-25-35 class-size envelope.
func DefaultConfig() Config {
	return Config{
		ScenarioBands: map[Scenario]RateBand{
			ScenarioConservative: {
				Min:     decimal.Zero,
				Max:     decimal.RequireFromString("0.02"),
				Default: decimal.RequireFromString("0.01"),
			},
			ScenarioBase: {
				Min:     decimal.RequireFromString("0.03"),
				Max:     decimal.RequireFromString("0.05"),
				Default: decimal.RequireFromString("0.04"),
			},
			ScenarioOptimistic: {
				Min:     decimal.RequireFromString("0.06"),
				Max:     decimal.RequireFromString("0.08"),
				Default: decimal.RequireFromString("0.07"),
			},
		},
		CustomRateMin: decimal.RequireFromString("-0.50"),
		CustomRateMax: decimal.RequireFromString("1.00"),
		StandardLoads: map[Cycle]decimal.Decimal{
			CyclePrimary:   decimal.NewFromInt(24),
			CycleSecondary: decimal.NewFromInt(18),
		},
		LevelCapacities:    map[string]int{},
		ClassSize:          ClassSizeBounds{Min: 15, Target: 25, Max: 35},
		MaxAvgDivisionSize: decimal.NewFromInt(35),
		EarlyYears:         map[string]bool{},
		AuxPerDivision:     1,
		LevelCycles:        map[string]Cycle{},
	}
}

// StandardLoad returns the weekly teaching load for a cycle.
func (cfg Config) StandardLoad(cycle Cycle) decimal.Decimal {
	if load, ok := cfg.StandardLoads[cycle]; ok {
		return load
	}
	return decimal.NewFromInt(18)
}

// LevelCycle returns the cycle a level belongs to, defaulting to secondary.
func (cfg Config) LevelCycle(level string) Cycle {
	if cycle, ok := cfg.LevelCycles[level]; ok {
		return cycle
	}
	return CycleSecondary
}
