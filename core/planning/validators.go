package planning

import (
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/bajeti/core"
)

var (
	scenarioTag  = "scenario"
	scenarioText = "must be one of: conservative, base, optimistic"
)

func init() {
	_ = core.Validate.RegisterValidation(scenarioTag, scenarioValidation)
	core.RegisterCustomTranslation(scenarioTag, scenarioText)
}

// scenarioValidation checks that a scenario name is one of the known presets.
func scenarioValidation(fl validator.FieldLevel) bool {
	return Scenario(fl.Field().String()).Valid()
}
