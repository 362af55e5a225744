// Package fuzzy implements the Mamdani inference controller that turns one
// sensor reading into one actuator decision: a crisp AC setpoint plus binary
// fan and ionizer commands. Temperature and humidity are fuzzified over five
// overlapping triangular categories each; particulate and gas readings gate
// rule applicability through crisp thresholds; a 100-rule base is aggregated
// with min/max composition and defuzzified by centroid.
//
// The engine holds no mutable state: the rule base and membership tables are
// built and validated once, then only read. Evaluate is safe for concurrent
// use.
package fuzzy

import (
	"fmt"

	"github.com/aang-iot/aircontrol/internal/models"
	"github.com/rs/zerolog"
)

// Controller is the inference facade. Construct it with New, which validates
// the membership tables and the rule-base coverage invariant.
type Controller struct {
	rules  []Rule
	logger zerolog.Logger
}

// Diagnostics is a read-only snapshot of the intermediate inference state
// for one evaluation. It exists for troubleshooting and test assertions and
// never influences the decision.
type Diagnostics struct {
	TempDegrees      TempDegrees     `json:"temp_degrees"`
	HumidityDegrees  HumidityDegrees `json:"humidity_degrees"`
	ParticulateClass AirClass        `json:"particulate_class"`
	GasClass         AirClass        `json:"gas_class"`
	Activation       Activation      `json:"activation"`
}

// New builds a Controller, validating every membership triple and the rule
// base. A validation failure is a configuration error: the caller must treat
// it as fatal rather than run with a broken table.
func New(logger zerolog.Logger) (*Controller, error) {
	if err := validateSets(); err != nil {
		return nil, fmt.Errorf("input membership tables: %w", err)
	}
	if err := validateOutputs(); err != nil {
		return nil, fmt.Errorf("output membership tables: %w", err)
	}

	rules := buildRules()
	if err := validateRules(rules); err != nil {
		return nil, fmt.Errorf("rule base: %w", err)
	}

	logger.Debug().Int("rules", len(rules)).Msg("Fuzzy controller initialized")

	return &Controller{
		rules:  rules,
		logger: logger,
	}, nil
}

// Evaluate runs one full inference pass: fuzzification, rule matching,
// aggregation and centroid defuzzification. It is pure and deterministic;
// out-of-range inputs saturate to zero degrees rather than erroring.
func (c *Controller) Evaluate(reading *models.Reading) models.Decision {
	decision, _ := c.evaluate(reading)
	return decision
}

// EvaluateDiagnostics is Evaluate plus the intermediate inference state.
func (c *Controller) EvaluateDiagnostics(reading *models.Reading) (models.Decision, Diagnostics) {
	return c.evaluate(reading)
}

func (c *Controller) evaluate(reading *models.Reading) (models.Decision, Diagnostics) {
	diag := Diagnostics{
		TempDegrees:      FuzzifyTemperature(reading.Temperature),
		HumidityDegrees:  FuzzifyHumidity(reading.Humidity),
		ParticulateClass: ClassifyParticulate(reading.Particulate),
		GasClass:         ClassifyGas(reading.Gas),
	}

	diag.Activation = infer(c.rules, diag.TempDegrees, diag.HumidityDegrees,
		diag.ParticulateClass, diag.GasClass)

	setpoint, fired := defuzzify(diag.Activation)
	if !fired {
		// With a complete rule base this means the reading sits outside every
		// membership support. Worth surfacing, but not an error.
		c.logger.Warn().
			Float64("temperature", reading.Temperature).
			Float64("humidity", reading.Humidity).
			Int("default", DefaultSetpoint).
			Msg("No rule fired, falling back to default setpoint")
	}

	return models.Decision{
		ACTemperature: setpoint,
		Fan:           diag.Activation.Fan,
		Ionizer:       diag.Activation.Ionizer,
	}, diag
}
