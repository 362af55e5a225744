package fuzzy

import "math"

// Output domain for the AC setpoint, sampled for the centroid computation.
const (
	SetpointMin = 18
	SetpointMax = 30

	sampleStep  = 0.1
	sampleCount = 121 // [18, 30] inclusive at step 0.1

	// DefaultSetpoint is returned when no rule fired at all. With a complete
	// rule base this is only reachable for inputs outside every membership
	// support.
	DefaultSetpoint = 24
)

// Output membership triangles over the setpoint domain.
var acTriangles = [numACCategories]Triangle{
	ACCold:   {18, 21, 25},
	ACNormal: {24, 25.5, 27},
	ACHot:    {26, 28, 30},
}

// defuzzify converts the aggregated activation levels into a crisp integer
// setpoint via discretized centroid: each output triangle is clipped at its
// activation level, the clipped sets are combined with max, and the center
// of mass over the sampled domain is taken.
//
// Rounding is ties-away-from-zero (math.Round): a centroid of exactly x.5
// yields x+1.
func defuzzify(act Activation) (setpoint int, fired bool) {
	levels := [numACCategories]float64{
		ACCold:   act.Cold,
		ACNormal: act.Normal,
		ACHot:    act.Hot,
	}

	var numerator, denominator float64
	for i := 0; i < sampleCount; i++ {
		x := SetpointMin + sampleStep*float64(i)
		var aggregated float64
		for c, tri := range acTriangles {
			clipped := math.Min(levels[c], tri.Degree(x))
			if clipped > aggregated {
				aggregated = clipped
			}
		}
		numerator += x * aggregated
		denominator += aggregated
	}

	if denominator <= 0 {
		return DefaultSetpoint, false
	}
	return roundSetpoint(numerator / denominator), true
}

// roundSetpoint rounds a centroid to the nearest integer setpoint, ties away
// from zero: 25.5 becomes 26.
func roundSetpoint(x float64) int {
	return int(math.Round(x))
}

// validateOutputs checks the output membership triangles.
func validateOutputs() error {
	for _, tri := range acTriangles {
		if err := tri.Validate(); err != nil {
			return err
		}
	}
	return nil
}
