package fuzzy

import "math"

// Activation holds the aggregated result of matching the rule base against
// one fuzzified reading.
type Activation struct {
	// Per-category activation levels for the AC output, OR-aggregated
	// (max) across all rules firing for that category.
	Cold   float64
	Normal float64
	Hot    float64

	// Fan and ionizer are boolean consequents: any gate-matching rule with
	// nonzero firing strength forces its flag on.
	Fan     bool
	Ionizer bool

	// MatchedRules counts the rules that passed the crisp gate and fired
	// with strength > 0.
	MatchedRules int
}

// infer matches the rule base against the fuzzified inputs and the crisp
// classes. A rule applies only when its particulate and gas classes equal
// the current classification; its firing strength is the fuzzy AND (min)
// of its two graded antecedents.
func infer(rules []Rule, td TempDegrees, hd HumidityDegrees, pm, gas AirClass) Activation {
	var act Activation
	for _, r := range rules {
		if r.Particulate != pm || r.Gas != gas {
			continue
		}
		strength := math.Min(td[r.Temp], hd[r.Humidity])
		if strength <= 0 {
			continue
		}

		switch r.AC {
		case ACCold:
			act.Cold = math.Max(act.Cold, strength)
		case ACNormal:
			act.Normal = math.Max(act.Normal, strength)
		case ACHot:
			act.Hot = math.Max(act.Hot, strength)
		}
		if r.Fan {
			act.Fan = true
		}
		if r.Ionizer {
			act.Ionizer = true
		}
		act.MatchedRules++
	}
	return act
}
