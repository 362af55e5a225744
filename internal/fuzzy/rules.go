package fuzzy

import "fmt"

// Rule maps one antecedent combination to its consequent. The antecedents
// mix two graded categories (temperature, humidity) with two crisp classes
// (particulate, gas).
type Rule struct {
	Temp        TempCategory
	Humidity    HumidityCategory
	Particulate AirClass
	Gas         AirClass

	AC      ACCategory
	Fan     bool
	Ionizer bool
}

// acTable maps (temperature, humidity) to the AC consequent category. The
// same table applies in all four gate groups; only the fan/ionizer flags
// change with the crisp classes. Hotter and wetter rooms push toward a
// colder setpoint.
var acTable = [numTempCategories][numHumidityCategories]ACCategory{
	TempVeryCold: {ACHot, ACHot, ACHot, ACHot, ACHot},
	TempCold:     {ACHot, ACHot, ACNormal, ACNormal, ACNormal},
	TempNormal:   {ACNormal, ACNormal, ACNormal, ACCold, ACCold},
	TempHot:      {ACCold, ACCold, ACCold, ACCold, ACCold},
	TempVeryHot:  {ACCold, ACCold, ACCold, ACCold, ACCold},
}

// groupFlags returns the fan and ionizer consequents for a crisp gate
// combination. Particulate danger alone turns the fan on; gas danger turns
// both the fan and the ionizer on.
func groupFlags(pm, gas AirClass) (fan, ionizer bool) {
	if gas == AirDanger {
		return true, true
	}
	if pm == AirDanger {
		return true, false
	}
	return false, false
}

// buildRules constructs the full rule base: one rule for every
// (temperature × humidity × particulate × gas) combination, 100 in total.
func buildRules() []Rule {
	rules := make([]Rule, 0, numTempCategories*numHumidityCategories*4)
	for _, pm := range []AirClass{AirSafe, AirDanger} {
		for _, gas := range []AirClass{AirSafe, AirDanger} {
			fan, ionizer := groupFlags(pm, gas)
			for t := TempCategory(0); t < numTempCategories; t++ {
				for h := HumidityCategory(0); h < numHumidityCategories; h++ {
					rules = append(rules, Rule{
						Temp:        t,
						Humidity:    h,
						Particulate: pm,
						Gas:         gas,
						AC:          acTable[t][h],
						Fan:         fan,
						Ionizer:     ionizer,
					})
				}
			}
		}
	}
	return rules
}

// validateRules checks the coverage invariant: exactly one rule per
// antecedent combination, no duplicates, no gaps.
func validateRules(rules []Rule) error {
	const want = numTempCategories * numHumidityCategories * 2 * 2
	if len(rules) != want {
		return fmt.Errorf("rule base has %d rules, want %d", len(rules), want)
	}

	seen := make(map[Rule]bool, want)
	for _, r := range rules {
		key := Rule{Temp: r.Temp, Humidity: r.Humidity, Particulate: r.Particulate, Gas: r.Gas}
		if seen[key] {
			return fmt.Errorf("duplicate rule for (%s, %s, pm=%s, gas=%s)",
				r.Temp, r.Humidity, r.Particulate, r.Gas)
		}
		seen[key] = true
	}
	if len(seen) != want {
		return fmt.Errorf("rule base covers %d combinations, want %d", len(seen), want)
	}
	return nil
}
