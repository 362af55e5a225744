package fuzzy

// TempCategory is a linguistic category for room temperature.
type TempCategory int

const (
	TempVeryCold TempCategory = iota
	TempCold
	TempNormal
	TempHot
	TempVeryHot

	numTempCategories = 5
)

func (c TempCategory) String() string {
	switch c {
	case TempVeryCold:
		return "veryCold"
	case TempCold:
		return "cold"
	case TempNormal:
		return "normal"
	case TempHot:
		return "hot"
	case TempVeryHot:
		return "veryHot"
	default:
		return "unknown"
	}
}

// HumidityCategory is a linguistic category for relative humidity.
type HumidityCategory int

const (
	HumidityDry HumidityCategory = iota
	HumidityNormal
	HumidityQuiteWet
	HumidityWet
	HumidityVeryWet

	numHumidityCategories = 5
)

func (c HumidityCategory) String() string {
	switch c {
	case HumidityDry:
		return "dry"
	case HumidityNormal:
		return "normal"
	case HumidityQuiteWet:
		return "quiteWet"
	case HumidityWet:
		return "wet"
	case HumidityVeryWet:
		return "veryWet"
	default:
		return "unknown"
	}
}

// ACCategory is a linguistic category for the air-conditioner setpoint.
type ACCategory int

const (
	ACCold ACCategory = iota
	ACNormal
	ACHot

	numACCategories = 3
)

func (c ACCategory) String() string {
	switch c {
	case ACCold:
		return "cold"
	case ACNormal:
		return "normal"
	case ACHot:
		return "hot"
	default:
		return "unknown"
	}
}

// AirClass is the crisp classification for particulate and gas readings.
// These inputs are deliberately not fuzzified; the hard thresholds gate
// which rule group applies.
type AirClass int

const (
	AirSafe AirClass = iota
	AirDanger
)

func (c AirClass) String() string {
	switch c {
	case AirSafe:
		return "safe"
	case AirDanger:
		return "danger"
	default:
		return "unknown"
	}
}

// Crisp classification thresholds. Both boundaries are inclusive on the
// safe side: a reading exactly at the threshold is still safe.
const (
	ParticulateThreshold = 35.0 // µg/m³ PM2.5
	GasThreshold         = 606.0 // ppm CO2
)

// Hand-tuned membership triangles for the two graded inputs. The supports
// span the full expected domain (temperature -10..60 °C, humidity 0..100 %);
// outside them degrees saturate to zero.
var (
	tempTriangles = [numTempCategories]Triangle{
		TempVeryCold: {-10, 10, 18},
		TempCold:     {15, 20, 24},
		TempNormal:   {22, 25.5, 28},
		TempHot:      {25, 31, 35},
		TempVeryHot:  {32, 40, 60},
	}

	humidityTriangles = [numHumidityCategories]Triangle{
		HumidityDry:      {0, 20, 40},
		HumidityNormal:   {30, 55, 70},
		HumidityQuiteWet: {60, 70, 80},
		HumidityWet:      {75, 85, 95},
		HumidityVeryWet:  {90, 100, 110},
	}
)

// TempDegrees holds one membership degree per temperature category.
type TempDegrees [numTempCategories]float64

// HumidityDegrees holds one membership degree per humidity category.
type HumidityDegrees [numHumidityCategories]float64

// FuzzifyTemperature computes the degree of t in every temperature category.
// Degrees are independent per category and do not sum to 1; overlapping
// triangles mean adjacent categories are often nonzero at the same time.
func FuzzifyTemperature(t float64) TempDegrees {
	var d TempDegrees
	for i, tri := range tempTriangles {
		d[i] = tri.Degree(t)
	}
	return d
}

// FuzzifyHumidity computes the degree of h in every humidity category.
func FuzzifyHumidity(h float64) HumidityDegrees {
	var d HumidityDegrees
	for i, tri := range humidityTriangles {
		d[i] = tri.Degree(h)
	}
	return d
}

// ClassifyParticulate maps a PM2.5 reading to its crisp class.
func ClassifyParticulate(pm float64) AirClass {
	if pm <= ParticulateThreshold {
		return AirSafe
	}
	return AirDanger
}

// ClassifyGas maps a CO2 reading to its crisp class.
func ClassifyGas(ppm float64) AirClass {
	if ppm <= GasThreshold {
		return AirSafe
	}
	return AirDanger
}

// validateSets checks every input membership triangle.
func validateSets() error {
	for _, tri := range tempTriangles {
		if err := tri.Validate(); err != nil {
			return err
		}
	}
	for _, tri := range humidityTriangles {
		if err := tri.Validate(); err != nil {
			return err
		}
	}
	return nil
}
