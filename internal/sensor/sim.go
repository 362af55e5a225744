package sensor

import (
	"math"
	"sync"
)

// SimSource generates deterministic synthetic measurements for bench use:
// slow sine drifts around configurable baselines. The same step sequence
// always produces the same samples.
type SimSource struct {
	mu   sync.Mutex
	step int

	BaseTemperature float64
	BaseHumidity    float64
	BaseParticulate float64
	BaseGas         float64
}

// NewSimSource creates a simulator around typical indoor baselines
func NewSimSource() *SimSource {
	return &SimSource{
		BaseTemperature: 27,
		BaseHumidity:    65,
		BaseParticulate: 20,
		BaseGas:         500,
	}
}

// Read returns the next synthetic sample
func (s *SimSource) Read() (Sample, error) {
	s.mu.Lock()
	step := s.step
	s.step++
	s.mu.Unlock()

	t := float64(step)
	sample := Sample{
		Temperature: s.BaseTemperature + 4*math.Sin(t/20),
		Humidity:    s.BaseHumidity + 15*math.Sin(t/35),
		Particulate: s.BaseParticulate + 18*math.Sin(t/50) + 18,
		Gas:         s.BaseGas + 200*math.Sin(t/45) + 150,
	}

	// Keep the waveform inside the physical domain
	sample.Humidity = math.Max(0, math.Min(100, sample.Humidity))
	sample.Particulate = math.Max(0, sample.Particulate)
	sample.Gas = math.Max(0, sample.Gas)

	return sample, nil
}

// Close is a no-op for the simulator
func (s *SimSource) Close() error {
	return nil
}

// StaticAir is an AirFeed returning fixed particulate/gas values, for
// deployments where only the climate channels have real hardware.
type StaticAir struct {
	Particulate float64
	Gas         float64
}

func (a StaticAir) Air() (float64, float64, error) {
	return a.Particulate, a.Gas, nil
}
