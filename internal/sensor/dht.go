package sensor

import (
	"fmt"

	"github.com/afroash/dht"
)

// DHTSource reads temperature and humidity from a DHT11 on a GPIO pin and
// merges in the particulate/gas channels from an AirFeed (the DHT has no
// air-quality sensing of its own).
type DHTSource struct {
	pin        int
	maxRetries int
	sensor     *dht.Sensor
	air        AirFeed
}

// NewDHTSource creates a DHT11-backed source
func NewDHTSource(pin int, air AirFeed) (*DHTSource, error) {
	sensor, err := dht.NewDHT11(pin)
	if err != nil {
		return nil, fmt.Errorf("failed to open DHT11 on pin %d: %w", pin, err)
	}
	return &DHTSource{
		pin:        pin,
		maxRetries: 3,
		sensor:     sensor,
		air:        air,
	}, nil
}

// Read performs one measurement, retrying the DHT as needed
func (d *DHTSource) Read() (Sample, error) {
	reading, err := d.sensor.ReadRetry(d.maxRetries)
	if err != nil {
		return Sample{}, fmt.Errorf("after %d retries, failed to read from DHT11: %w", d.maxRetries, err)
	}

	pm, gas, err := d.air.Air()
	if err != nil {
		return Sample{}, fmt.Errorf("air feed: %w", err)
	}

	s := Sample{
		Temperature: reading.Temperature,
		Humidity:    reading.Humidity,
		Particulate: pm,
		Gas:         gas,
	}
	if err := validateSample(s); err != nil {
		return Sample{}, fmt.Errorf("invalid sample: %w", err)
	}
	return s, nil
}

// Close cleans up GPIO resources
func (d *DHTSource) Close() error {
	return d.sensor.Close()
}

// validateSample checks if the measured values are physically reasonable
func validateSample(s Sample) error {
	const (
		minTemp     = -10.0
		maxTemp     = 60.0
		minHumidity = 0.0
		maxHumidity = 100.0
	)
	if s.Temperature < minTemp || s.Temperature > maxTemp {
		return fmt.Errorf("temperature %.1f°C outside [%.0f, %.0f]", s.Temperature, minTemp, maxTemp)
	}
	if s.Humidity < minHumidity || s.Humidity > maxHumidity {
		return fmt.Errorf("humidity %.1f%% outside [0, 100]", s.Humidity)
	}
	if s.Particulate < 0 {
		return fmt.Errorf("particulate %.1f µg/m³ is negative", s.Particulate)
	}
	if s.Gas < 0 {
		return fmt.Errorf("gas %.1f ppm is negative", s.Gas)
	}
	return nil
}
