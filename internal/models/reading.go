package models

import (
	"fmt"
	"time"
)

// Reading is one sensor sweep from a climate node: room temperature and
// humidity plus the two air-quality channels the purifier logic gates on.
type Reading struct {
	SensorID    string    `json:"sensor_id"`
	Timestamp   time.Time `json:"timestamp"`
	Temperature float64   `json:"temperature"` // °C
	Humidity    float64   `json:"humidity"`    // percent 0-100
	Particulate float64   `json:"particulate"` // PM2.5 µg/m³
	Gas         float64   `json:"gas"`         // CO2 ppm
}

// IsValid checks if the reading values are within acceptable ranges.
// Temperature -10 to 60°C, humidity 0-100%, particulate and gas non-negative.
func (r *Reading) IsValid() bool {
	const (
		minTemp     = -10.0
		maxTemp     = 60.0
		minHumidity = 0.0
		maxHumidity = 100.0
	)

	if r.SensorID == "" {
		return false
	}

	if r.Timestamp.IsZero() {
		return false
	}

	if r.Temperature < minTemp || r.Temperature > maxTemp {
		return false
	}

	if r.Humidity < minHumidity || r.Humidity > maxHumidity {
		return false
	}

	// Negative concentrations are physically impossible
	if r.Particulate < 0 || r.Gas < 0 {
		return false
	}

	return true
}

// get the reading as a string
func (r *Reading) String() string {
	return fmt.Sprintf("SensorID: %s, Timestamp: %s, Temperature: %.1f°C, Humidity: %.1f%%, PM2.5: %.1fµg/m³, CO2: %.0fppm",
		r.SensorID,
		r.Timestamp.Format(time.RFC3339),
		r.Temperature,
		r.Humidity,
		r.Particulate,
		r.Gas)
}

// NewReading creates a new Reading with the current timestamp
func NewReading(sensorID string, temperature, humidity, particulate, gas float64) *Reading {
	return &Reading{
		SensorID:    sensorID,
		Timestamp:   time.Now(),
		Temperature: temperature,
		Humidity:    humidity,
		Particulate: particulate,
		Gas:         gas,
	}
}

// Copy returns a deep copy of the Reading
func (r *Reading) Copy() *Reading {
	if r == nil {
		return nil
	}
	return &Reading{
		SensorID:    r.SensorID,
		Timestamp:   r.Timestamp,
		Temperature: r.Temperature,
		Humidity:    r.Humidity,
		Particulate: r.Particulate,
		Gas:         r.Gas,
	}
}
