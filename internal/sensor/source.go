package sensor

// Sample is one raw four-channel measurement from a source, before it is
// stamped with the controller identity and timestamp.
type Sample struct {
	Temperature float64 // °C
	Humidity    float64 // percent
	Particulate float64 // PM2.5 µg/m³
	Gas         float64 // CO2 ppm
}

// Source defines the interface for reading the four input channels
type Source interface {
	// Read performs a single measurement of all channels
	Read() (Sample, error)

	// Close cleans up any underlying resources
	Close() error
}

// AirFeed supplies the particulate and gas channels for sources whose
// primary hardware only measures climate (e.g. a DHT11).
type AirFeed interface {
	Air() (particulate, gas float64, err error)
}
