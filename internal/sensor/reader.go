package sensor

import (
	"context"
	"time"

	"github.com/aang-iot/aircontrol/internal/models"
	"github.com/rs/zerolog"
)

// Reader orchestrates periodic measurements from a Source
type Reader struct {
	source   Source
	info     *models.ControllerInfo
	interval time.Duration
	logger   zerolog.Logger
	readings chan *models.Reading
}

// NewReader creates a new sensor reader
func NewReader(source Source, info *models.ControllerInfo, interval time.Duration, logger zerolog.Logger) *Reader {
	return &Reader{
		source:   source,
		info:     info,
		interval: interval,
		logger:   logger,
		readings: make(chan *models.Reading, 10),
	}
}

// Start begins periodic reading from the source
// Runs until the context is cancelled
func (r *Reader) Start(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			r.readAndPublish()
		}
	}
}

// ReadOnce performs a single reading (useful for testing)
func (r *Reader) ReadOnce() (*models.Reading, error) {
	sample, err := r.source.Read()
	if err != nil {
		return nil, err
	}
	return models.NewReading(r.info.ID, sample.Temperature, sample.Humidity, sample.Particulate, sample.Gas), nil
}

// readAndPublish performs a read and publishes to the channel
func (r *Reader) readAndPublish() {
	reading, err := r.ReadOnce()
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to read from source")
		return
	}
	if !reading.IsValid() {
		// Invalid readings are dropped here so the fuzzy core only ever
		// sees numerically sane inputs
		r.logger.Warn().Str("reading", reading.String()).Msg("dropping invalid reading")
		return
	}
	r.readings <- reading
	r.logger.Debug().Msgf("read from source: %s", reading.String())
}

// Readings returns the channel where readings are published
func (r *Reader) Readings() <-chan *models.Reading {
	return r.readings
}

// Close stops the reader and cleans up resources
func (r *Reader) Close() error {
	return r.source.Close()
}
