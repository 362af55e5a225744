package actuator

import "github.com/rs/zerolog"

// Driver abstracts the hardware effects of a control decision: the infrared
// AC setpoint code, the fan relay and the ionizer relay.
type Driver interface {
	// SetACTemperature transmits the setpoint to the air conditioner
	SetACTemperature(celsius int) error

	// SetFan switches the fan relay
	SetFan(on bool) error

	// SetIonizer switches the ionizer relay
	SetIonizer(on bool) error
}

// LogDriver is a Driver that only logs the commands it would issue. It
// stands in for the IR transmitter and relay GPIO on bench setups.
type LogDriver struct {
	logger zerolog.Logger
}

// NewLogDriver creates a logging driver
func NewLogDriver(logger zerolog.Logger) *LogDriver {
	return &LogDriver{logger: logger}
}

func (d *LogDriver) SetACTemperature(celsius int) error {
	d.logger.Info().Int("setpoint", celsius).Msg("AC setpoint command")
	return nil
}

func (d *LogDriver) SetFan(on bool) error {
	d.logger.Info().Bool("on", on).Msg("Fan command")
	return nil
}

func (d *LogDriver) SetIonizer(on bool) error {
	d.logger.Info().Bool("on", on).Msg("Ionizer command")
	return nil
}
