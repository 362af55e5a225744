package models

import (
	"fmt"
	"time"
)

// Decision is one crisp control output from the fuzzy controller: the target
// AC setpoint and the binary fan/ionizer commands. A Decision is produced
// fresh per evaluation and carries no state of its own.
type Decision struct {
	ACTemperature int  `json:"ac_temperature"` // °C, in [18, 30]
	Fan           bool `json:"fan"`
	Ionizer       bool `json:"ionizer"`
}

// Equal reports whether two decisions would drive the hardware identically.
// The actuation layer uses this for hysteresis: it only issues commands when
// the new decision differs from the last applied one.
func (d *Decision) Equal(other *Decision) bool {
	if d == nil || other == nil {
		return d == other
	}
	return d.ACTemperature == other.ACTemperature &&
		d.Fan == other.Fan &&
		d.Ionizer == other.Ionizer
}

func (d *Decision) String() string {
	return fmt.Sprintf("AC: %d°C, Fan: %s, Ionizer: %s",
		d.ACTemperature, onOff(d.Fan), onOff(d.Ionizer))
}

// Copy returns a copy of the Decision
func (d *Decision) Copy() *Decision {
	if d == nil {
		return nil
	}
	cp := *d
	return &cp
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

// Evaluation pairs a sensor reading with the decision it produced. This is
// the record buffered on the device, uplinked to the collector and persisted
// for history queries.
type Evaluation struct {
	Reading  Reading   `json:"reading"`
	Decision Decision  `json:"decision"`
	Time     time.Time `json:"time"`
}

// NewEvaluation creates an Evaluation stamped with the reading's timestamp.
func NewEvaluation(reading *Reading, decision Decision) *Evaluation {
	return &Evaluation{
		Reading:  *reading,
		Decision: decision,
		Time:     reading.Timestamp,
	}
}

// IsValid checks both halves of the record.
func (e *Evaluation) IsValid() bool {
	if !e.Reading.IsValid() {
		return false
	}
	if e.Decision.ACTemperature < 18 || e.Decision.ACTemperature > 30 {
		return false
	}
	return true
}

// Copy returns a deep copy of the Evaluation
func (e *Evaluation) Copy() *Evaluation {
	if e == nil {
		return nil
	}
	cp := *e
	return &cp
}

func (e *Evaluation) String() string {
	return fmt.Sprintf("%s => %s", e.Reading.String(), e.Decision.String())
}
