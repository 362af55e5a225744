package actuator

import (
	"errors"
	"testing"

	"github.com/aang-iot/aircontrol/internal/models"
	"github.com/rs/zerolog"
)

// MockDriver records issued commands
type MockDriver struct {
	setpoints []int
	fans      []bool
	ionizers  []bool
	failNext  error
}

func (m *MockDriver) SetACTemperature(celsius int) error {
	if m.failNext != nil {
		return m.failNext
	}
	m.setpoints = append(m.setpoints, celsius)
	return nil
}

func (m *MockDriver) SetFan(on bool) error {
	if m.failNext != nil {
		return m.failNext
	}
	m.fans = append(m.fans, on)
	return nil
}

func (m *MockDriver) SetIonizer(on bool) error {
	if m.failNext != nil {
		return m.failNext
	}
	m.ionizers = append(m.ionizers, on)
	return nil
}

func TestGate_FirstApplyDrivesEverything(t *testing.T) {
	driver := &MockDriver{}
	gate := NewGate(driver, zerolog.Nop())

	changed, err := gate.Apply(&models.Decision{ACTemperature: 24, Fan: true, Ionizer: false})
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if !changed {
		t.Error("first Apply should report changed")
	}

	if len(driver.setpoints) != 1 || driver.setpoints[0] != 24 {
		t.Errorf("setpoints = %v, want [24]", driver.setpoints)
	}
	if len(driver.fans) != 1 || !driver.fans[0] {
		t.Errorf("fans = %v, want [true]", driver.fans)
	}
	if len(driver.ionizers) != 1 || driver.ionizers[0] {
		t.Errorf("ionizers = %v, want [false]", driver.ionizers)
	}
}

func TestGate_SuppressesUnchangedDecision(t *testing.T) {
	driver := &MockDriver{}
	gate := NewGate(driver, zerolog.Nop())

	d := &models.Decision{ACTemperature: 24}
	gate.Apply(d)

	for i := 0; i < 5; i++ {
		changed, err := gate.Apply(d.Copy())
		if err != nil {
			t.Fatalf("Apply failed: %v", err)
		}
		if changed {
			t.Fatalf("repeat Apply %d reported changed", i)
		}
	}

	if len(driver.setpoints) != 1 {
		t.Errorf("setpoint commands = %d, want 1", len(driver.setpoints))
	}
}

func TestGate_DrivesOnlyChangedOutputs(t *testing.T) {
	driver := &MockDriver{}
	gate := NewGate(driver, zerolog.Nop())

	gate.Apply(&models.Decision{ACTemperature: 24, Fan: false, Ionizer: false})
	changed, err := gate.Apply(&models.Decision{ACTemperature: 24, Fan: true, Ionizer: false})
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if !changed {
		t.Error("fan change should report changed")
	}

	// Setpoint and ionizer were not re-sent
	if len(driver.setpoints) != 1 {
		t.Errorf("setpoint commands = %d, want 1", len(driver.setpoints))
	}
	if len(driver.fans) != 2 {
		t.Errorf("fan commands = %d, want 2", len(driver.fans))
	}
	if len(driver.ionizers) != 1 {
		t.Errorf("ionizer commands = %d, want 1", len(driver.ionizers))
	}
}

func TestGate_DriverErrorKeepsState(t *testing.T) {
	driver := &MockDriver{}
	gate := NewGate(driver, zerolog.Nop())
	gate.Apply(&models.Decision{ACTemperature: 24})

	driver.failNext = errors.New("ir transmitter offline")
	if _, err := gate.Apply(&models.Decision{ACTemperature: 21}); err == nil {
		t.Fatal("expected driver error")
	}
	driver.failNext = nil

	// The failed decision was not recorded as applied, so the retry drives
	// the hardware again
	changed, err := gate.Apply(&models.Decision{ACTemperature: 21})
	if err != nil {
		t.Fatalf("retry Apply failed: %v", err)
	}
	if !changed {
		t.Error("retry after failure should drive the hardware")
	}
}

func TestGate_LastAppliedAndReset(t *testing.T) {
	driver := &MockDriver{}
	gate := NewGate(driver, zerolog.Nop())

	if gate.LastApplied() != nil {
		t.Error("LastApplied should be nil before any Apply")
	}

	gate.Apply(&models.Decision{ACTemperature: 24, Fan: true})
	last := gate.LastApplied()
	if last == nil || last.ACTemperature != 24 || !last.Fan {
		t.Errorf("LastApplied = %+v, want AC 24 with fan on", last)
	}

	gate.Reset()
	if gate.LastApplied() != nil {
		t.Error("LastApplied should be nil after Reset")
	}

	changed, _ := gate.Apply(&models.Decision{ACTemperature: 24, Fan: true})
	if !changed {
		t.Error("Apply after Reset should drive the hardware")
	}
}
