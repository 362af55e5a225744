// Package actuator issues hardware commands from control decisions. The
// fuzzy engine itself keeps no memory between evaluations, so debouncing
// lives here: the gate remembers the last applied decision and only drives
// the hardware on change, which keeps the IR transmitter and relays from
// chattering when successive evaluations agree.
package actuator

import (
	"fmt"
	"sync"

	"github.com/aang-iot/aircontrol/internal/models"
	"github.com/rs/zerolog"
)

// Gate applies decisions to a Driver with change suppression
type Gate struct {
	driver Driver
	logger zerolog.Logger

	mu          sync.Mutex
	lastApplied *models.Decision
}

// NewGate creates a gate with no applied decision yet; the first Apply
// always drives all three outputs.
func NewGate(driver Driver, logger zerolog.Logger) *Gate {
	return &Gate{
		driver: driver,
		logger: logger,
	}
}

// Apply compares the decision against the last applied one and issues only
// the commands that changed. It reports whether any hardware command was
// issued.
func (g *Gate) Apply(decision *models.Decision) (changed bool, err error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if decision.Equal(g.lastApplied) {
		g.logger.Debug().Str("decision", decision.String()).Msg("Decision unchanged, skipping actuation")
		return false, nil
	}

	prev := g.lastApplied
	if prev == nil || prev.ACTemperature != decision.ACTemperature {
		if err := g.driver.SetACTemperature(decision.ACTemperature); err != nil {
			return false, fmt.Errorf("ac setpoint: %w", err)
		}
	}
	if prev == nil || prev.Fan != decision.Fan {
		if err := g.driver.SetFan(decision.Fan); err != nil {
			return false, fmt.Errorf("fan: %w", err)
		}
	}
	if prev == nil || prev.Ionizer != decision.Ionizer {
		if err := g.driver.SetIonizer(decision.Ionizer); err != nil {
			return false, fmt.Errorf("ionizer: %w", err)
		}
	}

	g.lastApplied = decision.Copy()
	g.logger.Info().Str("decision", decision.String()).Msg("Decision applied")
	return true, nil
}

// LastApplied returns a copy of the most recently applied decision, or nil
// if nothing has been applied yet.
func (g *Gate) LastApplied() *models.Decision {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.lastApplied.Copy()
}

// Reset forgets the applied state so the next Apply drives everything,
// e.g. after a hardware power cycle.
func (g *Gate) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.lastApplied = nil
}
