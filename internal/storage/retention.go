package storage

import (
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// RetentionCleaner prunes evaluations older than the retention window so
// the database stays bounded on long-running collectors. It runs once at
// startup and then on a fixed period.
type RetentionCleaner struct {
	store         *SQLiteStore
	logger        zerolog.Logger
	retentionDays int
	cleanupPeriod time.Duration
	stopChan      chan struct{}
	stopOnce      sync.Once
	wg            sync.WaitGroup

	mu         sync.RWMutex
	pruned     int64
	runs       int64
	lastRun    time.Time
	lastPruned int64
}

// RetentionCleanerConfig holds configuration for the cleaner
type RetentionCleanerConfig struct {
	RetentionDays int           // How many days of evaluations to keep (default: 30)
	CleanupPeriod time.Duration // How often to prune (default: 1 hour)
}

// DefaultRetentionCleanerConfig returns sensible defaults
func DefaultRetentionCleanerConfig() RetentionCleanerConfig {
	return RetentionCleanerConfig{
		RetentionDays: 30,
		CleanupPeriod: 1 * time.Hour,
	}
}

// RetentionStats reports how much evaluation history has been pruned.
// Surfaced by the dashboard stats endpoint.
type RetentionStats struct {
	PrunedEvaluations int64     `json:"pruned_evaluations"`
	Runs              int64     `json:"runs"`
	LastRun           time.Time `json:"last_run,omitempty"`
	LastPruned        int64     `json:"last_pruned"`
	RetentionDays     int       `json:"retention_days"`
}

// NewRetentionCleaner creates and starts a new retention cleaner
func NewRetentionCleaner(store *SQLiteStore, config RetentionCleanerConfig, logger zerolog.Logger) *RetentionCleaner {
	cleanupPeriod := config.CleanupPeriod

	// Guard against a time.NewTicker panic
	if cleanupPeriod <= 0 {
		defaultPeriod := 1 * time.Hour
		logger.Warn().
			Dur("provided_period", cleanupPeriod).
			Dur("default_period", defaultPeriod).
			Msg("Invalid CleanupPeriod provided (zero or negative), using default")
		cleanupPeriod = defaultPeriod
	}

	c := &RetentionCleaner{
		store:         store,
		logger:        logger,
		retentionDays: config.RetentionDays,
		cleanupPeriod: cleanupPeriod,
		stopChan:      make(chan struct{}),
	}

	c.wg.Add(1)
	go c.loop()

	logger.Info().
		Int("retention_days", config.RetentionDays).
		Dur("cleanup_period", cleanupPeriod).
		Msg("Evaluation retention cleaner started")

	return c
}

func (c *RetentionCleaner) loop() {
	defer c.wg.Done()

	// Prune immediately so a collector restarted after downtime does not
	// wait a full period with an oversized database
	c.prune()

	ticker := time.NewTicker(c.cleanupPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.prune()
		case <-c.stopChan:
			c.logger.Info().Msg("Evaluation retention cleaner stopped")
			return
		}
	}
}

// prune deletes evaluations older than the retention window and records
// the outcome in the stats
func (c *RetentionCleaner) prune() {
	deleted, err := c.store.DeleteOlderThan(c.retentionDays)

	c.mu.Lock()
	defer c.mu.Unlock()

	c.runs++
	c.lastRun = time.Now()

	if err != nil {
		c.logger.Error().Err(err).Msg("Evaluation retention pruning failed")
		return
	}

	c.pruned += deleted
	c.lastPruned = deleted
	if deleted > 0 {
		c.logger.Info().
			Int64("pruned", deleted).
			Int("retention_days", c.retentionDays).
			Msg("Pruned old evaluations")
	} else {
		c.logger.Debug().
			Int("retention_days", c.retentionDays).
			Msg("No evaluations past retention")
	}
}

// Stop gracefully stops the cleaner
func (c *RetentionCleaner) Stop() {
	c.stopOnce.Do(func() {
		close(c.stopChan)
		c.wg.Wait()
	})
}

// Stats returns current pruning statistics
func (c *RetentionCleaner) Stats() RetentionStats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return RetentionStats{
		PrunedEvaluations: c.pruned,
		Runs:              c.runs,
		LastRun:           c.lastRun,
		LastPruned:        c.lastPruned,
		RetentionDays:     c.retentionDays,
	}
}

// RunNow triggers an immediate pruning pass (useful for testing or manual triggers)
func (c *RetentionCleaner) RunNow() {
	c.prune()
}
