package server

import (
	"time"

	"github.com/aang-iot/aircontrol/internal/models"
	"github.com/aang-iot/aircontrol/internal/storage"
)

// EvaluationStore is the real-time store consulted by the dashboard API.
// MemoryStore implements it.
type EvaluationStore interface {
	// Add adds an evaluation to the store
	Add(eval *models.Evaluation)

	// GetLatest returns the n most recent evaluations for a controller (newest first)
	GetLatest(controllerID string, n int) []*models.Evaluation

	// GetCurrent returns the most recent evaluation for a controller
	GetCurrent(controllerID string) *models.Evaluation

	// GetControllerIDs returns all controller IDs that have sent data
	GetControllerIDs() []string

	// Stats returns statistics about the store
	Stats() StoreStats

	// GetAll returns all evaluations from all controllers
	GetAll() []*models.Evaluation

	// Clear removes all data from the store
	Clear()
}

// HistoricalStore is the persistent store behind the history endpoints.
// storage.SQLiteStore implements it.
type HistoricalStore interface {
	// GetEvaluationsInRange returns evaluations within a time range
	GetEvaluationsInRange(controllerID string, start, end time.Time, limit int) ([]*models.Evaluation, error)

	// GetEvaluationsBefore returns evaluations before a timestamp (for scrolling back)
	GetEvaluationsBefore(controllerID string, before time.Time, limit int) ([]*models.Evaluation, error)

	// GetEvaluationsAfter returns evaluations after a timestamp (for scrolling forward)
	GetEvaluationsAfter(controllerID string, after time.Time, limit int) ([]*models.Evaluation, error)

	// GetLatestEvaluation returns the most recent evaluation for a controller
	GetLatestEvaluation(controllerID string) (*models.Evaluation, error)

	// GetControllerIDs returns all unique controller IDs
	GetControllerIDs() ([]string, error)

	// GetDailyStats returns aggregated daily statistics
	GetDailyStats(controllerID string, start, end time.Time) ([]storage.DailyStat, error)

	// GetStorageStats returns database statistics
	GetStorageStats() (*storage.StorageStats, error)
}

// EvaluationSink receives evaluations for asynchronous persistence.
// storage.DBWriter implements it.
type EvaluationSink interface {
	// Enqueue queues an evaluation for writing, returns false if dropped
	Enqueue(eval *models.Evaluation) bool
}
