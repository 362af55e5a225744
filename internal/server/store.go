package server

import (
	"sync"
	"time"

	"github.com/aang-iot/aircontrol/internal/models"
)

// MemoryStore is an in-memory ring buffer of recent evaluations per controller
type MemoryStore struct {
	capacity         int
	data             map[string][]*models.Evaluation
	mutex            sync.RWMutex
	totalEvaluations int64
}

// NewMemoryStore creates a new in-memory store
func NewMemoryStore(capacity int) *MemoryStore {
	return &MemoryStore{
		capacity: capacity,
		data:     make(map[string][]*models.Evaluation),
	}
}

// Add adds an evaluation to the store
func (ms *MemoryStore) Add(eval *models.Evaluation) {
	ms.mutex.Lock()
	defer ms.mutex.Unlock()

	evals := ms.data[eval.Reading.SensorID]
	if len(evals) >= ms.capacity {
		evals = evals[1:] // Remove oldest
	}
	evals = append(evals, eval)
	ms.data[eval.Reading.SensorID] = evals
	ms.totalEvaluations++
}

// GetLatest returns the n most recent evaluations for a controller, newest first
func (ms *MemoryStore) GetLatest(controllerID string, n int) []*models.Evaluation {
	ms.mutex.RLock()
	defer ms.mutex.RUnlock()

	evals := ms.data[controllerID]
	if len(evals) == 0 {
		return nil
	}

	start := len(evals) - n
	if start < 0 {
		start = 0
	}

	// Return copies, newest first
	result := make([]*models.Evaluation, len(evals)-start)
	for i, j := len(evals)-1, 0; i >= start; i, j = i-1, j+1 {
		result[j] = evals[i].Copy()
	}
	return result
}

// GetAll returns all evaluations from all controllers
func (ms *MemoryStore) GetAll() []*models.Evaluation {
	ms.mutex.RLock()
	defer ms.mutex.RUnlock()

	result := make([]*models.Evaluation, 0)
	for _, evals := range ms.data {
		for _, eval := range evals {
			result = append(result, eval.Copy())
		}
	}
	return result
}

// GetCurrent returns the most recent evaluation for a controller
func (ms *MemoryStore) GetCurrent(controllerID string) *models.Evaluation {
	ms.mutex.RLock()
	defer ms.mutex.RUnlock()

	evals := ms.data[controllerID]
	if len(evals) == 0 {
		return nil
	}
	// Return a copy, not a pointer to internal data
	return evals[len(evals)-1].Copy()
}

// GetControllerIDs returns all controller IDs that have sent data
func (ms *MemoryStore) GetControllerIDs() []string {
	ms.mutex.RLock()
	defer ms.mutex.RUnlock()

	keys := make([]string, 0, len(ms.data))
	for key := range ms.data {
		keys = append(keys, key)
	}
	return keys
}

// Stats returns statistics about the store
func (ms *MemoryStore) Stats() StoreStats {
	ms.mutex.RLock()
	defer ms.mutex.RUnlock()

	current := 0
	for _, evals := range ms.data {
		current += len(evals)
	}
	return StoreStats{
		TotalEvaluations:   ms.totalEvaluations,
		UniqueControllers:  len(ms.data),
		CurrentEvaluations: current,
	}
}

// StoreStats contains statistics about the memory store
type StoreStats struct {
	TotalEvaluations   int64     `json:"total_evaluations"`
	UniqueControllers  int       `json:"unique_controllers"`
	CurrentEvaluations int       `json:"current_evaluations"` // In memory now
	OldestEvaluation   time.Time `json:"oldest_evaluation,omitempty"`
	NewestEvaluation   time.Time `json:"newest_evaluation,omitempty"`
}

// Clear removes all data from the store
func (ms *MemoryStore) Clear() {
	ms.mutex.Lock()
	defer ms.mutex.Unlock()

	ms.data = make(map[string][]*models.Evaluation)
	ms.totalEvaluations = 0
}
