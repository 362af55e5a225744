package client

import (
	"fmt"
	"sync"
	"time"

	"github.com/aang-iot/aircontrol/internal/models"
)

// EvaluationBuffer is a thread-safe circular buffer for control evaluations
// awaiting upload. It absorbs server outages so the control loop never blocks
// on the network.
type EvaluationBuffer struct {
	evaluations []*models.Evaluation
	capacity    int
	dropOldest  bool
	mutex       sync.RWMutex
	stats       BufferStats
}

// BufferStats tracks buffer usage statistics
type BufferStats struct {
	TotalPushed   int64
	TotalDropped  int64
	HighWaterMark int
	LastPushTime  time.Time
	LastDropTime  time.Time
}

// NewEvaluationBuffer creates a new evaluation buffer with given capacity
func NewEvaluationBuffer(capacity int, dropOldest bool) *EvaluationBuffer {
	return &EvaluationBuffer{
		evaluations: make([]*models.Evaluation, 0, capacity),
		capacity:    capacity,
		dropOldest:  dropOldest,
		stats:       BufferStats{},
	}
}

// Push adds an evaluation to the buffer.
// Returns true if stored, false if dropped (when full and dropOldest=false).
func (eb *EvaluationBuffer) Push(eval *models.Evaluation) bool {
	eb.mutex.Lock()
	defer eb.mutex.Unlock()

	if len(eb.evaluations) >= eb.capacity {
		eb.stats.TotalDropped++
		eb.stats.LastDropTime = time.Now()
		if !eb.dropOldest {
			return false
		}
		eb.evaluations = eb.evaluations[1:]
	}
	eb.evaluations = append(eb.evaluations, eval)
	eb.stats.TotalPushed++
	eb.stats.LastPushTime = time.Now()

	if len(eb.evaluations) > eb.stats.HighWaterMark {
		eb.stats.HighWaterMark = len(eb.evaluations)
	}

	return true
}

// PopBatch removes and returns up to n evaluations, oldest first.
func (eb *EvaluationBuffer) PopBatch(n int) []*models.Evaluation {
	eb.mutex.Lock()
	defer eb.mutex.Unlock()

	count := min(n, len(eb.evaluations))
	if count == 0 {
		return nil
	}
	result := make([]*models.Evaluation, count)
	copy(result, eb.evaluations[:count])
	eb.evaluations = eb.evaluations[count:]
	return result
}

// Peek returns up to n evaluations without removing them
func (eb *EvaluationBuffer) Peek(n int) []*models.Evaluation {
	eb.mutex.RLock()
	defer eb.mutex.RUnlock()

	count := min(n, len(eb.evaluations))
	if count == 0 {
		return nil
	}

	result := make([]*models.Evaluation, count)
	copy(result, eb.evaluations[:count])
	return result
}

// Size returns the current number of evaluations in the buffer
func (eb *EvaluationBuffer) Size() int {
	eb.mutex.RLock()
	defer eb.mutex.RUnlock()
	return len(eb.evaluations)
}

// IsFull returns true if buffer is at capacity
func (eb *EvaluationBuffer) IsFull() bool {
	eb.mutex.RLock()
	defer eb.mutex.RUnlock()
	return len(eb.evaluations) >= eb.capacity
}

// IsEmpty returns true if buffer has no evaluations
func (eb *EvaluationBuffer) IsEmpty() bool {
	eb.mutex.RLock()
	defer eb.mutex.RUnlock()
	return len(eb.evaluations) == 0
}

// Clear removes all evaluations and resets statistics
func (eb *EvaluationBuffer) Clear() {
	eb.mutex.Lock()
	defer eb.mutex.Unlock()
	eb.evaluations = make([]*models.Evaluation, 0, eb.capacity)
	eb.stats = BufferStats{}
}

// Capacity returns the maximum capacity of the buffer
func (eb *EvaluationBuffer) Capacity() int {
	// No lock needed, capacity doesn't change
	return eb.capacity
}

// Stats returns a copy of current buffer statistics
func (eb *EvaluationBuffer) Stats() BufferStats {
	eb.mutex.RLock()
	defer eb.mutex.RUnlock()
	return eb.stats
}

// String returns a human-readable representation of buffer state
func (eb *EvaluationBuffer) String() string {
	eb.mutex.RLock()
	defer eb.mutex.RUnlock()

	mode := "drop-newest"
	if eb.dropOldest {
		mode = "drop-oldest"
	}

	return fmt.Sprintf("Buffer[%d/%d, dropped: %d, mode: %s]",
		len(eb.evaluations),
		eb.capacity,
		eb.stats.TotalDropped,
		mode,
	)
}
