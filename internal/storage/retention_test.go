package storage

import (
	"testing"
	"time"

	"github.com/aang-iot/aircontrol/internal/models"
)

func TestRetentionCleaner_DeletesOldData(t *testing.T) {
	store, cleanup := setupTestDB(t)
	defer cleanup()

	now := time.Now().UTC()
	evals := []*models.Evaluation{
		createTestEvaluation("room-01", 22.0, 24, false, false, now.AddDate(0, 0, -40)),
		createTestEvaluation("room-01", 23.0, 24, false, false, now.AddDate(0, 0, -35)),
		createTestEvaluation("room-01", 24.0, 24, false, false, now),
	}
	if err := store.InsertBatch(evals); err != nil {
		t.Fatalf("InsertBatch failed: %v", err)
	}

	cleaner := NewRetentionCleaner(store, RetentionCleanerConfig{
		RetentionDays: 30,
		CleanupPeriod: 1 * time.Hour,
	}, testLogger())
	defer cleaner.Stop()

	// Initial cleanup runs on startup, wait for it
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		stats, err := store.GetStorageStats()
		if err != nil {
			t.Fatalf("GetStorageStats failed: %v", err)
		}
		if stats.TotalEvaluations == 1 {
			break
		}
		time.Sleep(20 * time.Millisecond)
	}

	stats, _ := store.GetStorageStats()
	if stats.TotalEvaluations != 1 {
		t.Errorf("Remaining = %d, want 1 after cleanup", stats.TotalEvaluations)
	}

	cstats := cleaner.Stats()
	if cstats.Runs < 1 {
		t.Errorf("Runs = %d, want at least 1", cstats.Runs)
	}
	if cstats.PrunedEvaluations != 2 {
		t.Errorf("PrunedEvaluations = %d, want 2", cstats.PrunedEvaluations)
	}
}

func TestRetentionCleaner_RunNow(t *testing.T) {
	store, cleanup := setupTestDB(t)
	defer cleanup()

	cleaner := NewRetentionCleaner(store, RetentionCleanerConfig{
		RetentionDays: 30,
		CleanupPeriod: 1 * time.Hour,
	}, testLogger())
	defer cleaner.Stop()

	old := createTestEvaluation("room-01", 22.0, 24, false, false, time.Now().UTC().AddDate(0, 0, -60))
	if err := store.InsertEvaluation(old); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	cleaner.RunNow()

	stats, _ := store.GetStorageStats()
	if stats.TotalEvaluations != 0 {
		t.Errorf("Remaining = %d, want 0 after RunNow", stats.TotalEvaluations)
	}
}

func TestRetentionCleaner_InvalidPeriodFallsBack(t *testing.T) {
	store, cleanup := setupTestDB(t)
	defer cleanup()

	// Zero period must not panic the ticker
	cleaner := NewRetentionCleaner(store, RetentionCleanerConfig{
		RetentionDays: 30,
		CleanupPeriod: 0,
	}, testLogger())
	defer cleaner.Stop()

	if cleaner.cleanupPeriod <= 0 {
		t.Errorf("cleanupPeriod = %v, want positive fallback", cleaner.cleanupPeriod)
	}
}

func TestRetentionCleaner_StopIsIdempotent(t *testing.T) {
	store, cleanup := setupTestDB(t)
	defer cleanup()

	cleaner := NewRetentionCleaner(store, DefaultRetentionCleanerConfig(), testLogger())
	cleaner.Stop()
	cleaner.Stop() // must not panic or deadlock
}
