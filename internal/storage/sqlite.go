package storage

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"

	"github.com/aang-iot/aircontrol/internal/models"
)

// Store defines the interface for evaluation persistence
type Store interface {
	Close() error
	Migrate() error
	InsertEvaluation(eval *models.Evaluation) error
	InsertBatch(evals []*models.Evaluation) error
	GetEvaluationsInRange(controllerID string, start, end time.Time, limit int) ([]*models.Evaluation, error)
	GetEvaluationsBefore(controllerID string, before time.Time, limit int) ([]*models.Evaluation, error)
	GetEvaluationsAfter(controllerID string, after time.Time, limit int) ([]*models.Evaluation, error)
	GetLatestEvaluation(controllerID string) (*models.Evaluation, error)
	GetDailyStats(controllerID string, start, end time.Time) ([]DailyStat, error)
	DeleteOlderThan(days int) (int64, error)
	GetStorageStats() (*StorageStats, error)
	GetControllerIDs() ([]string, error)
}

// Compile-time interface check
var _ Store = (*SQLiteStore)(nil)

// SQLiteStore handles persistent storage of control evaluations
type SQLiteStore struct {
	db     *sql.DB
	logger zerolog.Logger
}

// DailyStat represents aggregated statistics for a single day
type DailyStat struct {
	Date            time.Time `json:"date"`
	ControllerID    string    `json:"controller_id"`
	MinTemperature  float64   `json:"min_temperature"`
	MaxTemperature  float64   `json:"max_temperature"`
	AvgTemperature  float64   `json:"avg_temperature"`
	MinSetpoint     int       `json:"min_setpoint"`
	MaxSetpoint     int       `json:"max_setpoint"`
	AvgSetpoint     float64   `json:"avg_setpoint"`
	FanOnCount      int       `json:"fan_on_count"`
	IonizerOnCount  int       `json:"ionizer_on_count"`
	EvaluationCount int       `json:"evaluation_count"`
}

// StorageStats contains information about the database
type StorageStats struct {
	TotalEvaluations  int64     `json:"total_evaluations"`
	OldestEvaluation  time.Time `json:"oldest_evaluation,omitempty"`
	NewestEvaluation  time.Time `json:"newest_evaluation,omitempty"`
	UniqueControllers int       `json:"unique_controllers"`
	DatabaseSizeMB    float64   `json:"database_size_mb"`
}

// NewSQLiteStore creates a new SQLite store instance
func NewSQLiteStore(dbPath string, logger zerolog.Logger) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// Apply performance pragmas for SQLite
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA cache_size=10000",
		"PRAGMA temp_store=MEMORY",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma %q: %w", pragma, err)
		}
	}

	// Configure connection pool for SQLite (single writer)
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	store := &SQLiteStore{
		db:     db,
		logger: logger,
	}

	if err := store.Migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	logger.Info().Str("path", dbPath).Msg("SQLite store initialized")

	return store, nil
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Migrate creates the database schema if it doesn't exist
func (s *SQLiteStore) Migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS evaluations (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		controller_id TEXT NOT NULL,
		temperature REAL NOT NULL,
		humidity REAL NOT NULL,
		particulate REAL NOT NULL,
		gas REAL NOT NULL,
		ac_temperature INTEGER NOT NULL,
		fan INTEGER NOT NULL,
		ionizer INTEGER NOT NULL,
		recorded_at DATETIME NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_evaluations_controller_time ON evaluations(controller_id, recorded_at DESC);
	CREATE INDEX IF NOT EXISTS idx_evaluations_time ON evaluations(recorded_at DESC);
	CREATE INDEX IF NOT EXISTS idx_evaluations_created ON evaluations(created_at);
	`

	_, err := s.db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	s.logger.Debug().Msg("Database schema migrated")
	return nil
}

const insertQuery = `
	INSERT INTO evaluations (controller_id, temperature, humidity, particulate, gas, ac_temperature, fan, ionizer, recorded_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
`

// InsertEvaluation inserts a single evaluation into the database
func (s *SQLiteStore) InsertEvaluation(eval *models.Evaluation) error {
	_, err := s.db.Exec(insertQuery,
		eval.Reading.SensorID,
		eval.Reading.Temperature,
		eval.Reading.Humidity,
		eval.Reading.Particulate,
		eval.Reading.Gas,
		eval.Decision.ACTemperature,
		boolToInt(eval.Decision.Fan),
		boolToInt(eval.Decision.Ionizer),
		eval.Time.Format("2006-01-02 15:04:05"),
	)
	if err != nil {
		return fmt.Errorf("failed to insert evaluation: %w", err)
	}

	return nil
}

// InsertBatch inserts multiple evaluations in a single transaction
func (s *SQLiteStore) InsertBatch(evals []*models.Evaluation) error {
	if len(evals) == 0 {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(insertQuery)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, eval := range evals {
		_, err := stmt.Exec(
			eval.Reading.SensorID,
			eval.Reading.Temperature,
			eval.Reading.Humidity,
			eval.Reading.Particulate,
			eval.Reading.Gas,
			eval.Decision.ACTemperature,
			boolToInt(eval.Decision.Fan),
			boolToInt(eval.Decision.Ionizer),
			eval.Time.Format("2006-01-02 15:04:05"),
		)
		if err != nil {
			return fmt.Errorf("failed to insert evaluation in batch: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.logger.Debug().Int("count", len(evals)).Msg("Batch insert completed")
	return nil
}

const selectColumns = "id, controller_id, temperature, humidity, particulate, gas, ac_temperature, fan, ionizer, recorded_at, created_at"

// GetEvaluationsInRange returns evaluations within a time range
func (s *SQLiteStore) GetEvaluationsInRange(controllerID string, start, end time.Time, limit int) ([]*models.Evaluation, error) {
	var query string
	var args []interface{}

	if controllerID == "" {
		query = `
			SELECT ` + selectColumns + `
			FROM evaluations
			WHERE recorded_at BETWEEN ? AND ?
			ORDER BY recorded_at DESC
			LIMIT ?
		`
		args = []interface{}{
			start.Format("2006-01-02 15:04:05"),
			end.Format("2006-01-02 15:04:05"),
			limit,
		}
	} else {
		query = `
			SELECT ` + selectColumns + `
			FROM evaluations
			WHERE controller_id = ? AND recorded_at BETWEEN ? AND ?
			ORDER BY recorded_at DESC
			LIMIT ?
		`
		args = []interface{}{
			controllerID,
			start.Format("2006-01-02 15:04:05"),
			end.Format("2006-01-02 15:04:05"),
			limit,
		}
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query evaluations: %w", err)
	}
	defer rows.Close()

	return s.scanEvaluations(rows)
}

// GetEvaluationsBefore returns evaluations before a specific time (for scrolling back)
func (s *SQLiteStore) GetEvaluationsBefore(controllerID string, before time.Time, limit int) ([]*models.Evaluation, error) {
	var query string
	var args []interface{}

	if controllerID == "" {
		query = `
			SELECT ` + selectColumns + `
			FROM evaluations
			WHERE recorded_at < ?
			ORDER BY recorded_at DESC
			LIMIT ?
		`
		args = []interface{}{
			before.Format("2006-01-02 15:04:05"),
			limit,
		}
	} else {
		query = `
			SELECT ` + selectColumns + `
			FROM evaluations
			WHERE controller_id = ? AND recorded_at < ?
			ORDER BY recorded_at DESC
			LIMIT ?
		`
		args = []interface{}{
			controllerID,
			before.Format("2006-01-02 15:04:05"),
			limit,
		}
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query evaluations: %w", err)
	}
	defer rows.Close()

	return s.scanEvaluations(rows)
}

// GetEvaluationsAfter returns evaluations after a specific time (for scrolling forward)
func (s *SQLiteStore) GetEvaluationsAfter(controllerID string, after time.Time, limit int) ([]*models.Evaluation, error) {
	var query string
	var args []interface{}

	if controllerID == "" {
		query = `
			SELECT ` + selectColumns + `
			FROM evaluations
			WHERE recorded_at > ?
			ORDER BY recorded_at ASC
			LIMIT ?
		`
		args = []interface{}{
			after.Format("2006-01-02 15:04:05"),
			limit,
		}
	} else {
		query = `
			SELECT ` + selectColumns + `
			FROM evaluations
			WHERE controller_id = ? AND recorded_at > ?
			ORDER BY recorded_at ASC
			LIMIT ?
		`
		args = []interface{}{
			controllerID,
			after.Format("2006-01-02 15:04:05"),
			limit,
		}
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query evaluations: %w", err)
	}
	defer rows.Close()

	evals, err := s.scanEvaluations(rows)
	if err != nil {
		return nil, err
	}

	// Reverse to return newest first (for consistency with other methods)
	for i, j := 0, len(evals)-1; i < j; i, j = i+1, j-1 {
		evals[i], evals[j] = evals[j], evals[i]
	}

	return evals, nil
}

// GetLatestEvaluation returns the most recent evaluation for a controller
func (s *SQLiteStore) GetLatestEvaluation(controllerID string) (*models.Evaluation, error) {
	query := `
		SELECT ` + selectColumns + `
		FROM evaluations
		WHERE controller_id = ?
		ORDER BY recorded_at DESC
		LIMIT 1
	`

	row := s.db.QueryRow(query, controllerID)
	eval, err := s.scanEvaluation(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest evaluation: %w", err)
	}

	return eval, nil
}

// GetDailyStats returns aggregated daily statistics for a time range
func (s *SQLiteStore) GetDailyStats(controllerID string, start, end time.Time) ([]DailyStat, error) {
	const aggregate = `
		SELECT
			date(recorded_at) as date,
			controller_id,
			MIN(temperature) as min_temp,
			MAX(temperature) as max_temp,
			AVG(temperature) as avg_temp,
			MIN(ac_temperature) as min_setpoint,
			MAX(ac_temperature) as max_setpoint,
			AVG(ac_temperature) as avg_setpoint,
			SUM(fan) as fan_on,
			SUM(ionizer) as ionizer_on,
			COUNT(*) as evaluation_count
		FROM evaluations
	`

	var query string
	var args []interface{}

	if controllerID == "" {
		query = aggregate + `
			WHERE recorded_at BETWEEN ? AND ?
			GROUP BY date(recorded_at), controller_id
			ORDER BY date DESC
		`
		args = []interface{}{
			start.Format("2006-01-02 15:04:05"),
			end.Format("2006-01-02 15:04:05"),
		}
	} else {
		query = aggregate + `
			WHERE controller_id = ? AND recorded_at BETWEEN ? AND ?
			GROUP BY date(recorded_at), controller_id
			ORDER BY date DESC
		`
		args = []interface{}{
			controllerID,
			start.Format("2006-01-02 15:04:05"),
			end.Format("2006-01-02 15:04:05"),
		}
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query daily stats: %w", err)
	}
	defer rows.Close()

	var stats []DailyStat
	for rows.Next() {
		var stat DailyStat
		var dateStr string

		err := rows.Scan(
			&dateStr,
			&stat.ControllerID,
			&stat.MinTemperature,
			&stat.MaxTemperature,
			&stat.AvgTemperature,
			&stat.MinSetpoint,
			&stat.MaxSetpoint,
			&stat.AvgSetpoint,
			&stat.FanOnCount,
			&stat.IonizerOnCount,
			&stat.EvaluationCount,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan daily stat: %w", err)
		}

		stat.Date, err = time.Parse("2006-01-02", dateStr)
		if err != nil {
			return nil, fmt.Errorf("failed to parse date: %w", err)
		}

		stats = append(stats, stat)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return stats, nil
}

// DeleteOlderThan removes evaluations older than the specified number of days.
// Deletes based on recorded_at (controller timestamp), not created_at (insert time).
func (s *SQLiteStore) DeleteOlderThan(days int) (int64, error) {
	cutoff := time.Now().UTC().AddDate(0, 0, -days)

	result, err := s.db.Exec(
		"DELETE FROM evaluations WHERE recorded_at < ?",
		cutoff.Format("2006-01-02 15:04:05"),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to delete old evaluations: %w", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	s.logger.Info().
		Int("days", days).
		Int64("deleted", deleted).
		Time("cutoff", cutoff).
		Msg("Deleted old evaluations")

	return deleted, nil
}

// GetStorageStats returns statistics about the database
func (s *SQLiteStore) GetStorageStats() (*StorageStats, error) {
	stats := &StorageStats{}

	err := s.db.QueryRow("SELECT COUNT(*) FROM evaluations").Scan(&stats.TotalEvaluations)
	if err != nil {
		return nil, fmt.Errorf("failed to count evaluations: %w", err)
	}

	if stats.TotalEvaluations == 0 {
		return stats, nil
	}

	var oldestStr, newestStr string
	err = s.db.QueryRow("SELECT MIN(recorded_at), MAX(recorded_at) FROM evaluations").
		Scan(&oldestStr, &newestStr)
	if err != nil {
		return nil, fmt.Errorf("failed to get timestamp range: %w", err)
	}

	stats.OldestEvaluation, _ = s.parseTimestamp(oldestStr)
	stats.NewestEvaluation, _ = s.parseTimestamp(newestStr)

	err = s.db.QueryRow("SELECT COUNT(DISTINCT controller_id) FROM evaluations").Scan(&stats.UniqueControllers)
	if err != nil {
		return nil, fmt.Errorf("failed to count controllers: %w", err)
	}

	var pageCount, pageSize int64
	s.db.QueryRow("PRAGMA page_count").Scan(&pageCount)
	s.db.QueryRow("PRAGMA page_size").Scan(&pageSize)
	stats.DatabaseSizeMB = float64(pageCount*pageSize) / (1024 * 1024)

	return stats, nil
}

// GetControllerIDs returns a list of all unique controller IDs in the database
func (s *SQLiteStore) GetControllerIDs() ([]string, error) {
	rows, err := s.db.Query("SELECT DISTINCT controller_id FROM evaluations ORDER BY controller_id")
	if err != nil {
		return nil, fmt.Errorf("failed to query controller IDs: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan controller ID: %w", err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return ids, nil
}

// scanEvaluation scans a single row into an Evaluation
func (s *SQLiteStore) scanEvaluation(row interface{ Scan(...interface{}) error }) (*models.Evaluation, error) {
	var e models.Evaluation
	var id int64
	var fan, ionizer int
	var recordedAt, createdAt string

	err := row.Scan(
		&id,
		&e.Reading.SensorID,
		&e.Reading.Temperature,
		&e.Reading.Humidity,
		&e.Reading.Particulate,
		&e.Reading.Gas,
		&e.Decision.ACTemperature,
		&fan,
		&ionizer,
		&recordedAt,
		&createdAt,
	)
	if err != nil {
		return nil, err
	}

	e.Decision.Fan = fan != 0
	e.Decision.Ionizer = ionizer != 0

	e.Time, err = s.parseTimestamp(recordedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse recorded_at: %w", err)
	}
	e.Reading.Timestamp = e.Time

	return &e, nil
}

// scanEvaluations scans multiple rows into a slice of evaluations
func (s *SQLiteStore) scanEvaluations(rows *sql.Rows) ([]*models.Evaluation, error) {
	var evals []*models.Evaluation

	for rows.Next() {
		eval, err := s.scanEvaluation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan evaluation: %w", err)
		}
		evals = append(evals, eval)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return evals, nil
}

// parseTimestamp tries multiple formats to parse a SQLite timestamp
func (s *SQLiteStore) parseTimestamp(ts string) (time.Time, error) {
	formats := []string{
		"2006-01-02 15:04:05",
		"2006-01-02T15:04:05Z07:00",
		"2006-01-02 15:04:05.000",
		time.RFC3339,
		time.RFC3339Nano,
	}

	for _, format := range formats {
		if t, err := time.Parse(format, ts); err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("unable to parse timestamp: %s", ts)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
