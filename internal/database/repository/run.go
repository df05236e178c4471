package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/artur/tubeprophet/internal/database/models"
	"github.com/google/uuid"
)

// RunRepository handles forecast run persistence
type RunRepository struct {
	db *sql.DB
}

// NewRunRepository creates a new RunRepository
func NewRunRepository(db *sql.DB) *RunRepository {
	return &RunRepository{db: db}
}

// Record stores a forecast run, assigning an ID and timestamp when missing
func (r *RunRepository) Record(run *models.ForecastRun) error {
	if run == nil {
		return fmt.Errorf("forecast run is nil")
	}
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now()
	}

	query := `
		INSERT INTO forecast_runs (id, origin, chat_id, video_count, days, changes, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.Exec(query,
		run.ID,
		run.Origin,
		run.ChatID,
		run.VideoCount,
		run.Days,
		run.Changes,
		run.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to record forecast run: %w", err)
	}
	return nil
}

// GetRecent returns the latest forecast runs (top N)
func (r *RunRepository) GetRecent(limit int) ([]models.ForecastRun, error) {
	query := `
		SELECT id, origin, chat_id, video_count, days, changes, created_at
		FROM forecast_runs
		ORDER BY created_at DESC
		LIMIT ?
	`

	rows, err := r.db.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get recent runs: %w", err)
	}
	defer rows.Close()

	var runs []models.ForecastRun
	for rows.Next() {
		var run models.ForecastRun
		if err := rows.Scan(&run.ID, &run.Origin, &run.ChatID, &run.VideoCount, &run.Days, &run.Changes, &run.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan forecast run: %w", err)
		}
		runs = append(runs, run)
	}

	return runs, rows.Err()
}

// GetTotalRuns returns the number of recorded forecast runs
func (r *RunRepository) GetTotalRuns() (int64, error) {
	var count int64
	err := r.db.QueryRow("SELECT COUNT(*) FROM forecast_runs").Scan(&count)
	return count, err
}
