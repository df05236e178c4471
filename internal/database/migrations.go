package database

import (
	"fmt"
	"log"
)

// Migrate runs all database migrations
func (db *DB) Migrate() error {
	log.Printf("[DB] Running migrations...")

	migrations := []string{
		// Video statistics snapshots
		`CREATE TABLE IF NOT EXISTS video_snapshots (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			video_id TEXT NOT NULL,
			title TEXT,
			views INTEGER NOT NULL,
			published_at DATETIME,
			fetched_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_video_snapshots_video_id ON video_snapshots(video_id)`,
		`CREATE INDEX IF NOT EXISTS idx_video_snapshots_fetched_at ON video_snapshots(fetched_at)`,

		// Forecast runs
		`CREATE TABLE IF NOT EXISTS forecast_runs (
			id TEXT PRIMARY KEY,
			origin TEXT NOT NULL,
			chat_id INTEGER NOT NULL DEFAULT 0,
			video_count INTEGER NOT NULL,
			days INTEGER NOT NULL,
			changes INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_forecast_runs_created_at ON forecast_runs(created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_forecast_runs_chat_id ON forecast_runs(chat_id)`,
	}

	for i, migration := range migrations {
		if _, err := db.Exec(migration); err != nil {
			return fmt.Errorf("migration %d failed: %w", i, err)
		}
	}

	log.Printf("[DB] Migrations completed successfully")
	return nil
}
