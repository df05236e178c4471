package repository

import (
	"database/sql"
	"fmt"

	"github.com/artur/tubeprophet/internal/database/models"
)

// SnapshotRepository handles video statistics persistence
type SnapshotRepository struct {
	db *sql.DB
}

// NewSnapshotRepository creates a new SnapshotRepository
func NewSnapshotRepository(db *sql.DB) *SnapshotRepository {
	return &SnapshotRepository{db: db}
}

// Record stores a snapshot of a video's statistics
func (r *SnapshotRepository) Record(s *models.Snapshot) error {
	if s == nil {
		return fmt.Errorf("snapshot is nil")
	}

	query := `
		INSERT INTO video_snapshots (video_id, title, views, published_at, fetched_at)
		VALUES (?, ?, ?, ?, ?)
	`

	res, err := r.db.Exec(query, s.VideoID, s.Title, s.Views, s.PublishedAt, s.FetchedAt)
	if err != nil {
		return fmt.Errorf("failed to record snapshot: %w", err)
	}

	if id, err := res.LastInsertId(); err == nil {
		s.ID = id
	}
	return nil
}

// Latest returns the most recent snapshot of a video, or nil if there is none
func (r *SnapshotRepository) Latest(videoID string) (*models.Snapshot, error) {
	snapshots, err := r.History(videoID, 1)
	if err != nil {
		return nil, err
	}
	if len(snapshots) == 0 {
		return nil, nil
	}
	return &snapshots[0], nil
}

// History returns up to limit snapshots of a video, newest first
func (r *SnapshotRepository) History(videoID string, limit int) ([]models.Snapshot, error) {
	query := `
		SELECT id, video_id, title, views, published_at, fetched_at
		FROM video_snapshots
		WHERE video_id = ?
		ORDER BY fetched_at DESC, id DESC
		LIMIT ?
	`

	rows, err := r.db.Query(query, videoID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get snapshot history: %w", err)
	}
	defer rows.Close()

	var snapshots []models.Snapshot
	for rows.Next() {
		var s models.Snapshot
		var title sql.NullString
		var publishedAt sql.NullTime
		if err := rows.Scan(&s.ID, &s.VideoID, &title, &s.Views, &publishedAt, &s.FetchedAt); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot: %w", err)
		}
		s.Title = title.String
		s.PublishedAt = publishedAt.Time
		snapshots = append(snapshots, s)
	}

	return snapshots, rows.Err()
}

// GetTotalSnapshots returns the number of stored snapshots
func (r *SnapshotRepository) GetTotalSnapshots() (int64, error) {
	var count int64
	err := r.db.QueryRow("SELECT COUNT(*) FROM video_snapshots").Scan(&count)
	return count, err
}

// ViewedVideo represents a video with its highest observed view count
type ViewedVideo struct {
	VideoID string
	Title   string
	Views   int64
}

// MostViewed returns the videos with the highest observed view counts (top N),
// titled as they were when that count was seen
func (r *SnapshotRepository) MostViewed(limit int) ([]ViewedVideo, error) {
	query := `
		SELECT video_id, title, views
		FROM (
			SELECT video_id, title, views,
				ROW_NUMBER() OVER (PARTITION BY video_id ORDER BY views DESC, fetched_at DESC, id DESC) AS rn
			FROM video_snapshots
		)
		WHERE rn = 1
		ORDER BY views DESC
		LIMIT ?
	`

	rows, err := r.db.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get most viewed videos: %w", err)
	}
	defer rows.Close()

	var videos []ViewedVideo
	for rows.Next() {
		var v ViewedVideo
		var title sql.NullString
		if err := rows.Scan(&v.VideoID, &title, &v.Views); err != nil {
			return nil, fmt.Errorf("failed to scan video: %w", err)
		}
		v.Title = title.String
		videos = append(videos, v)
	}

	return videos, rows.Err()
}
