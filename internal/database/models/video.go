package models

import "time"

// Video holds the statistics YouTube reports for a single video
type Video struct {
	ID          string
	Title       string
	Views       int64
	PublishedAt time.Time
}

// Snapshot represents a stored observation of a video's statistics
type Snapshot struct {
	ID          int64
	VideoID     string
	Title       string
	Views       int64
	PublishedAt time.Time
	FetchedAt   time.Time
}

// NewSnapshot captures v as observed at fetchedAt
func NewSnapshot(v Video, fetchedAt time.Time) *Snapshot {
	return &Snapshot{
		VideoID:     v.ID,
		Title:       v.Title,
		Views:       v.Views,
		PublishedAt: v.PublishedAt,
		FetchedAt:   fetchedAt,
	}
}
