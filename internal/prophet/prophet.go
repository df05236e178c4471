// Package prophet ties fetching, persistence and forecasting together.
package prophet

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/artur/tubeprophet/internal/database/models"
	"github.com/artur/tubeprophet/internal/forecast"
	"github.com/artur/tubeprophet/internal/youtube"
)

// ErrNoVideos indicates a request without any video IDs.
var ErrNoVideos = errors.New("no videos to predict")

// SnapshotStore persists fetched statistics.
type SnapshotStore interface {
	Record(s *models.Snapshot) error
}

// RunStore persists forecast runs.
type RunStore interface {
	Record(run *models.ForecastRun) error
}

// Request describes a single prediction.
type Request struct {
	IDs    []string
	Days   int
	Origin string
	ChatID int64
}

// Result is the outcome of a prediction.
type Result struct {
	Run         models.ForecastRun
	Projections []*forecast.Projection
	Changes     []forecast.Change
}

// Service runs predictions.
type Service struct {
	source    youtube.Source
	snapshots SnapshotStore
	runs      RunStore
	now       func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithStore enables persistence of snapshots and runs.
func WithStore(snapshots SnapshotStore, runs RunStore) Option {
	return func(s *Service) {
		s.snapshots = snapshots
		s.runs = runs
	}
}

// WithClock overrides the current time.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// NewService creates a Service reading from source.
func NewService(source youtube.Source, opts ...Option) *Service {
	s := &Service{
		source: source,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Predict fetches the videos, projects them forward and tracks ranking changes.
// Persistence failures are logged and do not fail the prediction.
func (s *Service) Predict(ctx context.Context, req Request) (*Result, error) {
	if len(req.IDs) == 0 {
		return nil, ErrNoVideos
	}
	days := req.Days
	if days <= 0 {
		days = forecast.DefaultDays
	}

	videos, err := s.source.FetchVideos(ctx, req.IDs)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch videos: %w", err)
	}

	now := s.now()
	s.recordSnapshots(videos, now)

	projections := forecast.NewProjections(videos, now)

	// Full info reflects the starting state, so track a separate copy.
	tracked := make([]*forecast.Projection, len(projections))
	for i, p := range projections {
		cp := *p
		tracked[i] = &cp
	}
	changes := forecast.Track(tracked, days)

	run := models.ForecastRun{
		Origin:     req.Origin,
		ChatID:     req.ChatID,
		VideoCount: len(videos),
		Days:       days,
		Changes:    max(len(changes)-1, 0),
		CreatedAt:  now,
	}
	if run.Origin == "" {
		run.Origin = models.OriginCLI
	}
	if s.runs != nil {
		if err := s.runs.Record(&run); err != nil {
			log.Printf("[PREDICT] Failed to record run: %v", err)
		}
	}

	log.Printf("[PREDICT] %d videos, %d days, %d ranking changes", run.VideoCount, run.Days, run.Changes)

	return &Result{
		Run:         run,
		Projections: projections,
		Changes:     changes,
	}, nil
}

func (s *Service) recordSnapshots(videos []models.Video, now time.Time) {
	if s.snapshots == nil {
		return
	}
	seen := make(map[string]bool, len(videos))
	for _, v := range videos {
		if seen[v.ID] {
			continue
		}
		seen[v.ID] = true
		if err := s.snapshots.Record(models.NewSnapshot(v, now)); err != nil {
			log.Printf("[PREDICT] Failed to record snapshot of %s: %v", v.ID, err)
		}
	}
}
