package youtube

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/artur/tubeprophet/internal/database/models"
	kkdai "github.com/kkdai/youtube/v2"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

type videoGetter interface {
	GetVideoContext(ctx context.Context, id string) (*kkdai.Video, error)
}

// WatchPageSource reads statistics from the public player metadata, no key needed.
type WatchPageSource struct {
	client  videoGetter
	cfg     Config
	limiter *rate.Limiter
}

// NewWatchPageSource creates a keyless source.
func NewWatchPageSource(cfg Config) *WatchPageSource {
	cfg = cfg.withDefaults()
	return &WatchPageSource{
		client:  &kkdai.Client{HTTPClient: cfg.HTTPClient},
		cfg:     cfg,
		limiter: cfg.limiter(),
	}
}

// FetchVideos implements Source.
func (s *WatchPageSource) FetchVideos(ctx context.Context, ids []string) ([]models.Video, error) {
	unique := uniqueIDs(ids)

	var mu sync.Mutex
	byID := make(map[string]models.Video, len(unique))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Concurrency)

	for _, id := range unique {
		g.Go(func() error {
			v, err := s.fetchOne(gctx, id)
			if err != nil {
				return err
			}
			mu.Lock()
			byID[id] = v
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return expand(ids, byID)
}

func (s *WatchPageSource) fetchOne(ctx context.Context, id string) (models.Video, error) {
	log.Printf("[WATCH] Fetching %s", id)

	video, err := retryDo(ctx, s.cfg.Retry, func() (*kkdai.Video, error) {
		if err := s.limiter.Wait(ctx); err != nil {
			return nil, err
		}
		return s.client.GetVideoContext(ctx, id)
	})
	if err != nil {
		return models.Video{}, fmt.Errorf("failed to get video info for %s: %w", id, err)
	}
	if video == nil {
		return models.Video{}, fmt.Errorf("%w: %s", ErrVideoNotFound, id)
	}

	return models.Video{
		ID:          id,
		Title:       video.Title,
		Views:       int64(video.Views),
		PublishedAt: video.PublishDate,
	}, nil
}
