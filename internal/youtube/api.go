package youtube

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"sync"

	"github.com/araddon/dateparse"
	"github.com/artur/tubeprophet/internal/database/models"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	ytapi "google.golang.org/api/youtube/v3"
)

// maxIDsPerRequest is the videos.list limit for the id parameter.
const maxIDsPerRequest = 50

var videoParts = []string{"snippet", "statistics"}

// APISource reads statistics from the YouTube Data API v3.
type APISource struct {
	svc     *ytapi.Service
	cfg     Config
	limiter *rate.Limiter
}

// NewAPISource creates a Data API source authenticated with key.
// Extra options (e.g. option.WithEndpoint) are passed to the service.
func NewAPISource(ctx context.Context, key string, cfg Config, opts ...option.ClientOption) (*APISource, error) {
	cfg = cfg.withDefaults()

	httpClient := *cfg.HTTPClient
	httpClient.Transport = &keyTransport{key: key, base: cfg.HTTPClient.Transport}

	opts = append([]option.ClientOption{option.WithHTTPClient(&httpClient)}, opts...)
	svc, err := ytapi.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create youtube service: %w", err)
	}

	return &APISource{
		svc:     svc,
		cfg:     cfg,
		limiter: cfg.limiter(),
	}, nil
}

// FetchVideos implements Source.
func (s *APISource) FetchVideos(ctx context.Context, ids []string) ([]models.Video, error) {
	unique := uniqueIDs(ids)

	var mu sync.Mutex
	byID := make(map[string]models.Video, len(unique))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Concurrency)

	for start := 0; start < len(unique); start += maxIDsPerRequest {
		end := min(start+maxIDsPerRequest, len(unique))
		batch := unique[start:end]

		g.Go(func() error {
			videos, err := s.fetchBatch(gctx, batch)
			if err != nil {
				return err
			}
			mu.Lock()
			for _, v := range videos {
				byID[v.ID] = v
			}
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return expand(ids, byID)
}

func (s *APISource) fetchBatch(ctx context.Context, ids []string) ([]models.Video, error) {
	log.Printf("[API] Fetching %d videos", len(ids))

	resp, err := retryDo(ctx, s.cfg.Retry, func() (*ytapi.VideoListResponse, error) {
		if err := s.limiter.Wait(ctx); err != nil {
			return nil, err
		}
		resp, err := s.svc.Videos.List(videoParts).Id(ids...).Context(ctx).Do()
		if err != nil {
			return nil, classifyAPIError(err)
		}
		return resp, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list videos: %w", err)
	}

	videos := make([]models.Video, 0, len(resp.Items))
	for _, item := range resp.Items {
		v, err := videoFromItem(item)
		if err != nil {
			return nil, err
		}
		videos = append(videos, v)
	}
	return videos, nil
}

func videoFromItem(item *ytapi.Video) (models.Video, error) {
	v := models.Video{ID: item.Id}

	if item.Snippet == nil {
		return v, fmt.Errorf("video %s has no snippet", item.Id)
	}
	v.Title = item.Snippet.Title

	published, err := dateparse.ParseAny(item.Snippet.PublishedAt)
	if err != nil {
		return v, fmt.Errorf("failed to parse publish date of %s: %w", item.Id, err)
	}
	v.PublishedAt = published

	// Statistics are absent when the owner hides them
	if item.Statistics != nil {
		v.Views = int64(item.Statistics.ViewCount)
	}
	return v, nil
}

// classifyAPIError maps quota and credential failures onto sentinel errors.
func classifyAPIError(err error) error {
	var apiErr *googleapi.Error
	if !errors.As(err, &apiErr) {
		return err
	}

	if isRateLimited(apiErr) {
		return err
	}

	for _, item := range apiErr.Errors {
		switch item.Reason {
		case "quotaExceeded", "dailyLimitExceeded":
			return fmt.Errorf("%w: %s", ErrQuotaExceeded, apiErr.Message)
		case "keyInvalid", "keyExpired", "accessNotConfigured", "forbidden":
			return fmt.Errorf("%w: %s", ErrInvalidKey, apiErr.Message)
		}
	}

	if apiErr.Code == http.StatusForbidden {
		return fmt.Errorf("%w: %s", ErrInvalidKey, apiErr.Message)
	}
	return err
}

// isRateLimited reports short-term throttling, which is retried rather than
// treated as an exhausted quota. The API sends it as 429 or 403.
func isRateLimited(apiErr *googleapi.Error) bool {
	if apiErr.Code == http.StatusTooManyRequests {
		return true
	}
	for _, item := range apiErr.Errors {
		switch item.Reason {
		case "rateLimitExceeded", "userRateLimitExceeded":
			return true
		}
	}
	return false
}

// keyTransport attaches the API key to every request. option.WithAPIKey is
// ignored once option.WithHTTPClient is set, so the key goes in here.
type keyTransport struct {
	key  string
	base http.RoundTripper
}

func (t *keyTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.base
	if base == nil {
		base = http.DefaultTransport
	}

	r := req.Clone(req.Context())
	q := r.URL.Query()
	q.Set("key", t.key)
	r.URL.RawQuery = q.Encode()
	return base.RoundTrip(r)
}
