// Package youtube fetches video statistics from YouTube.
package youtube

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/artur/tubeprophet/internal/database/models"
	"golang.org/x/time/rate"
)

var (
	// ErrVideoNotFound indicates YouTube returned nothing for a requested ID.
	ErrVideoNotFound = errors.New("video not found")
	// ErrQuotaExceeded indicates the API key ran out of daily quota.
	ErrQuotaExceeded = errors.New("quota exceeded")
	// ErrInvalidKey indicates the API key was rejected.
	ErrInvalidKey = errors.New("invalid api key")
)

// Source fetches statistics for a list of video IDs. The result holds one
// entry per input ID in input order, duplicates included.
type Source interface {
	FetchVideos(ctx context.Context, ids []string) ([]models.Video, error)
}

const (
	defaultConcurrency = 4
	defaultRate        = 5
	defaultTimeout     = 30 * time.Second
)

// Config holds optional source parameters. Zero values use defaults.
type Config struct {
	Concurrency   int
	RatePerSecond int
	Timeout       time.Duration
	Retry         RetryConfig
	HTTPClient    *http.Client
}

func (c Config) withDefaults() Config {
	if c.Concurrency <= 0 {
		c.Concurrency = defaultConcurrency
	}
	if c.RatePerSecond <= 0 {
		c.RatePerSecond = defaultRate
	}
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}
	if c.Retry.MaxRetries == 0 && c.Retry.InitialWait == 0 {
		c.Retry = DefaultRetryConfig
	}
	if c.HTTPClient == nil {
		c.HTTPClient = &http.Client{Timeout: c.Timeout}
	}
	return c
}

func (c Config) limiter() *rate.Limiter {
	return rate.NewLimiter(rate.Limit(c.RatePerSecond), c.RatePerSecond)
}

// uniqueIDs drops repeated IDs, keeping first-seen order.
func uniqueIDs(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

// expand maps fetched videos back onto the requested ID order.
func expand(ids []string, byID map[string]models.Video) ([]models.Video, error) {
	var missing []string
	videos := make([]models.Video, 0, len(ids))
	for _, id := range ids {
		v, ok := byID[id]
		if !ok {
			missing = append(missing, id)
			continue
		}
		videos = append(videos, v)
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %v", ErrVideoNotFound, uniqueIDs(missing))
	}
	return videos, nil
}
