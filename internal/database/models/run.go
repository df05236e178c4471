package models

import "time"

// Run origins
const (
	OriginCLI      = "cli"
	OriginTelegram = "telegram"
)

// ForecastRun represents a single prediction request
type ForecastRun struct {
	ID         string
	Origin     string
	ChatID     int64
	VideoCount int
	Days       int
	Changes    int
	CreatedAt  time.Time
}
