// Package config loads the video list file and the environment settings.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/anatolykoptev/go-kit/env"
)

var (
	// ErrNoVideos indicates the configuration file has no "videos" field.
	ErrNoVideos = errors.New("no videos in configuration")
	// ErrEmptyVideos indicates the "videos" field is an empty list.
	ErrEmptyVideos = errors.New("video list is empty")
	// ErrNoKey indicates no API key was given in the file or on the command line.
	ErrNoKey = errors.New("no authentication key")
	// ErrInvalidVideoID indicates an entry is neither a video ID nor a YouTube link.
	ErrInvalidVideoID = errors.New("invalid video id")
)

var (
	bareIDRE = regexp.MustCompile(`^[a-zA-Z0-9_-]{11}$`)
	// plain words: lowercase, Capitalized or UPPERCASE letters only
	wordRE = regexp.MustCompile(`^(?:[A-Za-z][a-z]{10}|[A-Z]{11})$`)
	linkIDRE = regexp.MustCompile(`(?:youtube\.com/watch\?(?:[^\s]*&)?v=|youtu\.be/|youtube\.com/shorts/)([a-zA-Z0-9_-]{11})`)
)

// Config is the decoded video list file.
type Config struct {
	Key    string   `json:"key"`
	Videos []string `json:"videos"`
}

type rawConfig struct {
	Key    *string   `json:"key"`
	Videos *[]string `json:"videos"`
}

// Load reads and decodes the configuration file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	return Parse(data)
}

// Parse decodes a configuration document.
func Parse(data []byte) (*Config, error) {
	var raw rawConfig
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if raw.Videos == nil {
		return nil, ErrNoVideos
	}

	cfg := &Config{Videos: *raw.Videos}
	if raw.Key != nil {
		cfg.Key = *raw.Key
	}
	return cfg, nil
}

// ResolveKey picks the key from the file, falling back to flagKey.
func (c *Config) ResolveKey(flagKey string) (string, error) {
	if c.Key != "" {
		return c.Key, nil
	}
	if key := strings.TrimSpace(flagKey); key != "" {
		return key, nil
	}
	return "", ErrNoKey
}

// VideoIDs returns the normalized video IDs in file order, duplicates kept.
func (c *Config) VideoIDs() ([]string, error) {
	if len(c.Videos) == 0 {
		return nil, ErrEmptyVideos
	}
	ids := make([]string, 0, len(c.Videos))
	for _, v := range c.Videos {
		id, err := NormalizeID(v)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// NormalizeID accepts a bare video ID or a watch, youtu.be or shorts link.
func NormalizeID(s string) (string, error) {
	s = strings.TrimSpace(s)
	if bareIDRE.MatchString(s) {
		return s, nil
	}
	if m := linkIDRE.FindStringSubmatch(s); len(m) > 1 {
		return m[1], nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidVideoID, s)
}

// ExtractIDs finds every video ID in free text, in order of appearance.
// Bare tokens that read as ordinary words are not taken for IDs.
func ExtractIDs(text string) []string {
	var ids []string
	for _, field := range strings.Fields(text) {
		if wordRE.MatchString(field) {
			continue
		}
		if id, err := NormalizeID(field); err == nil {
			ids = append(ids, id)
		}
	}
	return ids
}

// Settings holds the environment driven settings shared by the CLI and the bot.
type Settings struct {
	DBPath         string
	Concurrency    int
	RatePerSecond  int
	Timeout        time.Duration
	TelegramToken  string
	TelegramChatID int64
	YouTubeAPIKey  string
	DefaultDays    int
}

// LoadSettings reads Settings from the environment.
func LoadSettings() Settings {
	return Settings{
		DBPath:         env.Str("TUBEPROPHET_DB", ""),
		Concurrency:    env.Int("TUBEPROPHET_CONCURRENCY", 4),
		RatePerSecond:  env.Int("TUBEPROPHET_RATE", 5),
		Timeout:        env.Duration("TUBEPROPHET_TIMEOUT", 30*time.Second),
		TelegramToken:  env.Str("TELEGRAM_BOT_TOKEN", ""),
		TelegramChatID: int64(env.Int("TELEGRAM_CHAT_ID", 0)),
		YouTubeAPIKey:  env.Str("YOUTUBE_API_KEY", ""),
		DefaultDays:    env.Int("TUBEPROPHET_DAYS", 100),
	}
}
