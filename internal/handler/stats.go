package handler

import (
	"fmt"
	"log"
	"strings"

	"github.com/artur/tubeprophet/internal/bot"
	"github.com/artur/tubeprophet/internal/database/repository"
	"github.com/dustin/go-humanize"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const topVideosLimit = 5

// StatsSource exposes the stored totals
type StatsSource interface {
	GetTotalSnapshots() (int64, error)
	MostViewed(limit int) ([]repository.ViewedVideo, error)
}

// RunCounter exposes the number of recorded runs
type RunCounter interface {
	GetTotalRuns() (int64, error)
}

type StatsHandler struct {
	snapshots StatsSource
	runs      RunCounter
}

func NewStatsHandler(snapshots StatsSource, runs RunCounter) *StatsHandler {
	return &StatsHandler{
		snapshots: snapshots,
		runs:      runs,
	}
}

func (h *StatsHandler) CanHandle(update tgbotapi.Update) bool {
	return update.Message != nil && update.Message.IsCommand() && update.Message.Command() == "stats"
}

func (h *StatsHandler) Handle(sender bot.Sender, update tgbotapi.Update) {
	text, err := h.render()
	if err != nil {
		log.Printf("[STATS] Failed to load stats: %v", err)
		text = "❌ Statistics are unavailable right now."
	}

	if err := bot.SendText(sender, update.Message.Chat.ID, text); err != nil {
		log.Printf("[STATS] Failed to send message: %v", err)
	}
}

func (h *StatsHandler) render() (string, error) {
	runs, err := h.runs.GetTotalRuns()
	if err != nil {
		return "", err
	}
	snapshots, err := h.snapshots.GetTotalSnapshots()
	if err != nil {
		return "", err
	}
	top, err := h.snapshots.MostViewed(topVideosLimit)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "📊 Predictions: %s\n", humanize.Comma(runs))
	fmt.Fprintf(&b, "Snapshots stored: %s", humanize.Comma(snapshots))
	if len(top) > 0 {
		b.WriteString("\n\nMost viewed videos:")
		for i, v := range top {
			fmt.Fprintf(&b, "\n%d. %s - %s views", i+1, v.Title, humanize.Comma(v.Views))
		}
	}
	return b.String(), nil
}
