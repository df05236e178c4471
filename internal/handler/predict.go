package handler

import (
	"context"
	"errors"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/artur/tubeprophet/internal/bot"
	"github.com/artur/tubeprophet/internal/config"
	"github.com/artur/tubeprophet/internal/database/models"
	"github.com/artur/tubeprophet/internal/prophet"
	"github.com/artur/tubeprophet/internal/report"
	"github.com/artur/tubeprophet/internal/youtube"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const (
	maxDays        = 3650
	predictTimeout = 2 * time.Minute
)

// Predictor runs forecasts
type Predictor interface {
	Predict(ctx context.Context, req prophet.Request) (*prophet.Result, error)
}

type PredictHandler struct {
	predictor   Predictor
	defaultDays int
}

func NewPredictHandler(p Predictor, defaultDays int) *PredictHandler {
	return &PredictHandler{
		predictor:   p,
		defaultDays: defaultDays,
	}
}

func (h *PredictHandler) CanHandle(update tgbotapi.Update) bool {
	if update.Message == nil {
		return false
	}
	if update.Message.IsCommand() {
		return update.Message.Command() == "predict"
	}
	return hasYouTubeLink(update.Message.Text)
}

func (h *PredictHandler) Handle(sender bot.Sender, update tgbotapi.Update) {
	chatID := update.Message.Chat.ID

	text := update.Message.Text
	if update.Message.IsCommand() {
		text = update.Message.CommandArguments()
	}

	days, ids := parsePredictArgs(text, h.defaultDays)
	if len(ids) == 0 {
		h.reply(sender, chatID, "Please send at least one YouTube link or video id.\n\n"+helpText)
		return
	}

	sender.Send(tgbotapi.NewChatAction(chatID, tgbotapi.ChatTyping))

	ctx, cancel := context.WithTimeout(context.Background(), predictTimeout)
	defer cancel()

	res, err := h.predictor.Predict(ctx, prophet.Request{
		IDs:    ids,
		Days:   days,
		Origin: models.OriginTelegram,
		ChatID: chatID,
	})
	if err != nil {
		log.Printf("[PREDICT] Failed for chat %d: %v", chatID, err)
		h.reply(sender, chatID, "❌ "+describeError(err))
		return
	}

	h.reply(sender, chatID, report.Plain.Render(res.Projections, res.Changes))
}

func (h *PredictHandler) reply(sender bot.Sender, chatID int64, text string) {
	if err := bot.SendText(sender, chatID, text); err != nil {
		log.Printf("[PREDICT] Failed to send message: %v", err)
	}
}

// parsePredictArgs reads an optional leading day count followed by video references
func parsePredictArgs(text string, defaultDays int) (int, []string) {
	days := defaultDays
	fields := strings.Fields(text)
	if len(fields) > 0 {
		if n, err := strconv.Atoi(fields[0]); err == nil {
			if n > 0 {
				days = min(n, maxDays)
			}
			fields = fields[1:]
		}
	}
	return days, config.ExtractIDs(strings.Join(fields, " "))
}

func hasYouTubeLink(text string) bool {
	for _, field := range strings.Fields(text) {
		if !strings.Contains(field, "youtu") {
			continue
		}
		if _, err := config.NormalizeID(field); err == nil {
			return true
		}
	}
	return false
}

func describeError(err error) string {
	switch {
	case errors.Is(err, youtube.ErrVideoNotFound):
		return "Some videos were not found: " + err.Error()
	case errors.Is(err, youtube.ErrQuotaExceeded):
		return "The YouTube API quota is exhausted, try again later."
	case errors.Is(err, youtube.ErrInvalidKey):
		return "The bot's YouTube API key was rejected."
	default:
		return "Prediction failed: " + err.Error()
	}
}
