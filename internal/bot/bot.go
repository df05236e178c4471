package bot

import (
	"context"
	"log"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Sender delivers messages and chat actions to Telegram
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

type Handler interface {
	CanHandle(update tgbotapi.Update) bool
	Handle(bot Sender, update tgbotapi.Update)
}

type Bot struct {
	api      *tgbotapi.BotAPI
	handlers []Handler
}

func New(token string) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}

	log.Printf("[BOT] Authorized on account %s", api.Self.UserName)

	return &Bot{
		api:      api,
		handlers: make([]Handler, 0),
	}, nil
}

func (b *Bot) RegisterHandler(h Handler) {
	b.handlers = append(b.handlers, h)
	log.Printf("[BOT] Registered handler: %T", h)
}

// Dispatch hands the update to the first handler that accepts it
func (b *Bot) Dispatch(sender Sender, update tgbotapi.Update) bool {
	if update.Message == nil && update.CallbackQuery == nil {
		log.Printf("[BOT] Skipping update: no message or callback")
		return false
	}

	for _, handler := range b.handlers {
		if handler.CanHandle(update) {
			log.Printf("[BOT] Handling with: %T", handler)
			go handler.Handle(sender, update)
			return true
		}
	}

	log.Printf("[BOT] No handler found for update")
	return false
}

// Run polls for updates until ctx is cancelled
func (b *Bot) Run(ctx context.Context) {
	log.Printf("[BOT] Starting bot with %d handlers", len(b.handlers))

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			log.Printf("[BOT] Stopping")
			b.api.StopReceivingUpdates()
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			if update.Message != nil && update.Message.From != nil {
				log.Printf("[BOT] Message from %s (@%s): %s",
					update.Message.From.FirstName,
					update.Message.From.UserName,
					update.Message.Text)
			}
			b.Dispatch(b.api, update)
		}
	}
}
