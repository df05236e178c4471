package handler

import (
	"log"

	"github.com/artur/tubeprophet/internal/bot"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const helpText = `Send me YouTube links and I will predict how their ranking by views changes over time.

/predict [days] <links or video ids...>
/stats shows what has been tracked so far
Example: /predict 30 https://youtu.be/dQw4w9WgXcQ 9bZkp7q19f0`

type StartHandler struct{}

func NewStartHandler() *StartHandler {
	return &StartHandler{}
}

func (h *StartHandler) CanHandle(update tgbotapi.Update) bool {
	if update.Message == nil || !update.Message.IsCommand() {
		return false
	}
	switch update.Message.Command() {
	case "start", "help":
		return true
	}
	return false
}

func (h *StartHandler) Handle(sender bot.Sender, update tgbotapi.Update) {
	userName := getUserName(update.Message.From)

	log.Printf("[START] Greeting user: %s", userName)

	if err := bot.SendText(sender, update.Message.Chat.ID, formatGreeting(userName)); err != nil {
		log.Printf("[START] Failed to send message: %v", err)
	}
}

func getUserName(from *tgbotapi.User) string {
	if from == nil {
		return ""
	}
	if from.FirstName != "" {
		return from.FirstName
	}
	return from.UserName
}

func formatGreeting(userName string) string {
	if userName == "" {
		return "Hi! " + helpText
	}
	return "Hi, " + userName + "! " + helpText
}
