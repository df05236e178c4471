package bot

import (
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// MaxMessageLength is Telegram's limit for a single text message
const MaxMessageLength = 4096

// Notifier posts reports to a fixed chat
type Notifier struct {
	sender Sender
	chatID int64
}

// NewNotifier creates a Notifier for chatID
func NewNotifier(sender Sender, chatID int64) *Notifier {
	return &Notifier{sender: sender, chatID: chatID}
}

// NewNotifierFromToken authorizes with token and creates a Notifier for chatID
func NewNotifierFromToken(token string, chatID int64) (*Notifier, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram client: %w", err)
	}
	return NewNotifier(api, chatID), nil
}

// Notify sends text, split into several messages when needed
func (n *Notifier) Notify(text string) error {
	return SendText(n.sender, n.chatID, text)
}

// SendText sends text to chatID in chunks that fit a Telegram message
func SendText(sender Sender, chatID int64, text string) error {
	for _, chunk := range SplitMessage(text, MaxMessageLength) {
		if _, err := sender.Send(tgbotapi.NewMessage(chatID, chunk)); err != nil {
			return fmt.Errorf("failed to send message: %w", err)
		}
	}
	return nil
}

// SplitMessage breaks text on line boundaries into chunks of at most limit runes.
// Lines longer than limit are cut.
func SplitMessage(text string, limit int) []string {
	text = strings.TrimRight(text, "\n")
	if text == "" {
		return nil
	}

	var chunks []string
	var cur []rune
	flush := func() {
		if len(cur) > 0 {
			chunks = append(chunks, string(cur))
			cur = cur[:0]
		}
	}

	for _, line := range strings.Split(text, "\n") {
		r := []rune(line)
		for len(r) > limit {
			flush()
			chunks = append(chunks, string(r[:limit]))
			r = r[limit:]
		}

		need := len(r)
		if len(cur) > 0 {
			need++
		}
		if len(cur)+need > limit {
			flush()
		}
		if len(cur) > 0 {
			cur = append(cur, '\n')
		}
		cur = append(cur, r...)
	}
	flush()
	return chunks
}
