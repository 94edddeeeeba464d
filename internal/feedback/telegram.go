package feedback

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"ble-watch.klederson.com/internal/logging"
	"ble-watch.klederson.com/internal/presence"
)

// Sender is the subset of *tgbotapi.BotAPI used here.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// TelegramNotifier messages a chat for New and ReseenLong alerts. Short
// re-sightings are too chatty for a phone.
type TelegramNotifier struct {
	bot    Sender
	chatID int64
	logger *zap.Logger
}

func NewTelegramNotifier(bot Sender, chatID int64) *TelegramNotifier {
	return &TelegramNotifier{
		bot:    bot,
		chatID: chatID,
		logger: logging.GetLoggerWith(logging.NameFeedback, zap.String("sink", "telegram")),
	}
}

// ConnectTelegram authorizes the bot token.
func ConnectTelegram(token string, chatID int64) (*TelegramNotifier, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to authorize telegram bot: %w", err)
	}
	return NewTelegramNotifier(bot, chatID), nil
}

func (n *TelegramNotifier) Alert(a presence.Alert) {
	if a.Kind == presence.ReseenShort {
		return
	}
	n.send(fmt.Sprintf("*%s* %s\n`%s` %s",
		escapeMarkdown(a.Kind.String()),
		escapeMarkdown(a.Label),
		escapeMarkdown(a.Identifier),
		escapeMarkdown(fmt.Sprintf("%d dBm", a.RSSI))))
}

func (n *TelegramNotifier) Ready() {
	n.send("Scanning started")
}

func (n *TelegramNotifier) send(text string) {
	if n.bot == nil || n.chatID == 0 {
		return
	}
	msg := tgbotapi.NewMessage(n.chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdownV2
	if _, err := n.bot.Send(msg); err != nil {
		n.logger.Warn("Failed to send telegram message", zap.Error(err))
	}
}

// escapeMarkdown makes operator-supplied text safe inside a MarkdownV2
// message; an unbalanced _ or * would otherwise get the message rejected.
func escapeMarkdown(text string) string {
	return tgbotapi.EscapeText(tgbotapi.ModeMarkdownV2, text)
}
