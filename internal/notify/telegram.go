// Package notify pushes operational events to the admins' Telegram chats.
// All methods are best-effort: a failed send is logged and dropped, the
// triggering operation never fails because of it.
package notify

import (
	"fmt"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

type Notifier struct {
	bot     *tgbotapi.BotAPI
	chatIDs []int64
	log     *zap.SugaredLogger
}

// New returns a no-op notifier when token is empty.
func New(token string, chatIDs []int64, log *zap.SugaredLogger) (*Notifier, error) {
	n := &Notifier{chatIDs: chatIDs, log: log}
	if token == "" || len(chatIDs) == 0 {
		return n, nil
	}
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram bot: %w", err)
	}
	n.bot = bot
	return n, nil
}

func (n *Notifier) ItemRequestFiled(studentName, itemName string, cost int) {
	n.send(fmt.Sprintf("🛍 %s requested %s (%d points)", studentName, itemName, cost))
}

func (n *Notifier) RegistrationFiled(name, role string) {
	n.send(fmt.Sprintf("📝 New registration: %s (%s)", name, role))
}

func (n *Notifier) PeriodExpired(periodName string, endedAt time.Time) {
	n.send(fmt.Sprintf("⏰ Period %q ended on %s but is still active", periodName, endedAt.Format("02.01.2006")))
}

func (n *Notifier) send(text string) {
	if n.bot == nil {
		return
	}
	for _, chatID := range n.chatIDs {
		if _, err := n.bot.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
			n.log.Warnw("notify send failed", "chat", chatID, "err", err)
		}
	}
}
