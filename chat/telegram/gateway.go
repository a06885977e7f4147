// Package telegram receives and answers chat messages through the Telegram
// Bot API using long polling.
package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"

	"github.com/guilherme-santos/calbot/internal"
)

const pollTimeout = 60

type botAPI interface {
	GetUpdatesChan(tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
	Send(tgbotapi.Chattable) (tgbotapi.Message, error)
}

type Gateway struct {
	bot    botAPI
	logger *slog.Logger
	newID  func() string
}

var _ internal.Gateway = (*Gateway)(nil)

func NewGateway(token string, debug bool, logger *slog.Logger) (*Gateway, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram: connecting: %w", err)
	}
	bot.Debug = debug
	logger.Info("telegram bot authorized", slog.String("username", bot.Self.UserName))
	return newGateway(bot, logger), nil
}

func newGateway(bot botAPI, logger *slog.Logger) *Gateway {
	return &Gateway{
		bot:    bot,
		logger: logger,
		newID:  uuid.NewString,
	}
}

// Receive streams text messages until ctx is cancelled, then closes the
// channel.
func (g *Gateway) Receive(ctx context.Context) (<-chan internal.Message, error) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = pollTimeout
	updates := g.bot.GetUpdatesChan(u)

	out := make(chan internal.Message)
	go func() {
		defer close(out)
		defer g.bot.StopReceivingUpdates()

		for {
			select {
			case <-ctx.Done():
				return
			case upd, ok := <-updates:
				if !ok {
					return
				}
				msg, ok := g.message(upd)
				if !ok {
					continue
				}
				select {
				case out <- msg:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}

func (g *Gateway) message(upd tgbotapi.Update) (internal.Message, bool) {
	m := upd.Message
	if m == nil || m.From == nil || m.Text == "" {
		return internal.Message{}, false
	}
	return internal.Message{
		ID:         g.newID(),
		UserID:     m.From.ID,
		Text:       m.Text,
		ReceivedAt: time.Unix(int64(m.Date), 0),
	}, true
}

// Send replies in the private chat of userID.
func (g *Gateway) Send(_ context.Context, userID int64, text string) error {
	if _, err := g.bot.Send(tgbotapi.NewMessage(userID, text)); err != nil {
		return fmt.Errorf("telegram: sending message: %w", err)
	}
	return nil
}
