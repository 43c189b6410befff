package notify

import (
	"context"
	"sync"

	tele "gopkg.in/telebot.v3"

	"taxipark/pkg/logger"
	"taxipark/pkg/models"
)

// sender is the part of *tele.Bot used here.
type sender interface {
	Send(to tele.Recipient, what interface{}, opts ...interface{}) (*tele.Message, error)
}

// Telegram posts assignment changes to an admin chat.
type Telegram struct {
	bot    sender
	chatID int64
	log    logger.ILogger
	wg     sync.WaitGroup
}

// NewTelegram builds an offline bot: no polling, sending only.
func NewTelegram(token string, chatID int64, log logger.ILogger) (*Telegram, error) {
	b, err := tele.NewBot(tele.Settings{
		Token:   token,
		Offline: true,
	})
	if err != nil {
		return nil, err
	}
	return &Telegram{bot: b, chatID: chatID, log: log}, nil
}

// New returns a Telegram notifier when token and chat are configured, Nop otherwise.
func New(token string, chatID int64, log logger.ILogger) (Notifier, error) {
	if token == "" || chatID == 0 {
		return Nop{}, nil
	}
	return NewTelegram(token, chatID, log)
}

// AssignmentChanged sends in the background; delivery failures are only logged.
func (t *Telegram) AssignmentChanged(_ context.Context, car *models.Car, driver *models.Driver, assigned bool) {
	text := AssignmentMessage(car, driver, assigned)
	t.wg.Add(1)
	go func() {
		defer t.wg.Done()
		if _, err := t.bot.Send(tele.ChatID(t.chatID), text); err != nil {
			t.log.Warning("failed to send telegram notification",
				logger.Int64("car_id", car.ID),
				logger.Int64("driver_id", driver.ID),
				logger.Error(err),
			)
		}
	}()
}

// Wait blocks until queued notifications are sent.
func (t *Telegram) Wait() {
	t.wg.Wait()
}
