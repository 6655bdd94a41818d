// Package notify delivers advisory text messages. Delivery is best effort:
// failures are logged and never reach the business operation that triggered them.
package notify

import (
	"context"
	"net/http"
	"time"

	"github.com/Astemirdum/lending-service/lending/config"
	"github.com/Astemirdum/lending-service/lending/internal/errs"
	"github.com/Astemirdum/lending-service/pkg/kafka"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

type Notifier interface {
	Notify(ctx context.Context, text string)
}

type Log struct {
	log *zap.Logger
}

func NewLog(log *zap.Logger) *Log {
	return &Log{log: log.Named("notify")}
}

func (n *Log) Notify(_ context.Context, text string) {
	n.log.Info("notification", zap.String("text", text))
}

type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

type Telegram struct {
	bot    sender
	chatID int64
	log    *zap.Logger
}

func NewTelegram(cfg config.Telegram, log *zap.Logger) (*Telegram, error) {
	bot, err := tgbotapi.NewBotAPIWithClient(cfg.BotToken, tgbotapi.APIEndpoint, &http.Client{Timeout: cfg.Timeout})
	if err != nil {
		return nil, errors.Wrap(err, "tgbotapi.NewBotAPI")
	}
	return newTelegram(bot, cfg.ChatID, log), nil
}

func newTelegram(bot sender, chatID int64, log *zap.Logger) *Telegram {
	return &Telegram{bot: bot, chatID: chatID, log: log.Named("telegram")}
}

func (n *Telegram) Notify(ctx context.Context, text string) {
	if err := n.Send(ctx, text); err != nil {
		n.log.Warn("notification dropped", zap.Error(err))
	}
}

// Send is the error-returning form, used by the queue consumer to decide on redelivery.
func (n *Telegram) Send(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return errors.Wrap(errs.ErrNotificationFailure, err.Error())
	}
	if _, err := n.bot.Send(tgbotapi.NewMessage(n.chatID, text)); err != nil {
		return errors.Wrapf(errs.ErrNotificationFailure, "telegram send: %v", err)
	}
	return nil
}

type publisher interface {
	Publish(topic, key string, v any) error
}

// Queue hands notifications to kafka; a consumer group delivers them later.
type Queue struct {
	pub publisher
	log *zap.Logger
	now func() time.Time
}

func NewQueue(pub publisher, log *zap.Logger) *Queue {
	return &Queue{pub: pub, log: log.Named("notify_queue"), now: time.Now}
}

func (n *Queue) Notify(_ context.Context, text string) {
	msg := kafka.NotificationMessage{Text: text, CreatedAt: n.now().UTC()}
	if err := n.pub.Publish(kafka.NotificationsTopic, "", msg); err != nil {
		n.log.Warn("notification dropped", zap.Error(errors.Wrap(errs.ErrNotificationFailure, err.Error())))
	}
}
