// Package events publishes lending events for downstream consumers.
package events

import (
	"context"
	"strconv"
	"time"

	"github.com/Astemirdum/lending-service/lending/internal/model"
	"github.com/Astemirdum/lending-service/pkg/kafka"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Emitter interface {
	Emit(ctx context.Context, e kafka.LendingEvent)
}

type publisher interface {
	Publish(topic, key string, v any) error
}

type Kafka struct {
	pub publisher
	log *zap.Logger
	now func() time.Time
}

func NewKafka(pub publisher, log *zap.Logger) *Kafka {
	return &Kafka{pub: pub, log: log.Named("events"), now: time.Now}
}

// Emit stamps the event and publishes it keyed by user, failures are only logged.
func (k *Kafka) Emit(_ context.Context, e kafka.LendingEvent) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = k.now().UTC()
	}
	if err := k.pub.Publish(kafka.LendingTopic, strconv.FormatInt(e.UserID, 10), e); err != nil {
		k.log.Warn("event dropped", zap.String("type", string(e.Type)), zap.Error(err))
	}
}

type Nop struct{}

func (Nop) Emit(context.Context, kafka.LendingEvent) {}

func BorrowingEvent(typ kafka.EventType, b model.Borrowing) kafka.LendingEvent {
	return kafka.LendingEvent{
		Type:        typ,
		UserID:      b.UserID,
		BorrowingID: b.ID,
		BookID:      b.BookID,
	}
}

func PaymentEvent(typ kafka.EventType, p model.Payment) kafka.LendingEvent {
	return kafka.LendingEvent{
		Type:        typ,
		UserID:      p.UserID,
		BorrowingID: p.BorrowingID,
		PaymentID:   p.ID,
		Amount:      p.MoneyToPay.StringFixed(2),
	}
}
