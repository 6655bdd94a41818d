package handler

import (
	"context"
	"encoding/json"

	"github.com/Astemirdum/lending-service/pkg/kafka"
	"github.com/IBM/sarama"
	"go.uber.org/zap"
)

type deliver func(ctx context.Context, text string) error

// Consumer delivers queued notifications. A message whose delivery fails is
// left unmarked so it is redelivered after the next rebalance.
type Consumer struct {
	deliverHandler deliver
	log            *zap.Logger
}

func NewConsumer(d deliver, log *zap.Logger) *Consumer {
	return &Consumer{
		deliverHandler: d,
		log:            log.Named("consumer"),
	}
}

func (consumer *Consumer) Setup(sarama.ConsumerGroupSession) error {
	consumer.log.Debug("consumer session setup")
	return nil
}

func (consumer *Consumer) Cleanup(sarama.ConsumerGroupSession) error {
	return nil
}

func (consumer *Consumer) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for {
		select {
		case message, ok := <-claim.Messages():
			if !ok {
				consumer.log.Warn("message channel was closed")
				return nil
			}
			var msg kafka.NotificationMessage
			if err := json.Unmarshal(message.Value, &msg); err != nil {
				consumer.log.Error("bad notification message", zap.Error(err))
				session.MarkMessage(message, "")
				continue
			}
			if err := consumer.deliverHandler(session.Context(), msg.Text); err != nil {
				consumer.log.Error("consumer.deliverHandler", zap.Error(err))
				continue
			}
			consumer.log.Debug("notification delivered", zap.Time("created_at", msg.CreatedAt), zap.String("topic", message.Topic))
			session.MarkMessage(message, "")
		case <-session.Context().Done():
			return nil
		}
	}
}
