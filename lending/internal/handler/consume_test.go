package handler_test

import (
	"context"
	"testing"

	"github.com/Astemirdum/lending-service/lending/internal/handler"
	"github.com/IBM/sarama"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeSession struct {
	sarama.ConsumerGroupSession
	ctx    context.Context
	marked []int64
}

func (s *fakeSession) Context() context.Context { return s.ctx }

func (s *fakeSession) MarkMessage(msg *sarama.ConsumerMessage, _ string) {
	s.marked = append(s.marked, msg.Offset)
}

type fakeClaim struct {
	sarama.ConsumerGroupClaim
	messages chan *sarama.ConsumerMessage
}

func (c *fakeClaim) Messages() <-chan *sarama.ConsumerMessage { return c.messages }

func TestConsumer_ConsumeClaim(t *testing.T) {
	t.Parallel()
	var delivered []string
	consumer := handler.NewConsumer(func(_ context.Context, text string) error {
		if text == "fail" {
			return errors.New("telegram is down")
		}
		delivered = append(delivered, text)
		return nil
	}, zap.NewNop())

	claim := &fakeClaim{messages: make(chan *sarama.ConsumerMessage, 3)}
	claim.messages <- &sarama.ConsumerMessage{Offset: 1, Value: []byte(`{"text":"Session cs_1 is expired.","createdAt":"2024-01-01T00:00:00Z"}`)}
	claim.messages <- &sarama.ConsumerMessage{Offset: 2, Value: []byte(`not json`)}
	claim.messages <- &sarama.ConsumerMessage{Offset: 3, Value: []byte(`{"text":"fail"}`)}
	close(claim.messages)
	session := &fakeSession{ctx: context.Background()}

	require.NoError(t, consumer.ConsumeClaim(session, claim))
	require.Equal(t, []string{"Session cs_1 is expired."}, delivered)
	require.Equal(t, []int64{1, 2}, session.marked)
}
