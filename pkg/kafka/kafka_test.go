package kafka_test

import (
	"encoding/json"
	"testing"

	"github.com/Astemirdum/lending-service/pkg/kafka"
	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/stretchr/testify/require"
)

func TestPublisher_Publish(t *testing.T) {
	t.Parallel()

	producer := mocks.NewSyncProducer(t, nil)
	producer.ExpectSendMessageWithCheckerFunctionAndSucceed(func(val []byte) error {
		var ev kafka.LendingEvent
		if err := json.Unmarshal(val, &ev); err != nil {
			return err
		}
		require.Equal(t, kafka.EventBorrowingCreated, ev.Type)
		require.Equal(t, int64(7), ev.BorrowingID)
		return nil
	})

	p := kafka.NewPublisher(producer)
	err := p.Publish(kafka.LendingTopic, "7", kafka.LendingEvent{Type: kafka.EventBorrowingCreated, BorrowingID: 7})
	require.NoError(t, err)
	require.NoError(t, producer.Close())
}

func TestPublisher_PublishError(t *testing.T) {
	t.Parallel()

	producer := mocks.NewSyncProducer(t, nil)
	producer.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	p := kafka.NewPublisher(producer)
	err := p.Publish(kafka.NotificationsTopic, "", kafka.NotificationMessage{Text: "hi"})
	require.ErrorIs(t, err, sarama.ErrOutOfBrokers)
	require.NoError(t, producer.Close())
}

func TestConfig_Enabled(t *testing.T) {
	t.Parallel()
	require.False(t, kafka.Config{}.Enabled())
	require.True(t, kafka.Config{Addrs: []string{"localhost:9092"}}.Enabled())
}
