package kafka

import (
	"context"
	"errors"
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/catalog-backend/pkg/config"
)

type recordingWriter struct {
	msgs     []kafkago.Message
	err      error
	deadline bool
	closed   bool
}

func (w *recordingWriter) WriteMessages(ctx context.Context, msgs ...kafkago.Message) error {
	_, w.deadline = ctx.Deadline()
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *recordingWriter) Close() error {
	w.closed = true
	return nil
}

func TestPublishMapsMessages(t *testing.T) {
	writer := &recordingWriter{}
	pub := newPublisher(writer, config.KafkaConfig{WriteTimeout: time.Second}, nil)

	err := pub.Publish(context.Background(), Message{
		Topic:   "catalog.discount-events",
		Key:     []byte("discount-1"),
		Value:   []byte(`{"ok":true}`),
		Headers: map[string]string{"event_type": "discount_submitted"},
	})
	require.NoError(t, err)
	require.True(t, writer.deadline)
	require.Len(t, writer.msgs, 1)

	msg := writer.msgs[0]
	require.Equal(t, "catalog.discount-events", msg.Topic)
	require.Equal(t, []byte("discount-1"), msg.Key)
	require.False(t, msg.Time.IsZero())
	require.Len(t, msg.Headers, 1)
	require.Equal(t, "event_type", msg.Headers[0].Key)
	require.Equal(t, []byte("discount_submitted"), msg.Headers[0].Value)

	require.NoError(t, pub.Close())
	require.True(t, writer.closed)
}

func TestPublishErrors(t *testing.T) {
	writer := &recordingWriter{err: errors.New("broker down")}
	pub := newPublisher(writer, config.KafkaConfig{}, nil)

	require.NoError(t, pub.Publish(context.Background()))
	require.ErrorContains(t, pub.Publish(context.Background(), Message{Value: []byte("x")}), "topic is required")
	require.ErrorContains(t, pub.Publish(context.Background(), Message{Topic: "t", Value: []byte("x")}), "broker down")

	var nilPub *Publisher
	require.Error(t, nilPub.Publish(context.Background(), Message{Topic: "t"}))
}

func TestNewPublisherRequiresBrokers(t *testing.T) {
	_, err := NewPublisher(config.KafkaConfig{}, nil)
	require.Error(t, err)

	pub, err := NewPublisher(config.KafkaConfig{Brokers: []string{"localhost:9092"}, Topic: "t"}, nil)
	require.NoError(t, err)
	require.NoError(t, pub.Close())
}

func TestPublishSplitsPartialFailures(t *testing.T) {
	writer := &recordingWriter{err: kafkago.WriteErrors{nil, kafkago.MessageSizeTooLarge, kafkago.LeaderNotAvailable}}
	pub := newPublisher(writer, config.KafkaConfig{}, nil)

	msgs := []Message{
		{Topic: "t", Value: []byte("a")},
		{Topic: "t", Value: []byte("b")},
		{Topic: "t", Value: []byte("c")},
	}
	err := pub.Publish(context.Background(), msgs...)
	require.Error(t, err)

	errs := MessageErrors(err, len(msgs))
	require.NoError(t, errs[0])
	require.True(t, IsPermanent(errs[1]))
	require.Error(t, errs[2])
	require.False(t, IsPermanent(errs[2]))
}

func TestMessageErrorsSpreadsWholeBatchFailure(t *testing.T) {
	require.Equal(t, []error{nil, nil}, MessageErrors(nil, 2))

	down := errors.New("broker down")
	errs := MessageErrors(down, 2)
	require.ErrorIs(t, errs[0], down)
	require.ErrorIs(t, errs[1], down)

	require.True(t, IsPermanent(classify(kafkago.TopicAuthorizationFailed)))
	require.False(t, IsPermanent(classify(kafkago.RequestTimedOut)))
}
