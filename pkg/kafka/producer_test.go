package kafka

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	mu       sync.Mutex
	messages []kafka.Message
	err      error
	closed   bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err != nil {
		return w.err
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func header(m kafka.Message, key string) string {
	for _, h := range m.Headers {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}

func buildMessage(t *testing.T) Message {
	t.Helper()
	msg, err := NewMessage().
		WithKey("booking-1").
		WithValue(map[string]string{"status": "pending"}).
		WithEventType("booking.created").
		WithSource("marketplace").
		Build()
	require.NoError(t, err)
	return msg
}

func TestMessageBuilder(t *testing.T) {
	msg := buildMessage(t)

	assert.Equal(t, "booking-1", msg.Key)
	assert.JSONEq(t, `{"status":"pending"}`, string(msg.Value))
	assert.NotEmpty(t, msg.EventID())
	assert.Equal(t, "booking.created", msg.EventType())
	assert.NotEmpty(t, msg.Headers[HeaderTimestamp])
}

func TestMessageBuilder_EncodingError(t *testing.T) {
	_, err := NewMessage().WithKey("k").WithValue(make(chan int)).Build()
	assert.ErrorIs(t, err, ErrInvalidMessage)
}

func TestPublish(t *testing.T) {
	w := &fakeWriter{}
	p := NewProducerWithWriter(w, nil, "booking-events")

	require.NoError(t, p.Publish(context.Background(), buildMessage(t)))
	require.Len(t, w.messages, 1)
	assert.Equal(t, "booking-1", string(w.messages[0].Key))
	assert.Equal(t, "booking.created", header(w.messages[0], HeaderEventType))
}

func TestPublish_RejectsInvalid(t *testing.T) {
	p := NewProducerWithWriter(&fakeWriter{}, nil, "booking-events")

	assert.ErrorIs(t, p.Publish(context.Background(), Message{Value: []byte("x")}), ErrEmptyKey)
	assert.ErrorIs(t, p.Publish(context.Background(), Message{Key: "k"}), ErrEmptyValue)
}

func TestPublish_MiddlewareOrder(t *testing.T) {
	p := NewProducerWithWriter(&fakeWriter{}, nil, "booking-events")
	var order []string
	for _, name := range []string{"first", "second"} {
		p.Use(func(ctx context.Context, msg Message, next func(context.Context, Message) error) error {
			order = append(order, name)
			assert.Equal(t, "booking-events", msg.Topic)
			return next(ctx, msg)
		})
	}

	require.NoError(t, p.Publish(context.Background(), buildMessage(t)))
	assert.Equal(t, []string{"first", "second"}, order)
}

func TestPublish_FailureGoesToDLQ(t *testing.T) {
	cause := errors.New("leader not available")
	main := &fakeWriter{err: cause}
	dlq := &fakeWriter{}
	p := NewProducerWithWriter(main, dlq, "booking-events")

	err := p.Publish(context.Background(), buildMessage(t))

	assert.ErrorIs(t, err, cause)
	require.Len(t, dlq.messages, 1)
	assert.Equal(t, "booking-events", header(dlq.messages[0], HeaderOriginalTopic))
	assert.Equal(t, cause.Error(), header(dlq.messages[0], "dlq-error"))
}

func TestClose(t *testing.T) {
	w := &fakeWriter{}
	p := NewProducerWithWriter(w, nil, "booking-events")

	require.NoError(t, p.Close())
	require.NoError(t, p.Close())
	assert.True(t, w.closed)
	assert.ErrorIs(t, p.Publish(context.Background(), buildMessage(t)), ErrProducerClosed)
}
