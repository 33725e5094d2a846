package eventbroker

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/AlibekovAA/smalltalk-feed/internal/common/logger"
	"github.com/AlibekovAA/smalltalk-feed/internal/post/domain"
)

type mockConn struct {
	msgs []*nats.Msg
	err  error
}

func (m *mockConn) PublishMsg(msg *nats.Msg) error {
	if m.err != nil {
		return m.err
	}
	m.msgs = append(m.msgs, msg)
	return nil
}

func testLogger() *logger.Logger {
	return logger.NewWithWriter(&bytes.Buffer{}, "feed-test", "debug")
}

func TestNatsPublisher_PublishPostCreated(t *testing.T) {
	otel.SetTextMapPropagator(propagation.TraceContext{})

	conn := &mockConn{}
	pub := NewNatsPublisher(conn, testLogger())

	traceID, err := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	require.NoError(t, err)
	spanID, err := trace.SpanIDFromHex("00f067aa0ba902b7")
	require.NoError(t, err)
	ctx := trace.ContextWithSpanContext(context.Background(), trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
	}))

	event := domain.CreatedEvent{
		PostID:    12,
		AuthorID:  7,
		Author:    "alice",
		CreatedAt: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
	require.NoError(t, pub.PublishPostCreated(ctx, event))
	require.Len(t, conn.msgs, 1)

	msg := conn.msgs[0]
	assert.Equal(t, "post.created", msg.Subject)
	assert.Contains(t, msg.Header.Get("traceparent"), "4bf92f3577b34da6a3ce929d0e0e4736")

	var decoded domain.CreatedEvent
	require.NoError(t, json.Unmarshal(msg.Data, &decoded))
	assert.Equal(t, event, decoded)
}

func TestNatsPublisher_PublishError(t *testing.T) {
	conn := &mockConn{err: errors.New("connection closed")}
	pub := NewNatsPublisher(conn, testLogger())

	err := pub.PublishPostCreated(context.Background(), domain.CreatedEvent{PostID: 1})
	assert.Error(t, err)
}

func TestNoopPublisher(t *testing.T) {
	assert.NoError(t, NoopPublisher{}.PublishPostCreated(context.Background(), domain.CreatedEvent{}))
}
