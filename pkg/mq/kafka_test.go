package mq

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wyfcoding/stockinsight/pkg/config"
)

type recordingPublisher struct {
	topic string
	key   string
	value any
}

func (p *recordingPublisher) Publish(_ context.Context, topic, key string, value any) error {
	p.topic, p.key, p.value = topic, key, value
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func TestNewPublisher_NoBrokersIsNoop(t *testing.T) {
	pub := NewPublisher(config.KafkaConfig{})
	_, ok := pub.(NoopPublisher)
	assert.True(t, ok)
	assert.NoError(t, pub.Publish(context.Background(), "t", "k", map[string]string{"a": "b"}))
	assert.NoError(t, pub.Close())
}

func TestDeadLetterQueue_Send(t *testing.T) {
	pub := &recordingPublisher{}
	dlq := NewDeadLetterQueue(pub, "marketdata.fetch.requests.dlq")

	msg := &Message{Topic: "marketdata.fetch.requests", Key: "AAPL", Value: []byte(`{"symbol":"AAPL"}`), Offset: 7, Time: time.Now()}
	require.NoError(t, dlq.Send(context.Background(), msg, "handler failed", errors.New("boom")))

	assert.Equal(t, "marketdata.fetch.requests.dlq", pub.topic)
	assert.Equal(t, "AAPL", pub.key)
	body := pub.value.(map[string]any)
	assert.Equal(t, "boom", body["failure_error"])
	assert.Equal(t, int64(7), body["original_offset"])
}

func TestMessage_UnmarshalPayload(t *testing.T) {
	payload, _ := json.Marshal(map[string]string{"symbol": "BTC"})
	var out struct {
		Symbol string `json:"symbol"`
	}
	require.NoError(t, (&Message{Value: payload}).UnmarshalPayload(&out))
	assert.Equal(t, "BTC", out.Symbol)
}
