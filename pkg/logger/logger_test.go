package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInfo_IncludesRequestID(t *testing.T) {
	var buf bytes.Buffer
	InitWithWriter(&buf, "info", "json", false)

	ctx := ContextWithRequestID(context.Background(), "req-1", "trace-1")
	Info(ctx, "Bars upserted", "symbol", "AAPL", "count", 3)

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "Bars upserted", line["msg"])
	assert.Equal(t, "req-1", line["request_id"])
	assert.Equal(t, "trace-1", line["trace_id"])
	assert.Equal(t, "AAPL", line["symbol"])
	assert.Equal(t, "req-1", RequestIDFromContext(ctx))
}

func TestDebug_FilteredByLevel(t *testing.T) {
	var buf bytes.Buffer
	InitWithWriter(&buf, "warn", "text", false)

	Debug(context.Background(), "hidden")
	Info(context.Background(), "hidden too")
	Warn(context.Background(), "visible")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "visible")
}

func TestWithAttrsKeepsContextFields(t *testing.T) {
	var buf bytes.Buffer
	InitWithWriter(&buf, "info", "json", false)

	l := Get().With("component", "scheduler")
	l.InfoContext(ContextWithRequestID(context.Background(), "req-2", ""), "tick")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "scheduler", line["component"])
	assert.Equal(t, "req-2", line["request_id"])
	_, hasTrace := line["trace_id"]
	assert.False(t, hasTrace)
}
