package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, LevelDebug, ParseLevel("debug"))
	assert.Equal(t, LevelWarn, ParseLevel("warn"))
	assert.Equal(t, LevelError, ParseLevel("error"))
	assert.Equal(t, LevelInfo, ParseLevel("info"))
	assert.Equal(t, LevelInfo, ParseLevel("garbage"))
}

func TestLoggerEmitsStructuredJSON(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, LevelInfo, "tokenlens")

	log.Info(context.Background(), "price resolved", "token", "0xabc")
	require.NoError(t, log.Sync())

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "price resolved", entry["msg"])
	assert.Equal(t, "tokenlens", entry["service"])
	assert.Equal(t, "0xabc", entry["token"])
}

func TestLoggerFiltersBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, LevelWarn, "tokenlens")

	log.Debug(context.Background(), "noise")
	log.Info(context.Background(), "still noise")
	require.NoError(t, log.Sync())

	assert.Zero(t, buf.Len())
}
