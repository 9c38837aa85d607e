package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/ledger-importer/pkg/logger/slogx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	return out
}

func TestMiddlewareErrorStackTrace(t *testing.T) {
	var buf bytes.Buffer
	handler := slog.NewJSONHandler(&buf, &slog.HandlerOptions{
		ReplaceAttr: attrReplacerChain(levelAttrReplacer, errorAttrReplacer),
	})
	l := slog.New(newChainHandlers(handler, middlewareErrorStackTrace()))

	ctx := NewContext(context.Background(), l)
	ErrorContext(ctx, "failed", slogx.String(RecordFileKey, "f1"), slogx.Error(errors.New("boom")))

	out := decode(t, &buf)
	assert.Equal(t, "boom", out[ErrorKey])
	assert.Equal(t, "f1", out[RecordFileKey])
	assert.Contains(t, out[ErrorVerboseKey], "boom")
	assert.NotEmpty(t, out[ErrorStackTraceKey])
}

func TestWithContext(t *testing.T) {
	var buf bytes.Buffer
	l := slog.New(slog.NewJSONHandler(&buf, nil))

	ctx := NewContext(context.Background(), l)
	ctx = WithContext(ctx, slogx.Int64(ConsensusTimestampKey, 42))
	InfoContext(ctx, "processed")

	assert.EqualValues(t, 42, decode(t, &buf)[ConsensusTimestampKey])
}

func TestLevelAttrReplacer(t *testing.T) {
	testCases := []struct {
		level    slog.Level
		expected string
	}{
		{slog.LevelError, "ERROR"},
		{LevelCritical, "CRITICAL"},
		{LevelCritical + 1, "CRITICAL+1"},
		{LevelPanic, "PANIC"},
		{LevelFatal, "FATAL"},
		{LevelFatal + 2, "FATAL+2"},
	}
	for _, tc := range testCases {
		var buf bytes.Buffer
		l := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{ReplaceAttr: levelAttrReplacer}))
		l.Log(context.Background(), tc.level, "msg")
		assert.Equal(t, tc.expected, decode(t, &buf)[LevelKey], tc.level)
	}
}

func TestGCPAttrReplacer(t *testing.T) {
	var buf bytes.Buffer
	l := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{
		ReplaceAttr: attrReplacerChain(gcpAttrReplacer, levelAttrReplacer),
	}))
	l.Log(context.Background(), LevelFatal, "flush failed")

	out := decode(t, &buf)
	assert.Equal(t, "EMERGENCY", out["severity"])
	assert.Equal(t, "flush failed", out["message"])
	assert.NotContains(t, out, LevelKey)
}
