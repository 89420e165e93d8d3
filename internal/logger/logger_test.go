package logger

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel(" warning"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel(""))
	assert.Equal(t, slog.LevelInfo, ParseLevel("loud"))
}

func TestWriterLevel(t *testing.T) {
	var buf bytes.Buffer
	l := NewWriter(&buf, slog.LevelWarn)

	l.Info("hidden")
	assert.Empty(t, buf.String())

	l.With("doc", "d1").Warn("empty ack")
	assert.Contains(t, buf.String(), "[gopad] empty ack")
	assert.Contains(t, buf.String(), "doc=d1")
	assert.False(t, l.Enabled(slog.LevelDebug))
}
