package logging

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func newBufferLogger(level slog.Level) (*SlogLogger, *bytes.Buffer) {
	var buf bytes.Buffer
	handler := slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: level})

	return NewSlog(slog.New(handler)), &buf
}

func TestSlogLogger_Levels(t *testing.T) {
	logger, buf := newBufferLogger(slog.LevelDebug)

	logger.Debug("debug msg", "key", "value")
	logger.Info("info msg", "count", 3)
	logger.Warn("warn msg")
	logger.Error("error msg", "err", "boom")

	out := buf.String()
	require.Contains(t, out, "debug msg")
	require.Contains(t, out, "info msg")
	require.Contains(t, out, "count=3")
	require.Contains(t, out, "warn msg")
	require.Contains(t, out, "error msg")
	require.Contains(t, out, "err=boom")
}

func TestSlogLogger_RespectsLevel(t *testing.T) {
	logger, buf := newBufferLogger(slog.LevelWarn)

	logger.Debug("hidden")
	logger.Info("also hidden")
	logger.Warn("visible")

	out := buf.String()
	require.NotContains(t, out, "hidden")
	require.Contains(t, out, "visible")
}

func TestNopLogger_DiscardsEverything(t *testing.T) {
	logger := NewNop()

	// Nothing to assert beyond "does not panic"; Fatal must not exit.
	logger.Debug("msg")
	logger.Info("msg", "k", "v")
	logger.Warn("msg")
	logger.Error("msg")
	logger.Fatal("msg")
}
