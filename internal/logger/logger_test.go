package logger

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestMultiHandler_FansOutByLevel(t *testing.T) {
	var debugBuf, warnBuf bytes.Buffer
	debugHandler := slog.NewTextHandler(&debugBuf, &slog.HandlerOptions{Level: slog.LevelDebug})
	warnHandler := slog.NewTextHandler(&warnBuf, &slog.HandlerOptions{Level: slog.LevelWarn})

	log := slog.New(NewMultiHandler(debugHandler, warnHandler)).With("component", "test")

	log.Info("task created", "task.id", 1)
	log.Warn("publish failed")

	if !strings.Contains(debugBuf.String(), "task created") || !strings.Contains(debugBuf.String(), "publish failed") {
		t.Errorf("debug handler missing records: %q", debugBuf.String())
	}
	if strings.Contains(warnBuf.String(), "task created") {
		t.Errorf("warn handler received an info record: %q", warnBuf.String())
	}
	if !strings.Contains(warnBuf.String(), "publish failed") || !strings.Contains(warnBuf.String(), "component=test") {
		t.Errorf("warn handler missing record or attrs: %q", warnBuf.String())
	}
}

func TestMultiHandler_Enabled(t *testing.T) {
	h := NewMultiHandler(
		slog.NewTextHandler(&bytes.Buffer{}, &slog.HandlerOptions{Level: slog.LevelError}),
		slog.NewTextHandler(&bytes.Buffer{}, &slog.HandlerOptions{Level: slog.LevelWarn}),
	)
	ctx := context.Background()
	if h.Enabled(ctx, slog.LevelInfo) {
		t.Error("expected info to be disabled")
	}
	if !h.Enabled(ctx, slog.LevelWarn) {
		t.Error("expected warn to be enabled")
	}
}
