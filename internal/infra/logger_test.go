package infra

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestTeeHandler_LevelRouting(t *testing.T) {
	var infoBuf, debugBuf bytes.Buffer
	info := slog.NewTextHandler(&infoBuf, &slog.HandlerOptions{Level: slog.LevelInfo})
	debug := slog.NewTextHandler(&debugBuf, &slog.HandlerOptions{Level: slog.LevelDebug})

	logger := slog.New(newTeeHandler(info, debug))

	logger.Debug("request detail", "path", "/fapi/v1/order")
	logger.Info("order placed", "orderId", 12345)

	if strings.Contains(infoBuf.String(), "request detail") {
		t.Error("debug record leaked into the info handler")
	}
	if !strings.Contains(infoBuf.String(), "order placed") {
		t.Error("info record missing from the info handler")
	}
	if !strings.Contains(debugBuf.String(), "request detail") {
		t.Error("debug record missing from the debug handler")
	}
	if !strings.Contains(debugBuf.String(), "order placed") {
		t.Error("info record missing from the debug handler")
	}
}

func TestTeeHandler_Enabled(t *testing.T) {
	info := slog.NewTextHandler(&bytes.Buffer{}, &slog.HandlerOptions{Level: slog.LevelInfo})
	debug := slog.NewTextHandler(&bytes.Buffer{}, &slog.HandlerOptions{Level: slog.LevelDebug})

	tee := newTeeHandler(info, debug)
	if !tee.Enabled(context.Background(), slog.LevelDebug) {
		t.Error("tee should be enabled at Debug when any handler accepts it")
	}

	infoOnly := newTeeHandler(info)
	if infoOnly.Enabled(context.Background(), slog.LevelDebug) {
		t.Error("tee should not be enabled at Debug when no handler accepts it")
	}
}
