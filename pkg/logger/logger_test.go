package logger_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/shashiranjanraj/storefront/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/tidwall/gjson"
)

func TestSetupProductionWritesJSON(t *testing.T) {
	prev := logger.L
	t.Cleanup(func() { logger.L = prev; slog.SetDefault(prev) })

	var buf bytes.Buffer
	logger.Setup("production", &buf)
	logger.Debug("hidden")
	logger.Info("order placed", "order_id", "o1")

	line := buf.String()
	assert.NotContains(t, line, "hidden")
	assert.Equal(t, "order placed", gjson.Get(line, "msg").String())
	assert.Equal(t, "o1", gjson.Get(line, "order_id").String())
}

func TestWithCtxFallsBackToBase(t *testing.T) {
	assert.Same(t, logger.L, logger.WithCtx(context.Background()))

	var buf bytes.Buffer
	scoped := slog.New(slog.NewTextHandler(&buf, nil)).With("request_id", "abc")
	ctx := logger.InjectLogger(context.Background(), scoped)

	logger.Component(ctx, "auditlog").Warn("append failed")
	assert.Contains(t, buf.String(), "request_id=abc")
	assert.Contains(t, buf.String(), "component=auditlog")
}

func TestMultiHandlerFansOut(t *testing.T) {
	var a, b bytes.Buffer
	h := logger.NewMultiHandler(
		slog.NewTextHandler(&a, nil),
		slog.NewTextHandler(&b, &slog.HandlerOptions{Level: slog.LevelError}),
	)
	log := slog.New(h)

	log.Info("first")
	log.Error("second")

	assert.Contains(t, a.String(), "first")
	assert.Contains(t, a.String(), "second")
	assert.NotContains(t, b.String(), "first")
	assert.Contains(t, b.String(), "second")
}
