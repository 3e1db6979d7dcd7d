package logger_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/commandes/pkg/logger"
)

func TestNewWithWriter_ProductionIsJSON(t *testing.T) {
	var buf bytes.Buffer
	logger.NewWithWriter("production", &buf).Info("order created", "order_id", 7)

	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "order created", line["msg"])
	assert.Equal(t, float64(7), line["order_id"])
}

func TestNewWithWriter_LocalIsTextWithDebug(t *testing.T) {
	var buf bytes.Buffer
	logger.NewWithWriter("local", &buf).Debug("hello", "k", "v")
	assert.Contains(t, buf.String(), "msg=hello")
	assert.Contains(t, buf.String(), "k=v")
}

func TestWithCtx(t *testing.T) {
	assert.Same(t, slog.Default(), logger.WithCtx(context.Background()))

	log := logger.Discard()
	ctx := logger.InjectLogger(context.Background(), log)
	assert.Same(t, log, logger.WithCtx(ctx))
}

func TestMultiHandler_FansOut(t *testing.T) {
	var a, b bytes.Buffer
	h := logger.NewMultiHandler(
		slog.NewTextHandler(&a, &slog.HandlerOptions{Level: slog.LevelInfo}),
		slog.NewTextHandler(&b, &slog.HandlerOptions{Level: slog.LevelWarn}),
	)
	log := slog.New(h).With("request_id", "r1")

	log.Info("info line")
	log.Warn("warn line")

	assert.Contains(t, a.String(), "info line")
	assert.Contains(t, a.String(), "warn line")
	assert.NotContains(t, b.String(), "info line")
	assert.Contains(t, b.String(), "warn line")
	assert.Contains(t, b.String(), "request_id=r1")
}
