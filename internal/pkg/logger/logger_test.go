package logger_test

import (
	"context"
	"testing"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/offlinellm/client-go/internal/pkg/logger"
)

func TestNewRejectsUnknownLevel(t *testing.T) {
	_, err := logger.New("chatty")
	assert.Error(t, err)

	log, err := logger.New("debug")
	require.NoError(t, err)
	assert.NotNil(t, log)
}

func TestAddFieldsTravelsWithContext(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	ctx := ctxzap.ToContext(context.Background(), zap.New(core))

	ctx = logger.AddFields(ctx, zap.Int64("chat_id", 42))
	ctxzap.Info(ctx, "handled")

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, int64(42), entries[0].ContextMap()["chat_id"])
}

func TestWithActionTagsTheFlow(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	ctx := ctxzap.ToContext(context.Background(), zap.New(core))

	ctx = logger.WithAction(ctx, "upload")
	ctxzap.Info(ctx, "handled")

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "upload", entries[0].ContextMap()["action"])
}
