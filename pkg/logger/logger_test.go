package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/ajitpratap0/tables/pkg/errors"
)

func TestNewRejectsUnknownLevel(t *testing.T) {
	_, err := New(Config{Level: "loud"})
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeConfig))
}

func TestNewDefaults(t *testing.T) {
	l, err := New(Config{})
	require.NoError(t, err)
	assert.True(t, l.Core().Enabled(zapcore.InfoLevel))
	assert.False(t, l.Core().Enabled(zapcore.DebugLevel))
}

func TestGetIsNopBeforeInit(t *testing.T) {
	mu.Lock()
	saved := globalLogger
	globalLogger = nil
	mu.Unlock()
	defer func() {
		mu.Lock()
		globalLogger = saved
		mu.Unlock()
	}()

	assert.False(t, Get().Core().Enabled(zapcore.ErrorLevel))
}

func TestWithContextAddsFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)

	mu.Lock()
	saved := globalLogger
	globalLogger = zap.New(core)
	mu.Unlock()
	defer func() {
		mu.Lock()
		globalLogger = saved
		mu.Unlock()
	}()

	ctx := ContextWithOperation(ContextWithTable(context.Background(), "valueTable[1]"), "encode")
	WithContext(ctx).Info("encoded")

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "valueTable[1]", fields["table_id"])
	assert.Equal(t, "encode", fields["operation"])
}
