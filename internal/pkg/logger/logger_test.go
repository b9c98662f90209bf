package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestSetNilInstallsNop(t *testing.T) {
	Set(nil)
	require.NotNil(t, L())
	L().Info("dropped")
}

func TestSetReplacesGlobal(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	Set(zap.New(core))
	t.Cleanup(func() { Set(nil) })

	L().Info("phase completed", zap.String("phase", "buyer-persona"))

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "phase completed", entries[0].Message)
	assert.Equal(t, "buyer-persona", entries[0].ContextMap()["phase"])
}

func TestSetupDevLogsDebug(t *testing.T) {
	l, err := Setup(true)
	require.NoError(t, err)
	t.Cleanup(func() { Set(nil) })

	assert.True(t, l.Core().Enabled(zapcore.DebugLevel))
	assert.Same(t, l, L())

	prod, err := Setup(false)
	require.NoError(t, err)
	assert.False(t, prod.Core().Enabled(zapcore.DebugLevel))
}
