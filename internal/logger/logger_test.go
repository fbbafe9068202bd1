package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestInit(t *testing.T) {
	t.Cleanup(func() { zap.ReplaceGlobals(zap.NewNop()) })

	for _, env := range []string{"development", "production", ""} {
		t.Run(env, func(t *testing.T) {
			require.NoError(t, Init(env))
			assert.NotNil(t, zap.L())
		})
	}

	require.NoError(t, Init("test"))
	assert.False(t, zap.L().Core().Enabled(zap.ErrorLevel))

	require.NoError(t, Init("production"))
	assert.False(t, zap.L().Core().Enabled(zap.DebugLevel))
	assert.True(t, zap.L().Core().Enabled(zap.InfoLevel))
}
