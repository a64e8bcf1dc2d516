package logger

import (
	"errors"
	"path/filepath"
	"testing"

	"contract-query-workers/internal/common/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestZapWrapper_Fields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := NewZapAdapter(zap.New(core)).
		With(map[string]interface{}{"component": "query-pipeline"}).
		WithError(errors.New("boom"))

	log.Info("query classified", map[string]interface{}{"queryType": "CONTRACTS"})
	log.Debug("dropped?", nil)

	require.Equal(t, 2, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "query classified", entry.Message)

	ctx := entry.ContextMap()
	assert.Equal(t, "query-pipeline", ctx["component"])
	assert.Equal(t, "CONTRACTS", ctx["queryType"])
	assert.Equal(t, "boom", ctx["error"])
}

func TestParseLevel(t *testing.T) {
	tests := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		"warn":    zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
		"info":    zapcore.InfoLevel,
		"verbose": zapcore.InfoLevel,
	}
	for in, want := range tests {
		assert.Equal(t, want, parseLevel(in), in)
	}
}

func TestNewFromConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	log, z := NewFromConfig(config.LoggingConfig{Level: "warn", Format: "json", Output: path})
	require.NotNil(t, log)
	require.NotNil(t, z)

	assert.False(t, z.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, z.Core().Enabled(zapcore.WarnLevel))
	log.Warn("written", nil)
	_ = z.Sync()
	assert.FileExists(t, path)
}

func TestNewFromConfig_BadOutputFallsBack(t *testing.T) {
	_, z := NewFromConfig(config.LoggingConfig{Output: filepath.Join(t.TempDir(), "missing", "dir", "x.log")})
	require.NotNil(t, z)
}
