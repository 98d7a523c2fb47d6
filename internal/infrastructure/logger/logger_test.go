package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		"INFO":    zapcore.InfoLevel,
		"warning": zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
		"fatal":   zapcore.FatalLevel,
		"bogus":   zapcore.InfoLevel,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), in)
	}
}

func TestNew_WritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")

	log, err := New(&Config{Level: "info", Format: "json", Output: path})
	require.NoError(t, err)
	log.Info("candidate imported", zap.String("email", "ada@example.com"))
	require.NoError(t, log.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"candidate imported"`)
	assert.Contains(t, string(data), `"email":"ada@example.com"`)
}

func TestNew_UnwritableFile(t *testing.T) {
	_, err := New(&Config{Output: filepath.Join(t.TempDir(), "missing", "app.log")})
	assert.Error(t, err)
}

func TestNew_TeesExtraCores(t *testing.T) {
	core, recorded := observer.New(zapcore.InfoLevel)

	log, err := New(&Config{Level: "error", Format: "json", Output: "stderr"}, core)
	require.NoError(t, err)
	log.Info("job published")

	require.Equal(t, 1, recorded.Len())
	assert.Equal(t, "job published", recorded.All()[0].Message)
}

func TestNewForEnvironment(t *testing.T) {
	for _, env := range []string{"production", "development"} {
		log, err := NewForEnvironment(env)
		require.NoError(t, err)
		assert.NotNil(t, log)
	}
}
