package logging

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// TestParseLevel verifies level names and the info default
func TestParseLevel(t *testing.T) {
	tests := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		"DEBUG":   zapcore.DebugLevel,
		"info":    zapcore.InfoLevel,
		"warn":    zapcore.WarnLevel,
		"warning": zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
		"":        zapcore.InfoLevel,
		"verbose": zapcore.InfoLevel,
	}

	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), "level %q", in)
	}
}

// TestWrap_WithFields verifies child loggers carry their fields
func TestWrap_WithFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := Wrap(zap.New(core)).With(String("run_id", "abc"))

	log.Info("crawled page", Int("page", 3))
	log.Error("write failed", Error(errors.New("disk full")))

	entries := logs.All()
	require.Len(t, entries, 2)

	first := entries[0].ContextMap()
	assert.Equal(t, "crawled page", entries[0].Message)
	assert.Equal(t, "abc", first["run_id"])
	assert.Equal(t, int64(3), first["page"])

	second := entries[1].ContextMap()
	assert.Equal(t, zapcore.ErrorLevel, entries[1].Level)
	assert.Equal(t, "disk full", second["error"])
}

// TestNew_Defaults verifies a logger can be built from an empty config
func TestNew_Defaults(t *testing.T) {
	log, err := New(Config{OutputPaths: []string{"stderr"}})
	require.NoError(t, err)
	require.NotNil(t, log)

	NewNop().Info("discarded")
}
