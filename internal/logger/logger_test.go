package logger

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, parseLogLevel("debug"))
	assert.Equal(t, zapcore.WarnLevel, parseLogLevel("warning"))
	assert.Equal(t, zapcore.ErrorLevel, parseLogLevel("error"))
	assert.Equal(t, zapcore.InfoLevel, parseLogLevel("loud"))
}

func TestWriter(t *testing.T) {
	assert.Equal(t, os.Stdout, Writer(&Config{}))
	assert.Equal(t, os.Stderr, Writer(&Config{Output: "stderr"}))

	w := Writer(&Config{Output: "/var/log/torscrape.log", MaxSizeMB: 10, MaxBackups: 2, MaxAgeDays: 7})
	lj, ok := w.(*lumberjack.Logger)
	require.True(t, ok)
	assert.Equal(t, "/var/log/torscrape.log", lj.Filename)
	assert.Equal(t, 10, lj.MaxSize)
	assert.Equal(t, 2, lj.MaxBackups)
	assert.Equal(t, 7, lj.MaxAge)
}

func TestNewWithConfig_JSONFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.log")
	log := NewWithConfig(&Config{Level: "warn", Format: "json", Output: path, MaxSizeMB: 1})

	log.Info("dropped")
	log.Named("search").Warn("kept", zap.String("site", "1337x"))
	_ = log.Sync()

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "WARN", entry["level"])
	assert.Equal(t, "search", entry["logger"])
	assert.Equal(t, "kept", entry["msg"])
	assert.Equal(t, "1337x", entry["site"])
}
