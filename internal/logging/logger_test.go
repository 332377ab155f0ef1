package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLogging_NoopBeforeInit(t *testing.T) {
	// До Init логгер не должен паниковать
	Info("сообщение до инициализации %d", 1)
	Component("test").Warn("предупреждение %s", "x")
}

func TestLogging_FileOutput(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "voxel.log")

	cfg := FileConfig{Path: logFile, MaxSizeMB: 1, MaxBackups: 1, MaxAgeDays: 1}
	require.NoError(t, InitWithFileConfig("debug", cfg, false))
	defer SetLogger(nil)

	Info("чанк (%d,%d) построен", 3, -4)
	Component("chunk").Debug("квадов: %d", 42)
	Sync()

	data, err := os.ReadFile(logFile)
	require.NoError(t, err)

	content := string(data)
	assert.Contains(t, content, "чанк (3,-4) построен")
	assert.Contains(t, content, "квадов: 42")
	assert.Contains(t, content, "chunk")
}

func TestLogging_LevelFiltering(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "warn.log")

	require.NoError(t, InitWithFileConfig("warn", FileConfig{Path: logFile, MaxSizeMB: 1}, false))
	defer SetLogger(nil)

	Info("не должно попасть")
	Warn("должно попасть")
	Sync()

	data, err := os.ReadFile(logFile)
	require.NoError(t, err)
	assert.False(t, strings.Contains(string(data), "не должно попасть"))
	assert.Contains(t, string(data), "должно попасть")
}

func TestComponent_RebindAfterInit(t *testing.T) {
	lg := Component("rebind")

	core, logs := observer.New(zapcore.DebugLevel)
	SetLogger(zap.New(core))
	defer SetLogger(nil)

	lg.Info("после переинициализации %d", 7)

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "после переинициализации 7", entries[0].Message)
	assert.Equal(t, "rebind", entries[0].LoggerName)
}

func TestComponent_Cached(t *testing.T) {
	a := Component("same")
	b := Component("same")
	assert.Same(t, a, b)
	assert.Contains(t, GetLoggerManager().ListComponents(), "same")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, parseLevel("DEBUG"))
	assert.Equal(t, zapcore.WarnLevel, parseLevel("warning"))
	assert.Equal(t, zapcore.ErrorLevel, parseLevel("error"))
	assert.Equal(t, zapcore.InfoLevel, parseLevel("что-то"))

	assert.True(t, ValidLevel("Info"))
	assert.False(t, ValidLevel("verbose"))
}
