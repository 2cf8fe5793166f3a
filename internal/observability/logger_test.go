// internal/observability/logger_test.go
package observability

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"syscall"
	"testing"

	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/xkilldash9x/ghostcursor/internal/config"
)

// bufferSink collects output in memory for NewLogger.
func bufferSink() (*bytes.Buffer, zapcore.WriteSyncer) {
	var buf bytes.Buffer
	return &buf, zapcore.AddSync(&buf)
}

func TestNewLogger(t *testing.T) {
	t.Run("ConsoleWithColors", func(t *testing.T) {
		buf, sink := bufferSink()
		logger := NewLogger(config.LoggerConfig{
			Level:       "debug",
			Format:      "console",
			ServiceName: "TestService",
			Colors:      config.ColorConfig{Info: "blue"},
		}, sink)

		logger.Info("This is a test message.")
		logger.Warn("warned")

		output := buf.String()
		assert.Contains(t, output, "This is a test message.")
		assert.Contains(t, output, colorBlue+"INFO"+colorReset, "configured color wins")
		assert.Contains(t, output, colorYellow+"WARN"+colorReset, "unset levels use the default color")
		assert.Contains(t, output, "TestService.")
	})

	t.Run("JSON", func(t *testing.T) {
		buf, sink := bufferSink()
		logger := NewLogger(config.LoggerConfig{Level: "info", Format: "json", ServiceName: "JSONTest"}, sink)
		logger.Warn("This is a JSON message.", zap.String("key", "value"))

		var logEntry map[string]interface{}
		require.NoError(t, jsoniter.Unmarshal(buf.Bytes(), &logEntry), "Log output should be valid JSON")
		assert.Equal(t, "WARN", logEntry["level"])
		assert.Equal(t, "JSONTest", logEntry["logger"])
		assert.Equal(t, "This is a JSON message.", logEntry["msg"])
		assert.Equal(t, "value", logEntry["key"])
	})

	t.Run("LevelFiltering", func(t *testing.T) {
		buf, sink := bufferSink()
		logger := NewLogger(config.LoggerConfig{Level: "warn", Format: "json"}, sink)
		logger.Info("hidden")
		assert.Empty(t, buf.String())
	})

	t.Run("InvalidLevelDefaultsToInfo", func(t *testing.T) {
		buf, sink := bufferSink()
		logger := NewLogger(config.LoggerConfig{Level: "loud", Format: "json"}, sink)
		logger.Debug("hidden")
		logger.Info("shown")
		assert.NotContains(t, buf.String(), "hidden")
		assert.Contains(t, buf.String(), "shown")
	})

	t.Run("RotatingFile", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "ghostcursor.log")
		_, sink := bufferSink()
		logger := NewLogger(config.LoggerConfig{Level: "debug", Format: "console", LogFile: path, MaxSize: 1}, sink)
		logger.Error("This should go to the file.")
		require.NoError(t, logger.Sync())

		content, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(content), `"msg":"This should go to the file."`, "file output is always JSON")
	})
}

func TestInitialize(t *testing.T) {
	t.Run("OnlyOnce", func(t *testing.T) {
		ResetForTest()
		t.Cleanup(ResetForTest)
		buf, sink := bufferSink()

		Initialize(config.LoggerConfig{Level: "info", Format: "json", ServiceName: "First"}, sink)
		logger1 := GetLogger()
		Initialize(config.LoggerConfig{Level: "debug", Format: "json", ServiceName: "Second"}, sink)
		logger2 := GetLogger()

		assert.Same(t, logger1, logger2)
		logger2.Info("test")
		assert.Contains(t, buf.String(), "First")
		assert.NotContains(t, buf.String(), "Second")
	})

	t.Run("FallbackBeforeInitialization", func(t *testing.T) {
		ResetForTest()
		logger := GetLogger()
		require.NotNil(t, logger)
		assert.Nil(t, globalLogger.Load())
	})
}

func TestIsBenignSyncError(t *testing.T) {
	assert.True(t, isBenignSyncError(&os.PathError{Op: "sync", Path: "/dev/stderr", Err: syscall.EINVAL}))
	assert.True(t, isBenignSyncError(errors.New("sync /dev/stdout: inappropriate ioctl for device")))
	assert.False(t, isBenignSyncError(errors.New("disk full")))
}
