package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestLoggingCapture(t *testing.T) {
	var buf bytes.Buffer
	SetTestCaptureLogger(&buf, zapcore.InfoLevel)

	GetLoggerWith(NameDetector, zap.String(FieldMode, "scanning")).Info("Test log message", zap.String("key", "value"))

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(buf.String())), &entry))
	assert.Equal(t, "Test log message", entry["msg"])
	assert.Equal(t, "detector", entry["logger"])
	assert.Equal(t, "scanning", entry["mode"])
	assert.Equal(t, "value", entry["key"])
}

func TestLoggingCapture_LevelFilter(t *testing.T) {
	var buf bytes.Buffer
	SetTestCaptureLogger(&buf, zapcore.WarnLevel)

	GetLogger().Info("quiet")
	assert.Empty(t, buf.String())
}

func TestInit_WritesFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Init(Options{Dir: dir, Level: "debug"}))
	t.Cleanup(SetTestLoggerNop)

	GetLogger().Info("hello file")
	Sync()

	data, err := os.ReadFile(filepath.Join(dir, "ble-watch.log"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "hello file")
}

func TestInit_BadLevel(t *testing.T) {
	assert.Error(t, Init(Options{Dir: t.TempDir(), Level: "loud"}))
}
