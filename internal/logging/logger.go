package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	NameApp       = "app"
	NameDetector  = "detector"
	NameLifecycle = "lifecycle"
	NamePortal    = "portal"
	NameStorage   = "storage"
	NameScanner   = "scanner"
	NameFeedback  = "feedback"

	FieldIdentifier = "identifier"
	FieldLabel      = "label"
	FieldMode       = "mode"
	FieldKind       = "kind"
)

// Options controls where logs go. The console core is only useful when
// no TUI owns the terminal.
type Options struct {
	Dir     string
	Level   string
	Console bool
}

var (
	mu     sync.Mutex
	logger *zap.Logger
)

// Init builds the process logger. It can be called again after a restart.
func Init(opts Options) error {
	level := zap.InfoLevel
	if opts.Level != "" {
		l, err := zapcore.ParseLevel(opts.Level)
		if err != nil {
			return err
		}
		level = l
	}

	dir := opts.Dir
	if dir == "" {
		dir = "logs"
	}
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return err
	}

	logFile := &lumberjack.Logger{
		Filename:   filepath.Join(dir, "ble-watch.log"),
		MaxSize:    10, // megabytes
		MaxBackups: 5,
		MaxAge:     28,   // days
		Compress:   true, // gzip
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	core := zapcore.NewCore(zapcore.NewJSONEncoder(encoderCfg), zapcore.AddSync(logFile), level)
	if opts.Console {
		consoleEncoder := zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
		consoleCore := zapcore.NewCore(consoleEncoder, zapcore.Lock(os.Stdout), level)
		core = zapcore.NewTee(core, consoleCore)
	}

	mu.Lock()
	defer mu.Unlock()
	logger = zap.New(core, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel))
	return nil
}

func getLogger() *zap.Logger {
	mu.Lock()
	defer mu.Unlock()
	if logger == nil {
		logger = zap.NewNop()
	}
	return logger
}

func GetLogger() *zap.Logger {
	return getLogger().Named("default")
}

func GetLoggerWith(name string, fields ...zap.Field) *zap.Logger {
	return getLogger().Named(name).With(fields...)
}

// Sync flushes buffered entries.
func Sync() {
	_ = getLogger().Sync()
}

func SetTestCaptureLogger(buf *bytes.Buffer, level zapcore.Level) {
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	core := zapcore.NewCore(zapcore.NewJSONEncoder(encoderCfg), zapcore.AddSync(buf), level)

	mu.Lock()
	defer mu.Unlock()
	logger = zap.New(core)
}

func SetTestLoggerNop() {
	mu.Lock()
	defer mu.Unlock()
	logger = zap.NewNop()
}
