package logger

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger wraps zap's SugaredLogger.
type Logger struct {
	*zap.SugaredLogger
}

// Unknown level strings fall back to debug so a config typo never silences
// the log.
const fallbackLevel = zapcore.DebugLevel

func parseLevel(levelStr string) zapcore.Level {
	switch levelStr {
	case InfoLevel:
		return zapcore.InfoLevel
	case WarnLevel:
		return zapcore.WarnLevel
	case ErrorLevel:
		return zapcore.ErrorLevel
	default:
		return fallbackLevel
	}
}

// encoderConfig tunes the console encoder for an operator tailing stdout on
// the rig: capital levels, the subsystem name from Named children (phmeter,
// recorder, session), and no timestamp since the service manager stamps
// every line already.
func encoderConfig() zapcore.EncoderConfig {
	cfg := zap.NewProductionEncoderConfig()
	cfg.TimeKey = ""
	cfg.EncodeLevel = zapcore.CapitalLevelEncoder
	cfg.EncodeName = zapcore.FullNameEncoder
	return cfg
}

// newZapLogger constructs a sugared zap logger writing to stdout at the
// given level.
func newZapLogger(levelStr string) *Logger {
	enc := zapcore.NewConsoleEncoder(encoderConfig())
	out := zapcore.Lock(os.Stdout)
	core := zapcore.NewCore(enc, out, zap.NewAtomicLevelAt(parseLevel(levelStr)))
	return &Logger{SugaredLogger: zap.New(core).Sugar()}
}
