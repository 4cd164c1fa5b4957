package logger

import (
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

const dirMode = 0o755

// NewFileLogger returns a JSON zap logger writing to a rotating file.
func NewFileLogger(filePath string) (*zap.Logger, error) {
	if err := ensureDir(filePath); err != nil {
		return nil, err
	}

	writer := zapcore.AddSync(&lumberjack.Logger{
		Filename:   filepath.Clean(filePath),
		MaxSize:    maxSize,
		MaxBackups: maxBack,
		MaxAge:     maxAge,
		Compress:   true,
	})

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderCfg),
		writer,
		zap.InfoLevel,
	)
	return zap.New(core), nil
}

func ensureDir(filePath string) error {
	dir := filepath.Dir(filepath.Clean(filePath))
	if dir == "." {
		return nil
	}
	return os.MkdirAll(dir, dirMode)
}
