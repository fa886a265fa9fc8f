// Package logger builds the process-wide zap logger.
package logger

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

const ModeProduction = "production"

// New returns a sugared logger. Production mode logs JSON, anything else
// logs console output at debug level. When file is set, records are also
// written as JSON to a rotating file.
func New(mode, file string) (*zap.SugaredLogger, error) {
	var cfg zap.Config
	if mode == ModeProduction {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.OutputPaths = []string{"stdout"}

	if file == "" {
		l, err := cfg.Build(zap.AddCaller())
		if err != nil {
			return nil, err
		}
		return l.Sugar(), nil
	}

	rotating := &lumberjack.Logger{
		Filename:   file,
		MaxSize:    64,
		MaxBackups: 7,
		MaxAge:     30,
		Compress:   true,
	}

	stdoutEncoder := zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
	if mode == ModeProduction {
		stdoutEncoder = zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	}

	core := zapcore.NewTee(
		zapcore.NewCore(zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()), zapcore.AddSync(rotating), cfg.Level),
		zapcore.NewCore(stdoutEncoder, zapcore.AddSync(os.Stdout), cfg.Level),
	)
	return zap.New(core, zap.AddCaller()).Sugar(), nil
}
