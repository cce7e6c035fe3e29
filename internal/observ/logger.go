package observ

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const serviceName = "bubblefeed"

// NewLogger builds a JSON production logger when env is "production" and a
// console development logger otherwise. An unparsable level falls back to info.
func NewLogger(env, level string) (*zap.Logger, error) {
	var config zap.Config

	if env == "production" {
		config = zap.NewProductionConfig()
	} else {
		config = zap.NewDevelopmentConfig()
	}

	zapLevel, err := zapcore.ParseLevel(level)
	if err != nil {
		zapLevel = zapcore.InfoLevel
	}
	config.Level = zap.NewAtomicLevelAt(zapLevel)
	config.InitialFields = map[string]any{"service": serviceName}

	return config.Build()
}
