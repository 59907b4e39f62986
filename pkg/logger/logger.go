package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds a zap logger for the given environment. Development uses a
// colored console encoder at debug level; everything else logs JSON at info.
func New(env string) (*zap.Logger, error) {
	if env == "development" || env == "test" {
		cfg := zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		return cfg.Build()
	}

	cfg := zap.NewProductionConfig()
	cfg.EncoderConfig.TimeKey = "timestamp"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	return cfg.Build()
}

// NewNamed builds a logger and tags every entry with the service name.
func NewNamed(env, name string) (*zap.Logger, error) {
	log, err := New(env)
	if err != nil {
		return nil, err
	}
	return log.Named(name).With(zap.String("service", name)), nil
}
