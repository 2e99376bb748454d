package logger

import (
	"go.uber.org/zap"
)

// New builds the application logger. Debug mode uses the console encoder,
// everything else logs JSON at info level.
func New(debug bool) (*zap.SugaredLogger, error) {
	var cfg zap.Config
	if debug {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
		cfg.Encoding = "json"
	}
	cfg.EncoderConfig.TimeKey = "time"
	cfg.EncoderConfig.LevelKey = "level"
	cfg.EncoderConfig.MessageKey = "msg"
	cfg.EncoderConfig.CallerKey = "caller"

	l, err := cfg.Build(zap.AddCaller())
	if err != nil {
		return nil, err
	}
	return l.Sugar(), nil
}

// NewNop returns a no-op logger for tests.
func NewNop() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}
