package logger

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Init builds the process logger for environment and installs it as the zap
// global, so the rest of the code logs through zap.L().
func Init(environment string) error {
	var conf zap.Config

	switch environment {
	case "test":
		zap.ReplaceGlobals(zap.NewNop())
		return nil
	case "development", "":
		conf = zap.NewDevelopmentConfig()
		conf.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	default:
		conf = zap.NewProductionConfig()
	}

	conf.EncoderConfig.TimeKey = "timestamp"
	conf.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	l, err := conf.Build()
	if err != nil {
		return fmt.Errorf("conf.Build -> %w", err)
	}

	zap.ReplaceGlobals(l)

	return nil
}
