package config

import (
	"go.uber.org/zap"

	"github.com/linesmerrill/lost-found-api/logging"
)

// setLogger builds the zap logger for the given environment
func setLogger(env string) (*zap.Logger, error) {
	if env == "" {
		env = "local"
	}
	return logging.New(env)
}
