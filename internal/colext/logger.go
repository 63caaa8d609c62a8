package colext

import (
	"log/slog"

	"github.com/ecostats/dynocc-go/internal/logging"
)

const serviceName = "colext"

// Package-level logger for model fitting and bootstrap operations.
var logger *slog.Logger

func init() {
	logger = logging.ForService(serviceName)

	// Fallback for early startup scenarios, e.g. tests that never call
	// logging.Init.
	if logger == nil {
		logger = slog.Default().With("service", serviceName)
	}
}

// GetLogger returns the colext package logger.
func GetLogger() *slog.Logger {
	if logger == nil {
		logger = logging.ForService(serviceName)
		if logger == nil {
			logger = slog.Default().With("service", serviceName)
		}
	}
	return logger
}
