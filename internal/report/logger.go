package report

import (
	"log/slog"

	"github.com/ecostats/dynocc-go/internal/logging"
)

const serviceName = "report"

// Package-level logger for result rendering and artifact writing.
var logger *slog.Logger

func init() {
	logger = logging.ForService(serviceName)

	// Fallback for early startup scenarios, e.g. tests that never call
	// logging.Init.
	if logger == nil {
		logger = slog.Default().With("service", serviceName)
	}
}
