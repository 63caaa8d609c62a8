package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/ecostats/dynocc-go/cmd"
	"github.com/ecostats/dynocc-go/internal/buildinfo"
	"github.com/ecostats/dynocc-go/internal/conf"
	"github.com/ecostats/dynocc-go/internal/logging"
)

// version and buildDate are set by the linker at build time:
//
//	go build -ldflags "-X main.version=... -X main.buildDate=..."
var (
	version   = ""
	buildDate = ""
)

func main() {
	logging.Init()

	settings, err := conf.Load()
	if err != nil {
		logging.Fatal("Error while loading configuration", "error", err)
	}

	// Stamp build metadata into the runtime settings so reports can echo it.
	info := buildinfo.NewContext(version, buildDate)
	settings.Version = info.Version()
	settings.BuildDate = info.BuildDate()

	if settings.Debug {
		logging.SetLevel(slog.LevelDebug)
	}

	if settings.Main.Log.Enabled {
		fileLogger, closeLog, err := logging.NewFileLogger(settings.Main.Log.Path, "dynocc", slog.LevelInfo)
		if err != nil {
			logging.Fatal("Error while opening log file", "path", settings.Main.Log.Path, "error", err)
		}
		defer closeLog() //nolint:errcheck // nothing to do about a failed close at exit
		slog.SetDefault(fileLogger)
	}

	// Cancel the pipeline cleanly on interrupt; bootstrap workers honor the
	// context.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd := cmd.RootCommand(settings)
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
