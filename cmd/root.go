package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ecostats/dynocc-go/cmd/fit"
	"github.com/ecostats/dynocc-go/cmd/run"
	"github.com/ecostats/dynocc-go/cmd/simulate"
	"github.com/ecostats/dynocc-go/internal/conf"
	"github.com/ecostats/dynocc-go/internal/logging"
)

// RootCommand creates and returns the root command
func RootCommand(settings *conf.Settings) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "dynocc",
		Short: "Dynamic occupancy analysis CLI",
	}

	// Set up the global flags for the root command.
	setupFlags(rootCmd, settings)

	// Add sub-commands to the root command.
	subcommands := []*cobra.Command{
		run.Command(settings),
		simulate.Command(settings),
		fit.Command(settings),
	}

	rootCmd.AddCommand(subcommands...)

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		// Flag values are in the settings by now; raise the log level before
		// any subcommand runs.
		if settings.Debug {
			logging.SetLevel(slog.LevelDebug)
		}
		return nil
	}

	return rootCmd
}

// setupFlags defines flags that are global to the command line interface
func setupFlags(rootCmd *cobra.Command, settings *conf.Settings) error {
	rootCmd.PersistentFlags().BoolVarP(&settings.Debug, "debug", "d", viper.GetBool("debug"), "Enable debug output")
	rootCmd.PersistentFlags().IntVar(&settings.Survey.Sites, "sites", viper.GetInt("survey.sites"), "Number of survey sites")
	rootCmd.PersistentFlags().IntVar(&settings.Survey.Years, "years", viper.GetInt("survey.years"), "Number of survey years")
	rootCmd.PersistentFlags().IntVar(&settings.Survey.Occasions, "occasions", viper.GetInt("survey.occasions"), "Number of secondary sampling occasions per year")

	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		return fmt.Errorf("error binding flags: %v", err)
	}

	return nil
}
