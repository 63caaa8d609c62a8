package fit

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ecostats/dynocc-go/internal/analysis"
	"github.com/ecostats/dynocc-go/internal/conf"
	"github.com/ecostats/dynocc-go/internal/report"
)

// Command creates the fit command for analyzing an existing dataset directory.
func Command(settings *conf.Settings) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fit [dataset-dir]",
		Short: "Fit the candidate models to an exported dataset",
		Long: "Load a dataset directory previously written by simulate or run, fit the " +
			"candidate model battery and write the reports. The True series appears " +
			"only when the dataset carries latent states.",
		Args: cobra.ExactArgs(1), // the command expects exactly one argument
		RunE: func(cmd *cobra.Command, args []string) error {
			settings.Input.Path = args[0]
			result, err := analysis.Run(cmd.Context(), settings)
			if err != nil {
				return err
			}
			return report.WriteAll(settings, result)
		},
	}

	if err := setupFlags(cmd, settings); err != nil {
		fmt.Printf("error setting up flags: %v\n", err)
		os.Exit(1)
	}

	return cmd
}

// setupFlags configures flags specific to the fit command.
func setupFlags(cmd *cobra.Command, settings *conf.Settings) error {
	cmd.Flags().StringVarP(&settings.Output.File.Path, "output", "o", viper.GetString("output.file.path"), "Path to output directory")
	cmd.Flags().StringVarP(&settings.Output.File.Type, "format", "f", viper.GetString("output.file.type"), "Output format: table, csv")
	cmd.Flags().StringVar(&settings.GOF.Model, "model", viper.GetString("gof.model"), "Model fed to goodness-of-fit and the bootstrap, empty for the AIC best")

	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return fmt.Errorf("error binding flags: %v", err)
	}

	return nil
}
