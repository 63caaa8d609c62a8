package run

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ecostats/dynocc-go/internal/analysis"
	"github.com/ecostats/dynocc-go/internal/conf"
	"github.com/ecostats/dynocc-go/internal/report"
)

// Command creates the run command for the full analysis pipeline.
func Command(settings *conf.Settings) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the full occupancy analysis pipeline",
		Long: "Simulate a detection dataset (or load one with --input), fit the candidate " +
			"model battery, rank by AIC, run the likelihood ratio test, goodness-of-fit " +
			"and trajectory bootstrap, and write the reports.",
		RunE: func(cmd *cobra.Command, args []string) error {
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

// setupFlags configures flags specific to the run command.
func setupFlags(cmd *cobra.Command, settings *conf.Settings) error {
	cmd.Flags().StringVarP(&settings.Input.Path, "input", "i", "", "Path to a dataset directory; when empty a dataset is simulated")
	cmd.Flags().StringVarP(&settings.Output.File.Path, "output", "o", viper.GetString("output.file.path"), "Path to output directory")
	cmd.Flags().StringVarP(&settings.Output.File.Type, "format", "f", viper.GetString("output.file.type"), "Output format: table, csv")
	cmd.Flags().Uint64Var(&settings.Simulation.Seed, "seed", viper.GetUint64("simulation.seed"), "Seed for dataset simulation")
	cmd.Flags().IntVar(&settings.GOF.Trials, "gof-trials", viper.GetInt("gof.trials"), "Number of parametric bootstrap goodness-of-fit trials")
	cmd.Flags().IntVar(&settings.Bootstrap.Resamples, "resamples", viper.GetInt("bootstrap.resamples"), "Number of nonparametric bootstrap resamples for trajectory standard errors")

	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return fmt.Errorf("error binding flags: %v", err)
	}

	return nil
}
