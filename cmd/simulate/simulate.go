package simulate

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ecostats/dynocc-go/internal/conf"
	"github.com/ecostats/dynocc-go/internal/datasetio"
	"github.com/ecostats/dynocc-go/internal/simulation"
)

// outputDir holds the dataset directory flag value
var outputDir string

// Command creates the simulate command for generating a dataset without
// analyzing it.
func Command(settings *conf.Settings) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Simulate a detection dataset and export it",
		Long: "Generate a synthetic multi-season detection dataset from the configured " +
			"survey design and export it as a directory of CSV files, including the " +
			"latent occupancy states.",
		RunE: func(cmd *cobra.Command, args []string) error {
			generated, err := simulation.Generate(simulation.FromSettings(settings))
			if err != nil {
				return err
			}
			ds, err := generated.Dataset()
			if err != nil {
				return err
			}
			if err := datasetio.Export(outputDir, ds, generated.TrueStates); err != nil {
				return err
			}
			fmt.Printf("🦉 Simulated %d sites × %d years × %d occasions (seed %d)\n",
				ds.Design.Sites, ds.Design.Years, ds.Design.Occasions, settings.Simulation.Seed)
			fmt.Println("Dataset written to", outputDir)
			return nil
		},
	}

	if err := setupFlags(cmd, settings); err != nil {
		fmt.Printf("error setting up flags: %v\n", err)
		os.Exit(1)
	}

	return cmd
}

// setupFlags configures flags specific to the simulate command.
func setupFlags(cmd *cobra.Command, settings *conf.Settings) error {
	cmd.Flags().StringVarP(&outputDir, "output", "o", "dataset", "Path to the dataset directory to create")
	cmd.Flags().Uint64Var(&settings.Simulation.Seed, "seed", viper.GetUint64("simulation.seed"), "Seed for dataset simulation")

	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return fmt.Errorf("error binding flags: %v", err)
	}

	return nil
}
