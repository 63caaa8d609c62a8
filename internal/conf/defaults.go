// conf/defaults.go default values for settings
package conf

import (
	"github.com/spf13/viper"
)

// Sets default values for the configuration.
func setDefaultConfig() {
	viper.SetDefault("debug", false)

	viper.SetDefault("main.name", "DynOcc-Go")
	viper.SetDefault("main.log.enabled", true)
	viper.SetDefault("main.log.path", "dynocc.log")
	viper.SetDefault("main.log.rotation", RotationDaily)
	viper.SetDefault("main.log.maxsize", 1048576)
	viper.SetDefault("main.log.rotationday", "Sunday")

	viper.SetDefault("survey.sites", 100)
	viper.SetDefault("survey.years", 10)
	viper.SetDefault("survey.occasions", 3)

	viper.SetDefault("simulation.seed", 102022)
	viper.SetDefault("simulation.meanpsi1", 0.4)
	viper.SetDefault("simulation.phirange.min", 0.6)
	viper.SetDefault("simulation.phirange.max", 0.8)
	viper.SetDefault("simulation.gammarange.min", 0.1)
	viper.SetDefault("simulation.gammarange.max", 0.2)
	viper.SetDefault("simulation.prange.min", 0.2)
	viper.SetDefault("simulation.prange.max", 0.4)
	viper.SetDefault("simulation.betapsi", 1.0)
	viper.SetDefault("simulation.betagamma", 1.0)
	viper.SetDefault("simulation.betaphi", 1.0)
	viper.SetDefault("simulation.betap", 0.0)

	viper.SetDefault("fitting.maxiterations", 500)
	viper.SetDefault("fitting.tolerance", 1e-6)

	viper.SetDefault("selection.lrt.simple", "true")
	viper.SetDefault("selection.lrt.rich", "global")

	viper.SetDefault("gof.enabled", true)
	viper.SetDefault("gof.model", "")
	viper.SetDefault("gof.trials", 100)
	viper.SetDefault("gof.seed", 13973)
	viper.SetDefault("gof.workers", 0)

	viper.SetDefault("bootstrap.resamples", 50)
	viper.SetDefault("bootstrap.seed", 4587)
	viper.SetDefault("bootstrap.workers", 0)

	viper.SetDefault("output.file.enabled", true)
	viper.SetDefault("output.file.path", "output/")
	viper.SetDefault("output.file.type", "table")

	viper.SetDefault("output.chart.enabled", true)
	viper.SetDefault("output.chart.format", "png")
	viper.SetDefault("output.chart.width", 800)
	viper.SetDefault("output.chart.height", 500)

	viper.SetDefault("output.dataset.enabled", false)
	viper.SetDefault("output.summary.enabled", true)
}
