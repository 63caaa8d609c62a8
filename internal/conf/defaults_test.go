package conf

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

// TestDefaultConfigIsValid ensures the shipped defaults describe a runnable
// analysis without any config file present.
func TestDefaultConfigIsValid(t *testing.T) {
	viper.Reset()
	defer viper.Reset()

	setDefaultConfig()

	settings := &Settings{}
	require.NoError(t, viper.Unmarshal(settings))
	require.NoError(t, ValidateSettings(settings))

	assert.Equal(t, 100, settings.Survey.Sites)
	assert.Equal(t, 10, settings.Survey.Years)
	assert.Equal(t, 3, settings.Survey.Occasions)
	assert.Equal(t, uint64(102022), settings.Simulation.Seed)
	assert.InDelta(t, 0.4, settings.Simulation.MeanPsi1, 1e-12)
	assert.Equal(t, 100, settings.GOF.Trials)
	assert.Equal(t, 50, settings.Bootstrap.Resamples)
	assert.Equal(t, "true", settings.Selection.LRT.Simple)
	assert.Equal(t, "global", settings.Selection.LRT.Rich)
}

// TestEmbeddedDefaultConfig checks that the embedded config.yaml stays in sync
// with the programmatic defaults for the values the pipeline depends on.
func TestEmbeddedDefaultConfig(t *testing.T) {
	t.Parallel()

	data := getDefaultConfig()
	require.NotEmpty(t, data)

	settings := &Settings{}
	require.NoError(t, yaml.Unmarshal([]byte(data), settings))
	require.NoError(t, ValidateSettings(settings))

	assert.Equal(t, 100, settings.Survey.Sites)
	assert.Equal(t, uint64(102022), settings.Simulation.Seed)
	assert.InDelta(t, 0.6, settings.Simulation.PhiRange.Min, 1e-12)
	assert.InDelta(t, 0.8, settings.Simulation.PhiRange.Max, 1e-12)
	assert.Equal(t, "true", settings.Selection.LRT.Simple)
	assert.Equal(t, 100, settings.GOF.Trials)
	assert.Equal(t, 50, settings.Bootstrap.Resamples)
}
