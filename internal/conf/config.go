// config.go: This file contains the configuration for the dynocc application. It defines the settings struct and functions to load and save the settings.
package conf

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"sync"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

//go:embed config.yaml
var configFiles embed.FS

// Range is a closed interval for a probability drawn per year.
type Range struct {
	Min float64 // lower bound
	Max float64 // upper bound
}

// SurveyConfig describes the study design: how many sites are surveyed, over
// how many primary seasons, with how many secondary occasions per season.
type SurveyConfig struct {
	Sites     int // number of surveyed sites
	Years     int // number of primary seasons
	Occasions int // secondary survey occasions within each season
}

// SimulationConfig controls synthetic dataset generation.
type SimulationConfig struct {
	Seed       uint64  // RNG seed for reproducible datasets
	MeanPsi1   float64 // average first-season occupancy probability
	PhiRange   Range   // yearly persistence probability range
	GammaRange Range   // yearly colonization probability range
	PRange     Range   // yearly detection probability range
	BetaPsi    float64 // elevation effect on initial occupancy, logit scale
	BetaGamma  float64 // precipitation effect on colonization, logit scale
	BetaPhi    float64 // forest effect on persistence, logit scale
	BetaP      float64 // effort effect on detection, logit scale
}

// FittingConfig controls the maximum-likelihood optimizer.
type FittingConfig struct {
	MaxIterations int     // optimizer iteration budget per model
	Tolerance     float64 // gradient norm threshold for convergence
}

// SelectionConfig controls model ranking and the likelihood ratio test pair.
type SelectionConfig struct {
	LRT struct {
		Simple string // name of the reduced model
		Rich   string // name of the richer model it is nested in
	}
}

// GOFConfig controls the parametric bootstrap goodness-of-fit assessment.
type GOFConfig struct {
	Enabled bool   // true to run the goodness-of-fit assessment
	Model   string // model to assess, empty selects the AIC-best model
	Trials  int    // number of parametric bootstrap replications
	Seed    uint64 // RNG seed for the bootstrap simulation streams
	Workers int    // concurrent refits, 0 selects automatically
}

// BootstrapConfig controls the nonparametric bootstrap for trajectory standard errors.
type BootstrapConfig struct {
	Resamples int    // number of site resamples drawn with replacement
	Seed      uint64 // RNG seed for resampling
	Workers   int    // concurrent refits, 0 selects automatically
}

// InputConfig holds runtime values for analyzing an existing dataset directory.
type InputConfig struct {
	Path string `yaml:"-"` // path to dataset directory
}

// OutputConfig defines where and how result artifacts are written.
type OutputConfig struct {
	File struct {
		Enabled bool   // true to write result tables to files
		Path    string // directory to output results
		Type    string // table or csv
	}

	Chart struct {
		Enabled bool   // true to render the occupancy trajectory chart
		Format  string // png, html or both
		Width   int    // chart width in pixels
		Height  int    // chart height in pixels
	}

	Dataset struct {
		Enabled bool // true to export the analyzed dataset as CSV files
	}

	Summary struct {
		Enabled bool // true to write a machine-readable run summary JSON
	}
}

// LogConfig defines the configuration for a log file
type LogConfig struct {
	Enabled     bool         // true to enable this log
	Path        string       // Path to the log file
	Rotation    RotationType // Type of log rotation
	MaxSize     int64        // Max size in bytes for RotationSize
	RotationDay string       // Day of the week for RotationWeekly (as a string: "Sunday", "Monday", etc.)
}

// RotationType defines different types of log rotations.
type RotationType string

const (
	RotationDaily  RotationType = "daily"
	RotationWeekly RotationType = "weekly"
	RotationSize   RotationType = "size"
)

// Settings contains all configuration options for the dynocc application.
type Settings struct {
	Debug bool // true to enable debug mode

	// Runtime values, not stored in config file
	Version   string `yaml:"-"` // Version from build
	BuildDate string `yaml:"-"` // Build date from build

	Main struct {
		Name string    // name of this analysis node, used to tag run summaries
		Log  LogConfig // logging configuration
	}

	Survey     SurveyConfig     // survey design dimensions
	Simulation SimulationConfig // synthetic dataset generation
	Fitting    FittingConfig    // maximum-likelihood optimizer settings
	Selection  SelectionConfig  // model ranking and likelihood ratio test
	GOF        GOFConfig        // parametric bootstrap goodness-of-fit
	Bootstrap  BootstrapConfig  // nonparametric bootstrap for trajectory SEs

	Input InputConfig `yaml:"-"` // Input configuration for dataset directory analysis

	Output OutputConfig // output artifacts
}

// settingsInstance is the current settings instance
var (
	settingsInstance *Settings
	once             sync.Once
	settingsMutex    sync.RWMutex
)

// Load reads the configuration file and environment variables into GlobalConfig.
func Load() (*Settings, error) {
	settingsMutex.Lock()
	defer settingsMutex.Unlock()

	// Create a new settings struct
	settings := &Settings{}

	// Initialize viper and read config
	if err := initViper(); err != nil {
		return nil, fmt.Errorf("error initializing viper: %w", err)
	}

	// Unmarshal the config into settings
	if err := viper.Unmarshal(settings); err != nil {
		return nil, fmt.Errorf("error unmarshaling config into struct: %w", err)
	}

	// Validate settings
	if err := ValidateSettings(settings); err != nil {
		return nil, fmt.Errorf("error validating settings: %w", err)
	}

	// Save settings instance
	settingsInstance = settings
	return settingsInstance, nil
}

// initViper initializes viper with default values and reads the configuration file.
func initViper() error {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	// Get OS specific config paths
	configPaths, err := GetDefaultConfigPaths()
	if err != nil {
		return fmt.Errorf("error getting default config paths: %w", err)
	}

	// Assign config paths to Viper
	for _, path := range configPaths {
		viper.AddConfigPath(path)
	}

	// Set default values for each configuration parameter
	// function defined in defaults.go
	setDefaultConfig()

	// Read configuration file
	err = viper.ReadInConfig()
	if err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if errors.As(err, &configFileNotFoundError) {
			// Config file not found, create config with defaults
			return createDefaultConfig()
		}
		return fmt.Errorf("fatal error reading config file: %w", err)
	}

	return nil
}

// createDefaultConfig creates a default config file and writes it to the default config path
func createDefaultConfig() error {
	configPaths, err := GetDefaultConfigPaths()
	if err != nil {
		return fmt.Errorf("error getting default config paths: %w", err)
	}
	configPath := filepath.Join(configPaths[0], "config.yaml")
	defaultConfig := getDefaultConfig()

	// Create directories for config file
	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return fmt.Errorf("error creating directories for config file: %w", err)
	}

	// Write default config file
	if err := os.WriteFile(configPath, []byte(defaultConfig), 0o644); err != nil {
		return fmt.Errorf("error writing default config file: %w", err)
	}

	fmt.Println("Created default config file at:", configPath)
	return viper.ReadInConfig()
}

// getDefaultConfig reads the default configuration from the embedded config.yaml file.
func getDefaultConfig() string {
	data, err := fs.ReadFile(configFiles, "config.yaml")
	if err != nil {
		log.Fatalf("Error reading config file: %v", err)
	}
	return string(data)
}

// GetSettings returns the current settings instance
func GetSettings() *Settings {
	settingsMutex.RLock()
	defer settingsMutex.RUnlock()
	return settingsInstance
}

// SaveSettings saves the current settings to the configuration file.
// It uses SaveYAMLConfig to handle the atomic write process.
func SaveSettings() error {
	settingsMutex.RLock()
	defer settingsMutex.RUnlock()

	// Create a copy of the settings
	settingsCopy := *settingsInstance

	// Find the path of the current config file
	configPath, err := FindConfigFile()
	if err != nil {
		return fmt.Errorf("error finding config file: %w", err)
	}

	// Save the settings to the config file
	if err := SaveYAMLConfig(configPath, &settingsCopy); err != nil {
		return fmt.Errorf("error saving config: %w", err)
	}

	log.Printf("Settings saved successfully to %s", configPath)
	return nil
}

// Setting returns the current settings instance, initializing it if necessary
func Setting() *Settings {
	once.Do(func() {
		if settingsInstance == nil {
			_, err := Load()
			if err != nil {
				log.Fatalf("Error loading settings: %v", err)
			}
		}
	})
	return GetSettings()
}

// SaveYAMLConfig updates the YAML configuration file with new settings.
// It overwrites the existing file, not preserving comments or structure.
func SaveYAMLConfig(configPath string, settings *Settings) error {
	// Marshal the settings struct to YAML
	yamlData, err := yaml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("error marshaling settings to YAML: %w", err)
	}

	// Write the YAML data to a temporary file
	// This is done to ensure atomic write operation
	tempFile, err := os.CreateTemp(filepath.Dir(configPath), "config-*.yaml")
	if err != nil {
		return fmt.Errorf("error creating temporary file: %w", err)
	}
	tempFileName := tempFile.Name()
	// Ensure the temporary file is removed in case of any failure
	defer os.Remove(tempFileName)

	// Write the YAML data to the temporary file
	if _, err := tempFile.Write(yamlData); err != nil {
		tempFile.Close()
		return fmt.Errorf("error writing to temporary file: %w", err)
	}
	// Close the temporary file after writing
	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("error closing temporary file: %w", err)
	}

	// Try to rename the temporary file to replace the original config file
	// This is typically an atomic operation on most filesystems
	if err := os.Rename(tempFileName, configPath); err != nil {
		// If rename fails (e.g., cross-device link), fall back to copy & delete
		if err := moveFile(tempFileName, configPath); err != nil {
			return fmt.Errorf("error copying config file: %w", err)
		}
	}

	return nil
}
