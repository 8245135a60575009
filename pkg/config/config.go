// Package config provides configuration loading and management for mrisnr.
// It handles loading configuration from YAML files and provides default values.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"mrisnr/pkg/mask"
	"mrisnr/pkg/phantom"
	"mrisnr/pkg/snr"
)

// Config represents the application configuration loaded from YAML
type Config struct {
	// Estimator parameters
	Estimator struct {
		// Erode applies a 3D opening to the masks before measuring
		Erode bool `yaml:"erode"`

		// ForegroundLabel is a tissue name (csf, gm, wm, bg) or an integer code
		ForegroundLabel string `yaml:"foregroundLabel"`

		// UseBackground measures noise in a separate background region
		// instead of the foreground itself
		UseBackground bool `yaml:"useBackground"`
	} `yaml:"estimator"`

	// Phantom parameters
	Phantom struct {
		// Size is the edge length of the phantom volume in voxels
		Size int `yaml:"size"`

		// CubeSize is the edge length of the signal cube
		CubeSize int `yaml:"cubeSize"`

		// Intensity is the signal level inside the cube
		Intensity float64 `yaml:"intensity"`

		// Sigma is the noise standard deviation
		Sigma float64 `yaml:"sigma"`

		// Seed makes the noise reproducible
		Seed uint64 `yaml:"seed"`

		// Noise is the noise model: gaussian or magnitude
		Noise string `yaml:"noise"`

		// Antithetic draws Gaussian noise in mirrored pairs
		Antithetic bool `yaml:"antithetic"`

		// Margin is the gap between the cube and the background region
		Margin int `yaml:"margin"`
	} `yaml:"phantom"`

	// Output parameters
	Output struct {
		// Verbose controls the level of logging output
		Verbose bool `yaml:"verbose"`
	} `yaml:"output"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	cfg := &Config{}

	// Set default estimator parameters
	cfg.Estimator.Erode = true
	cfg.Estimator.ForegroundLabel = "1"
	cfg.Estimator.UseBackground = true

	// Set default phantom parameters
	cfg.Phantom.Size = 64
	cfg.Phantom.CubeSize = 32
	cfg.Phantom.Intensity = 1000
	cfg.Phantom.Sigma = 10
	cfg.Phantom.Seed = 1
	cfg.Phantom.Noise = phantom.Magnitude.String()
	cfg.Phantom.Antithetic = false
	cfg.Phantom.Margin = 4

	// Set default output parameters
	cfg.Output.Verbose = false

	return cfg
}

// EstimatorParams converts the estimator section into snr.Params.
func (c *Config) EstimatorParams() (snr.Params, error) {
	label, err := mask.ParseLabel(c.Estimator.ForegroundLabel)
	if err != nil {
		return snr.Params{}, fmt.Errorf("invalid foreground label: %w", err)
	}

	params := snr.DefaultParams()
	params.Erode = c.Estimator.Erode
	params.ForegroundLabel = label
	return params, nil
}

// PhantomParams converts the phantom section into phantom.Params.
func (c *Config) PhantomParams() (phantom.Params, error) {
	noise, err := phantom.ParseNoise(c.Phantom.Noise)
	if err != nil {
		return phantom.Params{}, err
	}

	return phantom.Params{
		Size:       c.Phantom.Size,
		CubeSize:   c.Phantom.CubeSize,
		Intensity:  c.Phantom.Intensity,
		Sigma:      c.Phantom.Sigma,
		Seed:       c.Phantom.Seed,
		Noise:      noise,
		Antithetic: c.Phantom.Antithetic,
		Margin:     c.Phantom.Margin,
	}, nil
}

// LoadConfig loads configuration from a YAML file
// If the file doesn't exist, it returns the default configuration
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	// Check if config file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return cfg, nil
	}

	// Read config file
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	// Parse YAML
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	return cfg, nil
}

// SaveConfig saves the configuration to a YAML file
func SaveConfig(cfg *Config, configPath string) error {
	// Create directory if it doesn't exist
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	// Marshal config to YAML
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}

	// Write to file
	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}

	return nil
}

// CreateDefaultConfigFile creates a default configuration file at the specified path
func CreateDefaultConfigFile(configPath string) error {
	cfg := DefaultConfig()
	return SaveConfig(cfg, configPath)
}
