// Package config provides configuration loading and management for slitspec.
// It handles loading observation descriptors from YAML files and provides
// default values.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config describes a raster observation: the instrument identity, the
// raster geometry and the linear coordinate axes, enough to assemble a
// raster sequence without instrument file I/O.
type Config struct {
	// Observation identifies the instrument context.
	Observation struct {
		// Instrument is the observing instrument name.
		Instrument string `yaml:"instrument"`

		// OBSID is the observation campaign identifier.
		OBSID string `yaml:"obsid"`

		// Detector is the detector descriptor, e.g. "FUV1" or "NUV".
		Detector string `yaml:"detector"`

		// SpectralWindow names the spectral window of the cubes.
		SpectralWindow string `yaml:"spectralWindow"`
	} `yaml:"observation"`

	// Raster describes the scan geometry.
	Raster struct {
		// Scans is the number of repeated raster scans in the sequence.
		Scans int `yaml:"scans"`

		// SlitSteps is the number of slit positions per scan.
		SlitSteps int `yaml:"slitSteps"`

		// SlitPositions is the number of pixels along the slit.
		SlitPositions int `yaml:"slitPositions"`

		// SpectralBins is the number of spectral pixels.
		SpectralBins int `yaml:"spectralBins"`
	} `yaml:"raster"`

	// Coordinates describes the linear world axes of each scan cube.
	Coordinates struct {
		// TimeStart is the observation time of the first exposure in
		// seconds since the campaign start.
		TimeStart float64 `yaml:"timeStart"`

		// TimeStep is the time between consecutive slit steps in seconds.
		TimeStep float64 `yaml:"timeStep"`

		// LatStart is the helioprojective latitude of the first slit
		// pixel in arcsec.
		LatStart float64 `yaml:"latStart"`

		// LatStep is the latitude increment per slit pixel in arcsec.
		LatStep float64 `yaml:"latStep"`

		// SpectralStart is the wavelength of the first spectral bin in
		// Angstrom.
		SpectralStart float64 `yaml:"spectralStart"`

		// SpectralStep is the wavelength increment per bin in Angstrom.
		SpectralStep float64 `yaml:"spectralStep"`

		// ExposureTime is the integration time per exposure in seconds.
		ExposureTime float64 `yaml:"exposureTime"`
	} `yaml:"coordinates"`

	// Output parameters
	Output struct {
		// Verbose controls the level of logging output
		Verbose bool `yaml:"verbose"`
	} `yaml:"output"`
}

// DefaultConfig returns a configuration with default values describing a
// small IRIS-like far ultraviolet raster.
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Observation.Instrument = "IRIS"
	cfg.Observation.OBSID = "3860258481"
	cfg.Observation.Detector = "FUV1"
	cfg.Observation.SpectralWindow = "C II 1336"

	cfg.Raster.Scans = 4
	cfg.Raster.SlitSteps = 8
	cfg.Raster.SlitPositions = 64
	cfg.Raster.SpectralBins = 128

	cfg.Coordinates.TimeStart = 0
	cfg.Coordinates.TimeStep = 9.5
	cfg.Coordinates.LatStart = -100
	cfg.Coordinates.LatStep = 0.166
	cfg.Coordinates.SpectralStart = 1332
	cfg.Coordinates.SpectralStep = 0.0255
	cfg.Coordinates.ExposureTime = 8

	cfg.Output.Verbose = true

	return cfg
}

// Validate checks the descriptor for values that cannot describe a
// raster.
func (cfg *Config) Validate() error {
	if cfg.Raster.Scans <= 0 {
		return fmt.Errorf("raster needs at least one scan, got %d", cfg.Raster.Scans)
	}
	if cfg.Raster.SlitSteps <= 0 {
		return fmt.Errorf("raster needs at least one slit step, got %d", cfg.Raster.SlitSteps)
	}
	if cfg.Raster.SlitPositions <= 0 {
		return fmt.Errorf("raster needs at least one slit position, got %d", cfg.Raster.SlitPositions)
	}
	if cfg.Raster.SpectralBins <= 0 {
		return fmt.Errorf("raster needs at least one spectral bin, got %d", cfg.Raster.SpectralBins)
	}
	if cfg.Coordinates.ExposureTime <= 0 {
		return fmt.Errorf("exposure time must be positive, got %g", cfg.Coordinates.ExposureTime)
	}
	if cfg.Observation.Detector == "" {
		return fmt.Errorf("observation needs a detector descriptor")
	}
	return nil
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

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
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
