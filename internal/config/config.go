// Package config provides configuration management for DeepReal
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"

	"github.com/Pranati-2/DeepReal/internal/logging"
	"github.com/Pranati-2/DeepReal/internal/raster"
	"github.com/Pranati-2/DeepReal/internal/sink"
	"github.com/Pranati-2/DeepReal/internal/tts"
)

// Config holds all application configuration
type Config struct {
	Engine   EngineConfig             `mapstructure:"engine"`
	Region   raster.RegionProportions `mapstructure:"region"`
	Recorder sink.AVIConfig           `mapstructure:"recorder"`
	TTS      tts.ToneConfig           `mapstructure:"tts"`
	Logging  logging.Config           `mapstructure:"logging"`
}

// EngineConfig configures the sync engine
type EngineConfig struct {
	FPS           int           `mapstructure:"fps"`            // output frame rate
	Profile       string        `mapstructure:"profile"`        // default|subtle|exaggerated|realistic
	StillDuration time.Duration `mapstructure:"still_duration"` // video length for a single-image source
	SourceFPS     int           `mapstructure:"source_fps"`     // native rate of frame-directory sources
}

// DefaultConfig returns sensible default configuration
func DefaultConfig() *Config {
	return &Config{
		Engine: EngineConfig{
			FPS:           30,
			Profile:       "default",
			StillDuration: 5 * time.Second,
			SourceFPS:     30,
		},
		Region:   raster.DefaultRegionProportions(),
		Recorder: sink.DefaultAVIConfig(),
		TTS:      tts.DefaultToneConfig(),
		Logging:  *logging.DefaultConfig(),
	}
}

// Load reads configuration from file and environment
func Load() (*Config, error) {
	cfg := DefaultConfig()

	configDir, err := GetConfigDir()
	if err != nil {
		return cfg, err
	}
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return cfg, err
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configDir)
	v.AddConfigPath(".")

	v.SetEnvPrefix("DEEPREAL")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return cfg, err
		}
		// Config file not found, use defaults and create one
		if err := Save(cfg); err != nil {
			return cfg, err
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// LoadFile reads configuration from a specific YAML file, without the
// default search paths. Used by the watcher and by tests.
func LoadFile(path string) (*Config, error) {
	cfg := DefaultConfig()

	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration to file
func Save(cfg *Config) error {
	configDir, err := GetConfigDir()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return err
	}

	v := viper.New()
	v.Set("engine", cfg.Engine)
	v.Set("region", cfg.Region)
	v.Set("recorder", cfg.Recorder)
	v.Set("tts", cfg.TTS)
	v.Set("logging", cfg.Logging)

	return v.WriteConfigAs(filepath.Join(configDir, "config.yaml"))
}

// GetConfigDir returns the configuration directory path
func GetConfigDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".deepreal"), nil
}
