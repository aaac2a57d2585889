package app

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/skyward-robotics/flightkit/internal/flight"
	"github.com/skyward-robotics/flightkit/internal/gateway/mqtt"
)

// Config is the main application configuration.
type Config struct {
	Settings Settings      `yaml:"settings"`
	Gateway  mqtt.Config   `yaml:"gateway"`
	Flight   flight.Config `yaml:"flight"`
	Storage  StorageConfig `yaml:"storage"`
}

// Settings are global application settings.
type Settings struct {
	LogLevel string `yaml:"logLevel"`
}

// StorageConfig holds the route library settings.
type StorageConfig struct {
	DataDirectory string `yaml:"dataDirectory"`
}

// LoadConfig reads and validates a YAML configuration file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading configuration file: %w", err)
	}

	var config Config
	if err = yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("parsing configuration file: %w", err)
	}

	if config.Gateway.BrokerURL == "" {
		return nil, fmt.Errorf("gateway broker URL is required")
	}
	if config.Gateway.ClientID == "" {
		config.Gateway.ClientID = "flightctl"
	}

	config.Flight = config.Flight.Normalize()
	return &config, nil
}

// Level parses the configured log level, defaulting to info.
func (s Settings) Level() slog.Level {
	switch strings.ToLower(s.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
