package frontend

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultClientID is used when no client id is configured.
const DefaultClientID = "234"

// ClientConfig is read once when a terminal client starts.
type ClientConfig struct {
	APIBaseURL string        `yaml:"api_base_url"`
	ClientID   string        `yaml:"client_id"`
	Latitude   float64       `yaml:"latitude"`
	Longitude  float64       `yaml:"longitude"`
	Timeout    time.Duration `yaml:"timeout"`
	Region     string        `yaml:"phone_region"`
}

// LoadClientConfig reads path. A missing file yields the defaults.
func LoadClientConfig(path string) (ClientConfig, error) {
	cfg := ClientConfig{ClientID: DefaultClientID, Timeout: 45 * time.Second, Region: "IN"}
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read client config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse client config: %w", err)
	}
	if cfg.ClientID == "" {
		cfg.ClientID = DefaultClientID
	}
	if cfg.Latitude < -90 || cfg.Latitude > 90 || cfg.Longitude < -180 || cfg.Longitude > 180 {
		return cfg, fmt.Errorf("client config coordinates out of range: %v, %v", cfg.Latitude, cfg.Longitude)
	}
	return cfg, nil
}
