package config

import (
	"encoding/json"
	"errors"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config mirrors the client construction parameters. Timeout and Backoff are
// expressed in seconds to match the service documentation.
type Config struct {
	Token string `json:"token" yaml:"token"`

	BaseURL string `json:"base_url" yaml:"base_url"`

	Timeout int     `json:"timeout" yaml:"timeout"`
	Retries int     `json:"retries" yaml:"retries"`
	Backoff float64 `json:"backoff" yaml:"backoff"`

	Archive string `json:"archive" yaml:"archive"`
}

func (c *Config) TimeoutDuration() time.Duration {
	return time.Duration(c.Timeout) * time.Second
}

func (c *Config) BackoffDuration() time.Duration {
	return time.Duration(c.Backoff * float64(time.Second))
}

func Parse(path string) (*Config, error) {
	data, err := os.ReadFile(path)

	if err != nil {
		return nil, err
	}

	var config Config

	if err := json.Unmarshal(data, &config); err == nil {
		return &config, nil
	}

	if err := yaml.Unmarshal(data, &config); err == nil {
		return &config, nil
	}

	return nil, errors.New("failed to parse config file")
}

// Lookup loads the named config file, or scans the conventional locations
// when path is empty. No config file at all is not an error.
func Lookup(path string) (*Config, error) {
	if path != "" {
		return Parse(path)
	}

	for _, name := range []string{".legalapi.json", ".legalapi.yaml", "legalapi.json", "legalapi.yaml"} {
		if _, err := os.Stat(name); os.IsNotExist(err) {
			continue
		}

		return Parse(name)
	}

	return nil, nil
}
