package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the node configuration, loaded from an optional YAML file.
type Config struct {
	Listen   string `yaml:"listen"`
	LogLevel string `yaml:"log_level"`
	NodeName string `yaml:"node_name"`

	RateLimit struct {
		RPS   float64 `yaml:"rps"`
		Burst int     `yaml:"burst"`
	} `yaml:"rate_limit"`
}

func defaultConfig() Config {
	cfg := Config{
		Listen:   ":5001",
		LogLevel: "info",
	}
	cfg.RateLimit.RPS = 100
	cfg.RateLimit.Burst = 100
	return cfg
}

// loadConfig reads path over the defaults. A missing file is fine when no
// path was given explicitly.
func loadConfig(path string, explicit bool) (Config, error) {
	cfg := defaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}
