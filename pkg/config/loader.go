package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Load loads configuration from the layered sources. configPath may be
// empty; discovery then checks GATEWAY_CONFIG, ./config.yaml, and
// /etc/sagemaker-gateway/config.yaml.
func Load(configPath string) (*Config, error) {
	cfg := Defaults()

	filePath := discoverConfigFile(configPath)
	if filePath != "" {
		if err := loadYAMLFile(filePath, &cfg); err != nil {
			return nil, fmt.Errorf("loading config file %s: %w", filePath, err)
		}
	}

	applyEnvOverrides(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return &cfg, nil
}

// FromEnv loads configuration from defaults and environment variables
// only, skipping file discovery. Used by the Lambda entrypoint, where all
// configuration arrives through the function environment.
func FromEnv() (*Config, error) {
	cfg := Defaults()
	applyEnvOverrides(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	return &cfg, nil
}

func discoverConfigFile(configPath string) string {
	if configPath != "" {
		return configPath
	}
	if envPath := os.Getenv("GATEWAY_CONFIG"); envPath != "" {
		return envPath
	}
	for _, path := range []string{"config.yaml", "/etc/sagemaker-gateway/config.yaml"} {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

func loadYAMLFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// applyEnvOverrides maps environment variables onto config fields. The
// SAGEMAKER_ENDPOINT_NAME and AWS_REGION names match what the original
// Lambda deployment already sets, so both deployment forms share one
// environment.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("SAGEMAKER_ENDPOINT_NAME"); v != "" {
		cfg.Backend.Endpoint = v
	}
	if v := os.Getenv("AWS_REGION"); v != "" {
		cfg.Backend.Region = v
	}
	if v := os.Getenv("GATEWAY_BACKEND"); v != "" {
		cfg.Backend.Type = v
	}
	if v := os.Getenv("GATEWAY_LOCAL_URL"); v != "" {
		cfg.Backend.LocalURL = v
	}
	if v := os.Getenv("GATEWAY_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("GATEWAY_BACKEND_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Backend.Timeout = d
		}
	}
	if v := os.Getenv("GATEWAY_METRICS"); v != "" {
		if enabled, err := strconv.ParseBool(v); err == nil {
			cfg.Observability.Metrics.Enabled = enabled
		}
	}
}
