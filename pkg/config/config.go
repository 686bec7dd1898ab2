// Package config provides unified configuration for the gateway.
//
// Configuration is loaded with a layered approach:
//  1. Built-in defaults
//  2. YAML config file (discovered or explicitly specified)
//  3. Environment variable overrides (GATEWAY_ prefix, plus the
//     SAGEMAKER_ENDPOINT_NAME / AWS_REGION names the Lambda deployment
//     already uses)
//  4. Validation
package config

import "time"

// Config holds all configuration for the gateway.
type Config struct {
	Server        ServerConfig        `yaml:"server"`
	Backend       BackendConfig       `yaml:"backend"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         int           `yaml:"port"`          // default: 8080
	ReadTimeout  time.Duration `yaml:"read_timeout"`  // default: 30s
	WriteTimeout time.Duration `yaml:"write_timeout"` // default: 120s
	MaxBodySize  int64         `yaml:"max_body_size"` // default: 10 MB
}

// BackendConfig selects and configures the backend transport.
type BackendConfig struct {
	// Type is "sagemaker" or "local". Default: "sagemaker".
	Type string `yaml:"type"`

	// Endpoint is the SageMaker endpoint name, also reported as the model
	// ID by /v1/models. May be empty; invocations then fail with a
	// server_error instead of the process refusing to start.
	Endpoint string `yaml:"endpoint"`

	// Region for the SageMaker runtime client. Default: "eu-north-1".
	Region string `yaml:"region"`

	// LocalURL is the container base URL for the local transport.
	LocalURL string `yaml:"local_url"`

	// Timeout for sync backend calls. Default: 120s.
	Timeout time.Duration `yaml:"timeout"`
}

// ObservabilityConfig holds monitoring settings.
type ObservabilityConfig struct {
	Metrics MetricsConfig `yaml:"metrics"`
}

// MetricsConfig holds Prometheus metrics endpoint settings.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"` // default: true
	Path    string `yaml:"path"`    // default: "/metrics"
}

// Defaults returns a Config with all default values filled in.
func Defaults() Config {
	return Config{
		Server: ServerConfig{
			Port:         8080,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 120 * time.Second,
			MaxBodySize:  10 << 20,
		},
		Backend: BackendConfig{
			Type:    "sagemaker",
			Region:  "eu-north-1",
			Timeout: 120 * time.Second,
		},
		Observability: ObservabilityConfig{
			Metrics: MetricsConfig{
				Enabled: true,
				Path:    "/metrics",
			},
		},
	}
}
