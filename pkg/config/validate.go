package config

import "fmt"

// Validate checks the configuration for inconsistencies. A missing
// SageMaker endpoint name is deliberately not an error here: the gateway
// must start and surface it as a server_error on first backend use.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port)
	}

	switch c.Backend.Type {
	case "sagemaker":
		if c.Backend.Region == "" {
			return fmt.Errorf("backend.region is required for the sagemaker backend")
		}
	case "local":
		if c.Backend.LocalURL == "" {
			return fmt.Errorf("backend.local_url is required for the local backend")
		}
	default:
		return fmt.Errorf("backend.type must be %q or %q, got %q", "sagemaker", "local", c.Backend.Type)
	}

	if c.Backend.Timeout < 0 {
		return fmt.Errorf("backend.timeout must not be negative")
	}

	return nil
}
