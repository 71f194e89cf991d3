package config

import (
	"errors"
	"fmt"
	"math"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}
	if err := c.validateSweep(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	if c.Paths.MinFreeMiB < 0 {
		return errors.New("paths.min_free_mib must be zero or positive")
	}
	return nil
}

func (c *Config) validateServer() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.RateLimit < 0 || math.IsNaN(c.Server.RateLimit) {
		return errors.New("server.rate_limit must be zero or positive")
	}
	return nil
}

func (c *Config) validateSweep() error {
	if c.Sweep.Interval <= 0 {
		return errors.New("sweep.interval must be positive")
	}
	if c.Sweep.MaxAge <= 0 {
		return errors.New("sweep.max_age must be positive")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}
