package config

import (
	"errors"
	"time"
)

type TokenServiceConfig struct {
	// Endpoint is the base URL of the external fungible-token service.
	Endpoint      string        `mapstructure:"endpoint"`
	Timeout       time.Duration `mapstructure:"timeout"`
	MaxRetryTimes uint          `mapstructure:"max-retry-times"`
	RetryInterval time.Duration `mapstructure:"retry-interval"`
}

func (cfg *TokenServiceConfig) Validate() error {
	if cfg.Endpoint == "" {
		return errors.New("token service endpoint is required")
	}
	if cfg.Timeout <= 0 {
		return errors.New("token service timeout is required")
	}
	if cfg.MaxRetryTimes == 0 {
		return errors.New("token service max-retry-times is required")
	}
	if cfg.RetryInterval <= 0 {
		return errors.New("token service retry-interval is required")
	}
	return nil
}
