package config

import (
	"errors"
	"time"
)

type PollerConfig struct {
	ConsistencyPollingInterval time.Duration `mapstructure:"consistency-polling-interval"`
}

func (cfg *PollerConfig) Validate() error {
	if cfg.ConsistencyPollingInterval <= 0 {
		return errors.New("consistency-polling-interval must be positive")
	}

	return nil
}
