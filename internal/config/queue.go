package config

import "errors"

type QueueConfig struct {
	// URL is the AMQP connection string.
	URL string `mapstructure:"url"`
	// OutcomeQueue is the queue carrying transfer outcome notifications.
	OutcomeQueue string `mapstructure:"outcome-queue"`
}

func (cfg *QueueConfig) Validate() error {
	if cfg.URL == "" {
		return errors.New("queue url is required")
	}
	if cfg.OutcomeQueue == "" {
		return errors.New("outcome queue name is required")
	}
	return nil
}
