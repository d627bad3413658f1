package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Pool    PoolConfig         `mapstructure:"pool"`
	Db      DbConfig           `mapstructure:"db"`
	Token   TokenServiceConfig `mapstructure:"token-service"`
	Queue   QueueConfig        `mapstructure:"queue"`
	Server  ServerConfig       `mapstructure:"server"`
	Metrics MetricsConfig      `mapstructure:"metrics"`
	Poller  PollerConfig       `mapstructure:"poller"`
}

func (cfg *Config) Validate() error {
	if err := cfg.Pool.Validate(); err != nil {
		return err
	}
	if err := cfg.Db.Validate(); err != nil {
		return err
	}
	if err := cfg.Token.Validate(); err != nil {
		return err
	}
	if err := cfg.Queue.Validate(); err != nil {
		return err
	}
	if err := cfg.Server.Validate(); err != nil {
		return err
	}
	if err := cfg.Metrics.Validate(); err != nil {
		return err
	}
	return cfg.Poller.Validate()
}

// New returns a validated Config from the given yaml file. Any field can be
// overridden through the environment, e.g. POOL.OWNER.
func New(cfgPath string) (*Config, error) {
	viper.SetConfigFile(cfgPath)
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", cfgPath, err)
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
