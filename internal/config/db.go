package config

import "errors"

type DbConfig struct {
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	Address  string `mapstructure:"address"`
	DbName   string `mapstructure:"db-name"`
	// InMemory switches the pool store to the map-backed implementation;
	// meant for dev mode, the other fields are ignored when set.
	InMemory bool `mapstructure:"in-memory"`
}

func (cfg *DbConfig) Validate() error {
	if cfg.InMemory {
		return nil
	}
	if cfg.Address == "" {
		return errors.New("db address is required")
	}
	if cfg.DbName == "" {
		return errors.New("db name is required")
	}
	return nil
}
