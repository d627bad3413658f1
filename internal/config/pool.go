package config

import (
	"errors"
	"fmt"

	"cosmossdk.io/math"
)

type PoolConfig struct {
	// Owner is the account allowed to call administrative operations.
	Owner string `mapstructure:"owner"`
	// StakingToken is the identifier of the sole accepted token.
	StakingToken string `mapstructure:"staking-token"`
	// Treasury receives the end-of-program sweep.
	Treasury string `mapstructure:"treasury"`
	// Returnable pools allow withdrawals after the closing date and forbid
	// the treasury sweep.
	Returnable bool `mapstructure:"returnable"`
	// ClosingDate is a unix-millisecond deadline; zero disables it.
	ClosingDate int64 `mapstructure:"closing-date"`
	// RegistrationFee is the fixed storage deposit, as a decimal string.
	RegistrationFee string `mapstructure:"registration-fee"`
}

func (cfg *PoolConfig) Validate() error {
	if cfg.Owner == "" {
		return errors.New("pool owner is required")
	}
	if cfg.StakingToken == "" {
		return errors.New("staking token is required")
	}
	if cfg.Treasury == "" {
		return errors.New("treasury account is required")
	}
	if cfg.ClosingDate < 0 {
		return errors.New("closing date must not be negative")
	}
	fee, err := cfg.Fee()
	if err != nil {
		return err
	}
	if !fee.IsPositive() {
		return errors.New("registration fee must be positive")
	}
	return nil
}

// Fee parses the registration fee.
func (cfg *PoolConfig) Fee() (math.Int, error) {
	fee, ok := math.NewIntFromString(cfg.RegistrationFee)
	if !ok {
		return math.Int{}, fmt.Errorf("invalid registration fee %q", cfg.RegistrationFee)
	}
	return fee, nil
}
