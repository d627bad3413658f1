package pool

import (
	"context"
	"errors"

	"cosmossdk.io/math"
)

// PoolParams is the read-only projection of the ledger.
type PoolParams struct {
	Owner              string   `json:"owner"`
	StakingToken       string   `json:"staking_token"`
	Treasury           string   `json:"treasury"`
	IsActive           bool     `json:"is_active"`
	Returnable         bool     `json:"returnable"`
	ClosingDate        int64    `json:"closing_date"`
	TotalStaked        math.Int `json:"total_staked"`
	AccountsRegistered uint64   `json:"accounts_registered"`
}

// Params returns the pool parameters.
func (p *Pool) Params(ctx context.Context) (*PoolParams, error) {
	ledger, err := p.store.GetLedger(ctx)
	if err != nil {
		return nil, err
	}
	return &PoolParams{
		Owner:              ledger.Owner,
		StakingToken:       ledger.StakingToken,
		Treasury:           ledger.Treasury,
		IsActive:           ledger.IsActive,
		Returnable:         ledger.Returnable,
		ClosingDate:        ledger.ClosingDate,
		TotalStaked:        ledger.Total,
		AccountsRegistered: ledger.AccountsRegistered,
	}, nil
}

// Status returns the account's staked amount. Unknown accounts report zero;
// absence is not an error on the view surface.
func (p *Pool) Status(ctx context.Context, account string) (math.Int, error) {
	vault, err := p.store.GetVault(ctx, account)
	if err != nil {
		if errors.Is(err, ErrAccountNotRegistered) {
			return math.ZeroInt(), nil
		}
		return math.Int{}, err
	}
	return vault.Staked, nil
}

// RegisteredAccounts lists account IDs by index range.
func (p *Pool) RegisteredAccounts(ctx context.Context, fromIndex, limit uint64) ([]string, error) {
	return p.store.ListAccounts(ctx, fromIndex, limit)
}

// StorageBalanceOf reports the registration deposit held for the account.
// Registered accounts always hold exactly the fixed fee, fully locked; the
// boolean is false for unknown accounts.
func (p *Pool) StorageBalanceOf(ctx context.Context, account string) (math.Int, bool, error) {
	_, err := p.store.GetVault(ctx, account)
	if err != nil {
		if errors.Is(err, ErrAccountNotRegistered) {
			return math.Int{}, false, nil
		}
		return math.Int{}, false, err
	}
	return p.fee, true, nil
}

// Consistency is a snapshot of the ledger aggregates against the vault
// store, used by the invariant poller. With no transfer pending, Total and
// StakedSum must match.
type Consistency struct {
	Total            math.Int
	StakedSum        math.Int
	Registered       uint64
	VaultCount       uint64
	PendingTransfers uint64
}

// CheckConsistency recomputes the vault-side aggregates under the pool lock
// so no top-level call interleaves with the scan.
func (p *Pool) CheckConsistency(ctx context.Context) (*Consistency, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	ledger, err := p.store.GetLedger(ctx)
	if err != nil {
		return nil, err
	}
	count, err := p.store.CountVaults(ctx)
	if err != nil {
		return nil, err
	}
	pending, err := p.store.CountPendingTransfers(ctx)
	if err != nil {
		return nil, err
	}

	sum := math.ZeroInt()
	const page = 256
	for from := uint64(0); ; from += page {
		accounts, err := p.store.ListAccounts(ctx, from, page)
		if err != nil {
			return nil, err
		}
		if len(accounts) == 0 {
			break
		}
		for _, account := range accounts {
			vault, err := p.store.GetVault(ctx, account)
			if err != nil {
				return nil, err
			}
			sum = sum.Add(vault.Staked)
		}
		if len(accounts) < page {
			break
		}
	}

	return &Consistency{
		Total:            ledger.Total,
		StakedSum:        sum,
		Registered:       ledger.AccountsRegistered,
		VaultCount:       count,
		PendingTransfers: pending,
	}, nil
}
