package pool

import (
	"context"
	"fmt"
	"testing"

	"cosmossdk.io/math"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatus(t *testing.T) {
	ctx := context.Background()
	p, _, _ := newTestPool(t, false, farFuture)

	// unknown accounts report zero, not an error
	staked, err := p.Status(ctx, "nobody")
	require.NoError(t, err)
	assert.True(t, staked.IsZero())

	register(t, p, alice)
	deposit(t, p, alice, 750)
	staked, err = p.Status(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, "750", staked.String())
}

func TestParams(t *testing.T) {
	ctx := context.Background()
	p, _, _ := newTestPool(t, true, farFuture)
	register(t, p, alice)
	deposit(t, p, alice, 300)

	params, err := p.Params(ctx)
	require.NoError(t, err)
	assert.Equal(t, owner, params.Owner)
	assert.Equal(t, token, params.StakingToken)
	assert.Equal(t, treasury, params.Treasury)
	assert.True(t, params.IsActive)
	assert.True(t, params.Returnable)
	assert.Equal(t, farFuture, params.ClosingDate)
	assert.Equal(t, "300", params.TotalStaked.String())
	assert.Equal(t, uint64(1), params.AccountsRegistered)
}

func TestRegisteredAccounts(t *testing.T) {
	ctx := context.Background()
	p, _, _ := newTestPool(t, false, farFuture)

	var want []string
	for i := range 5 {
		account := fmt.Sprintf("account-%d", i)
		register(t, p, account)
		want = append(want, account)
	}

	accounts, err := p.RegisteredAccounts(ctx, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, want, accounts)

	accounts, err = p.RegisteredAccounts(ctx, 2, 2)
	require.NoError(t, err)
	assert.Equal(t, want[2:4], accounts)

	// limit is clamped to the number of accounts
	accounts, err = p.RegisteredAccounts(ctx, 3, 100)
	require.NoError(t, err)
	assert.Equal(t, want[3:], accounts)

	accounts, err = p.RegisteredAccounts(ctx, 100, 10)
	require.NoError(t, err)
	assert.Empty(t, accounts)
}

func TestStorageBalanceOf(t *testing.T) {
	ctx := context.Background()
	p, _, _ := newTestPool(t, false, farFuture)

	_, registered, err := p.StorageBalanceOf(ctx, alice)
	require.NoError(t, err)
	assert.False(t, registered)

	register(t, p, alice)
	balance, registered, err := p.StorageBalanceOf(ctx, alice)
	require.NoError(t, err)
	assert.True(t, registered)
	assert.Equal(t, fee.String(), balance.String())
}

func TestCheckConsistency(t *testing.T) {
	ctx := context.Background()
	p, _, _ := newTestPool(t, false, farFuture)

	register(t, p, alice)
	deposit(t, p, alice, 400)
	register(t, p, bob)
	deposit(t, p, bob, 600)

	c, err := p.CheckConsistency(ctx)
	require.NoError(t, err)
	assert.Equal(t, "1000", c.Total.String())
	assert.Equal(t, "1000", c.StakedSum.String())
	assert.Equal(t, uint64(2), c.Registered)
	assert.Equal(t, uint64(2), c.VaultCount)
	assert.Zero(t, c.PendingTransfers)

	// local aggregates stay aligned even while a transfer is pending; only
	// the external token ledger lags behind
	_, req, err := p.Unstake(ctx, alice, math.NewInt(100), oneUnit)
	require.NoError(t, err)
	c, err = p.CheckConsistency(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), c.PendingTransfers)
	assert.Equal(t, c.Total.String(), c.StakedSum.String())

	require.NoError(t, p.Resolve(ctx, req.ID, OutcomeSuccess))
	requireConsistent(t, p)
}
