//go:build integration

package db_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stakepool-labs/staking-pool/internal/pool"
	"github.com/stakepool-labs/staking-pool/testutil"
)

func TestVault(t *testing.T) {
	ctx := t.Context()
	t.Cleanup(func() {
		resetDatabase(t)
	})

	account := testutil.RandomAccount()

	t.Run("not found", func(t *testing.T) {
		doc, err := testDB.GetVault(ctx, account)
		assert.ErrorIs(t, err, pool.ErrAccountNotRegistered)
		assert.Nil(t, doc)
	})
	t.Run("insert and update", func(t *testing.T) {
		vault := &pool.Vault{Staked: testutil.RandomAmount(1_000_000)}
		require.NoError(t, testDB.PutVault(ctx, account, vault))

		found, err := testDB.GetVault(ctx, account)
		require.NoError(t, err)
		assert.Equal(t, vault.Staked.String(), found.Staked.String())

		vault.Staked = vault.Staked.AddRaw(100)
		require.NoError(t, testDB.PutVault(ctx, account, vault))

		found, err = testDB.GetVault(ctx, account)
		require.NoError(t, err)
		assert.Equal(t, vault.Staked.String(), found.Staked.String())

		count, err := testDB.CountVaults(ctx)
		require.NoError(t, err)
		assert.Equal(t, uint64(1), count)
	})
	t.Run("remove", func(t *testing.T) {
		require.NoError(t, testDB.RemoveVault(ctx, account))

		_, err := testDB.GetVault(ctx, account)
		assert.ErrorIs(t, err, pool.ErrAccountNotRegistered)

		err = testDB.RemoveVault(ctx, account)
		assert.ErrorIs(t, err, pool.ErrAccountNotRegistered)
	})
}

func TestListAccounts(t *testing.T) {
	ctx := t.Context()
	t.Cleanup(func() {
		resetDatabase(t)
	})

	accounts := []string{"first.near", "second.near", "third.near", "fourth.near"}
	for _, account := range accounts {
		vault := &pool.Vault{Staked: testutil.RandomAmount(1000)}
		require.NoError(t, testDB.PutVault(ctx, account, vault))
	}

	t.Run("registration order", func(t *testing.T) {
		listed, err := testDB.ListAccounts(ctx, 0, 10)
		require.NoError(t, err)
		assert.Equal(t, accounts, listed)
	})
	t.Run("pagination", func(t *testing.T) {
		listed, err := testDB.ListAccounts(ctx, 1, 2)
		require.NoError(t, err)
		assert.Equal(t, accounts[1:3], listed)

		listed, err = testDB.ListAccounts(ctx, 3, 10)
		require.NoError(t, err)
		assert.Equal(t, accounts[3:], listed)

		listed, err = testDB.ListAccounts(ctx, 10, 10)
		require.NoError(t, err)
		assert.Empty(t, listed)
	})
	t.Run("order survives removal", func(t *testing.T) {
		require.NoError(t, testDB.RemoveVault(ctx, "second.near"))

		listed, err := testDB.ListAccounts(ctx, 0, 10)
		require.NoError(t, err)
		assert.Equal(t, []string{"first.near", "third.near", "fourth.near"}, listed)
	})
}
