//go:build integration

package db_test

import (
	"testing"

	"cosmossdk.io/math"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stakepool-labs/staking-pool/internal/pool"
	"github.com/stakepool-labs/staking-pool/testutil"
)

func TestLedger(t *testing.T) {
	ctx := t.Context()
	t.Cleanup(func() {
		resetDatabase(t)
	})

	t.Run("not found", func(t *testing.T) {
		doc, err := testDB.GetLedger(ctx)
		assert.ErrorIs(t, err, pool.ErrLedgerNotFound)
		assert.Nil(t, doc)
	})
	t.Run("ok", func(t *testing.T) {
		ledger := &pool.Ledger{
			Owner:              testutil.RandomAccount(),
			StakingToken:       testutil.RandomAccount(),
			Treasury:           testutil.RandomAccount(),
			Returnable:         true,
			IsActive:           true,
			ClosingDate:        1735689600000,
			Total:              testutil.RandomAmount(1_000_000),
			AccountsRegistered: 3,
		}
		require.NoError(t, testDB.PutLedger(ctx, ledger))

		found, err := testDB.GetLedger(ctx)
		require.NoError(t, err)
		assert.Equal(t, ledger, found)

		// the ledger is a singleton, a second put replaces it
		ledger.IsActive = false
		ledger.Total = ledger.Total.AddRaw(42)
		require.NoError(t, testDB.PutLedger(ctx, ledger))

		found, err = testDB.GetLedger(ctx)
		require.NoError(t, err)
		assert.Equal(t, ledger, found)
	})
}

func TestLedgerLargeAmounts(t *testing.T) {
	ctx := t.Context()
	t.Cleanup(func() {
		resetDatabase(t)
	})

	// amounts beyond uint64 must survive the string round trip
	total, ok := math.NewIntFromString("340282366920938463463374607431768211455")
	require.True(t, ok)

	ledger := &pool.Ledger{
		Owner:        testutil.RandomAccount(),
		StakingToken: testutil.RandomAccount(),
		Treasury:     testutil.RandomAccount(),
		IsActive:     true,
		Total:        total,
	}
	require.NoError(t, testDB.PutLedger(ctx, ledger))

	found, err := testDB.GetLedger(ctx)
	require.NoError(t, err)
	assert.Equal(t, total.String(), found.Total.String())
}
