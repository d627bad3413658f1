//go:build integration

package db_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stakepool-labs/staking-pool/internal/pool"
	"github.com/stakepool-labs/staking-pool/testutil"
)

func TestPendingTransfer(t *testing.T) {
	ctx := t.Context()
	t.Cleanup(func() {
		resetDatabase(t)
	})

	req := &pool.TransferRequest{
		ID:        uuid.New().String(),
		Account:   testutil.RandomAccount(),
		Amount:    testutil.RandomAmount(1_000_000),
		Kind:      pool.TransferUnstake,
		Memo:      "unstaking",
		CreatedAt: time.Now().UTC(),
	}

	t.Run("not found", func(t *testing.T) {
		doc, err := testDB.GetPendingTransfer(ctx, req.ID)
		assert.ErrorIs(t, err, pool.ErrTransferNotFound)
		assert.Nil(t, doc)
	})
	t.Run("save and get", func(t *testing.T) {
		require.NoError(t, testDB.SavePendingTransfer(ctx, req))

		found, err := testDB.GetPendingTransfer(ctx, req.ID)
		require.NoError(t, err)
		assert.Equal(t, req.ID, found.ID)
		assert.Equal(t, req.Account, found.Account)
		assert.Equal(t, req.Amount.String(), found.Amount.String())
		assert.Equal(t, req.Kind, found.Kind)
		assert.Equal(t, req.Memo, found.Memo)
		// bson stores times with millisecond precision
		assert.WithinDuration(t, req.CreatedAt, found.CreatedAt, time.Millisecond)

		count, err := testDB.CountPendingTransfers(ctx)
		require.NoError(t, err)
		assert.Equal(t, uint64(1), count)
	})
	t.Run("delete", func(t *testing.T) {
		require.NoError(t, testDB.DeletePendingTransfer(ctx, req.ID))

		_, err := testDB.GetPendingTransfer(ctx, req.ID)
		assert.ErrorIs(t, err, pool.ErrTransferNotFound)

		err = testDB.DeletePendingTransfer(ctx, req.ID)
		assert.ErrorIs(t, err, pool.ErrTransferNotFound)
	})
}
