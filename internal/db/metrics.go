package db

import (
	"context"
	"time"

	"github.com/stakepool-labs/staking-pool/internal/observability/metrics"
	"github.com/stakepool-labs/staking-pool/internal/pool"
)

type DbWithMetrics struct {
	db DbInterface
}

func NewDbWithMetrics(db DbInterface) *DbWithMetrics {
	return &DbWithMetrics{db: db}
}

func (d *DbWithMetrics) Ping(ctx context.Context) error {
	return d.db.Ping(ctx)
}

func (d *DbWithMetrics) GetLedger(ctx context.Context) (result *pool.Ledger, err error) {
	//nolint:errcheck
	d.run("GetLedger", func() error {
		result, err = d.db.GetLedger(ctx)
		return err
	})
	return
}

func (d *DbWithMetrics) PutLedger(ctx context.Context, ledger *pool.Ledger) error {
	return d.run("PutLedger", func() error {
		return d.db.PutLedger(ctx, ledger)
	})
}

func (d *DbWithMetrics) GetVault(ctx context.Context, account string) (result *pool.Vault, err error) {
	//nolint:errcheck
	d.run("GetVault", func() error {
		result, err = d.db.GetVault(ctx, account)
		return err
	})
	return
}

func (d *DbWithMetrics) PutVault(ctx context.Context, account string, vault *pool.Vault) error {
	return d.run("PutVault", func() error {
		return d.db.PutVault(ctx, account, vault)
	})
}

func (d *DbWithMetrics) RemoveVault(ctx context.Context, account string) error {
	return d.run("RemoveVault", func() error {
		return d.db.RemoveVault(ctx, account)
	})
}

func (d *DbWithMetrics) CountVaults(ctx context.Context) (result uint64, err error) {
	//nolint:errcheck
	d.run("CountVaults", func() error {
		result, err = d.db.CountVaults(ctx)
		return err
	})
	return
}

func (d *DbWithMetrics) ListAccounts(ctx context.Context, fromIndex, limit uint64) (result []string, err error) {
	//nolint:errcheck
	d.run("ListAccounts", func() error {
		result, err = d.db.ListAccounts(ctx, fromIndex, limit)
		return err
	})
	return
}

func (d *DbWithMetrics) SavePendingTransfer(ctx context.Context, req *pool.TransferRequest) error {
	return d.run("SavePendingTransfer", func() error {
		return d.db.SavePendingTransfer(ctx, req)
	})
}

func (d *DbWithMetrics) GetPendingTransfer(ctx context.Context, id string) (result *pool.TransferRequest, err error) {
	//nolint:errcheck
	d.run("GetPendingTransfer", func() error {
		result, err = d.db.GetPendingTransfer(ctx, id)
		return err
	})
	return
}

func (d *DbWithMetrics) DeletePendingTransfer(ctx context.Context, id string) error {
	return d.run("DeletePendingTransfer", func() error {
		return d.db.DeletePendingTransfer(ctx, id)
	})
}

func (d *DbWithMetrics) CountPendingTransfers(ctx context.Context) (result uint64, err error) {
	//nolint:errcheck
	d.run("CountPendingTransfers", func() error {
		result, err = d.db.CountPendingTransfers(ctx)
		return err
	})
	return
}

func (d *DbWithMetrics) run(method string, fn func() error) error {
	start := time.Now()
	err := fn()
	metrics.ObserveDbLatency(method, time.Since(start), err != nil)
	return err
}
