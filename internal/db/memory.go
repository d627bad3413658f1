package db

import (
	"context"

	"github.com/stakepool-labs/staking-pool/internal/pool"
)

// MemDatabase adapts the map-backed pool store to the db interface for dev
// mode, where no mongo instance is around.
type MemDatabase struct {
	*pool.MemStore
}

func NewMemDatabase() *MemDatabase {
	return &MemDatabase{MemStore: pool.NewMemStore()}
}

func (db *MemDatabase) Ping(ctx context.Context) error {
	return nil
}
