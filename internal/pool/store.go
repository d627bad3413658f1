package pool

import "context"

// Store persists the ledger singleton, the vault map and the pending
// transfer requests. The in-memory implementation below backs unit tests and
// dev mode; the mongo implementation in internal/db backs production.
//
// GetVault on a missing account returns ErrAccountNotRegistered; callers
// must never substitute a zero vault. GetPendingTransfer on an unknown or
// already-resolved ID returns ErrTransferNotFound.
type Store interface {
	GetLedger(ctx context.Context) (*Ledger, error)
	PutLedger(ctx context.Context, ledger *Ledger) error

	GetVault(ctx context.Context, account string) (*Vault, error)
	PutVault(ctx context.Context, account string, vault *Vault) error
	RemoveVault(ctx context.Context, account string) error
	CountVaults(ctx context.Context) (uint64, error)
	// ListAccounts returns registered account IDs in registration order,
	// clamped to [fromIndex, fromIndex+limit).
	ListAccounts(ctx context.Context, fromIndex, limit uint64) ([]string, error)

	SavePendingTransfer(ctx context.Context, req *TransferRequest) error
	GetPendingTransfer(ctx context.Context, id string) (*TransferRequest, error)
	DeletePendingTransfer(ctx context.Context, id string) error
	CountPendingTransfers(ctx context.Context) (uint64, error)
}
