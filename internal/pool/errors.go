package pool

import "errors"

var (
	// ErrNotOwner is returned by owner-only operations for any other caller.
	ErrNotOwner = errors.New("can only be called by the owner")
	// ErrPoolNotActive is returned by every mutating operation while the
	// active flag is off.
	ErrPoolNotActive = errors.New("pool is not active")
	// ErrPoolClosed is returned once the closing date has passed, unless the
	// operation is exempt on a returnable pool.
	ErrPoolClosed = errors.New("pool is closed")
	// ErrPoolNotClosed rejects a treasury sweep before the closing date.
	ErrPoolNotClosed = errors.New("pool is not closed yet")
	// ErrPoolReturnable rejects a treasury sweep on a returnable pool.
	ErrPoolReturnable = errors.New("pool tokens are returnable")
	// ErrAccountNotRegistered is the canonical missing-vault condition.
	ErrAccountNotRegistered = errors.New("account not found, register the account first")
	// ErrInsufficientStake rejects withdrawals above the vault balance.
	ErrInsufficientStake = errors.New("not enough staked tokens")
	// ErrInsufficientDeposit rejects registrations below the fixed fee.
	ErrInsufficientDeposit = errors.New("attached deposit is less than the registration fee")
	// ErrWrongToken rejects deposit notifications from any token other than
	// the staking token.
	ErrWrongToken = errors.New("only staking token transfers are accepted")
	// ErrZeroAmount rejects zero-amount deposits and withdrawals.
	ErrZeroAmount = errors.New("amount must be positive")
	// ErrNoAuthToken is returned when a mutating call lacks the exact
	// one-unit confirmation attachment.
	ErrNoAuthToken = errors.New("requires an attached deposit of exactly one unit")
	// ErrTransferNotFound means no pending transfer matches the request ID;
	// either it never existed or it was already resolved.
	ErrTransferNotFound = errors.New("pending transfer not found")
	// ErrStorageWithdraw rejects partial registration-deposit withdrawals.
	ErrStorageWithdraw = errors.New("storage withdraw not possible, close the account instead")
	// ErrLedgerNotFound means the pool was never initialized in the store.
	ErrLedgerNotFound = errors.New("pool ledger not initialized")
)
