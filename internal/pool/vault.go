package pool

import (
	"time"

	"cosmossdk.io/math"
)

// Vault holds the staked balance of a single registered account.
type Vault struct {
	Staked math.Int
}

// NewVault returns a vault with zero staked balance.
func NewVault() *Vault {
	return &Vault{Staked: math.ZeroInt()}
}

// Ledger is the aggregate pool state. One document exists per pool; the
// static identity fields are written once at initialization.
type Ledger struct {
	// Owner is the only account allowed to call administrative operations.
	Owner string
	// StakingToken is the sole token accepted on the deposit path.
	StakingToken string
	// Treasury receives the end-of-program sweep.
	Treasury string
	// Returnable pools let users withdraw after the closing date, at the
	// cost of disabling the treasury sweep.
	Returnable bool
	// IsActive gates every mutating operation.
	IsActive bool
	// ClosingDate is a unix-millisecond deadline. Zero disables it.
	ClosingDate int64
	// Total is the sum of all vault balances, except while a dispatched
	// transfer is awaiting its outcome.
	Total math.Int
	// AccountsRegistered counts live vaults.
	AccountsRegistered uint64
}

// TransferKind records which local mutation preceded an outbound transfer,
// which determines how a failure outcome is compensated.
type TransferKind string

const (
	TransferUnstake TransferKind = "UNSTAKE"
	TransferClose   TransferKind = "CLOSE"
	TransferSweep   TransferKind = "SWEEP"
)

func (k TransferKind) String() string {
	return string(k)
}

// Outcome is the binary result carried by a transfer notification.
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeFailure Outcome = "failure"
)

func (o Outcome) String() string {
	return string(o)
}

// TransferRequest captures an outbound transfer at dispatch time. It is
// persisted until the outcome notification resolves it, so the compensation
// path can find (account, amount, kind) long after the initiating call
// returned.
type TransferRequest struct {
	ID        string
	Account   string
	Amount    math.Int
	Kind      TransferKind
	Memo      string
	CreatedAt time.Time
}
