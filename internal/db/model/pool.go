package model

import "time"

const (
	LedgerCollection          = "ledger"
	VaultCollection           = "vaults"
	PendingTransferCollection = "pending_transfers"
)

// LedgerID is the _id of the singleton ledger document.
const LedgerID = "pool"

type LedgerDocument struct {
	ID                 string `bson:"_id"`
	Owner              string `bson:"owner"`
	StakingToken       string `bson:"staking_token"`
	Treasury           string `bson:"treasury"`
	Returnable         bool   `bson:"returnable"`
	IsActive           bool   `bson:"is_active"`
	ClosingDate        int64  `bson:"closing_date"`
	Total              string `bson:"total"`
	AccountsRegistered uint64 `bson:"accounts_registered"`
}

type VaultDocument struct {
	Account string `bson:"_id"`
	Staked  string `bson:"staked"`
	// Seq preserves registration order for paginated listings.
	Seq          uint64    `bson:"seq"`
	RegisteredAt time.Time `bson:"registered_at"`
}

type PendingTransferDocument struct {
	ID        string    `bson:"_id"`
	Account   string    `bson:"account"`
	Amount    string    `bson:"amount"`
	Kind      string    `bson:"kind"`
	Memo      string    `bson:"memo"`
	CreatedAt time.Time `bson:"created_at"`
}
