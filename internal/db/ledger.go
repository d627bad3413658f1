package db

import (
	"context"
	"errors"
	"fmt"

	"cosmossdk.io/math"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/stakepool-labs/staking-pool/internal/db/model"
	"github.com/stakepool-labs/staking-pool/internal/pool"
)

func (db *Database) GetLedger(ctx context.Context) (*pool.Ledger, error) {
	res := db.collection(model.LedgerCollection).
		FindOne(ctx, bson.M{"_id": model.LedgerID})

	var doc model.LedgerDocument
	if err := res.Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, pool.ErrLedgerNotFound
		}
		return nil, err
	}

	total, err := parseAmount(doc.Total)
	if err != nil {
		return nil, fmt.Errorf("ledger total: %w", err)
	}
	return &pool.Ledger{
		Owner:              doc.Owner,
		StakingToken:       doc.StakingToken,
		Treasury:           doc.Treasury,
		Returnable:         doc.Returnable,
		IsActive:           doc.IsActive,
		ClosingDate:        doc.ClosingDate,
		Total:              total,
		AccountsRegistered: doc.AccountsRegistered,
	}, nil
}

func (db *Database) PutLedger(ctx context.Context, ledger *pool.Ledger) error {
	doc := model.LedgerDocument{
		ID:                 model.LedgerID,
		Owner:              ledger.Owner,
		StakingToken:       ledger.StakingToken,
		Treasury:           ledger.Treasury,
		Returnable:         ledger.Returnable,
		IsActive:           ledger.IsActive,
		ClosingDate:        ledger.ClosingDate,
		Total:              ledger.Total.String(),
		AccountsRegistered: ledger.AccountsRegistered,
	}

	opts := options.Replace().SetUpsert(true)
	_, err := db.collection(model.LedgerCollection).
		ReplaceOne(ctx, bson.M{"_id": model.LedgerID}, doc, opts)
	return err
}

func parseAmount(s string) (math.Int, error) {
	amount, ok := math.NewIntFromString(s)
	if !ok {
		return math.Int{}, fmt.Errorf("invalid amount %q", s)
	}
	return amount, nil
}
