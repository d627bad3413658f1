package db

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/stakepool-labs/staking-pool/internal/db/model"
	"github.com/stakepool-labs/staking-pool/internal/pool"
)

func (db *Database) SavePendingTransfer(ctx context.Context, req *pool.TransferRequest) error {
	doc := model.PendingTransferDocument{
		ID:        req.ID,
		Account:   req.Account,
		Amount:    req.Amount.String(),
		Kind:      req.Kind.String(),
		Memo:      req.Memo,
		CreatedAt: req.CreatedAt,
	}
	_, err := db.collection(model.PendingTransferCollection).InsertOne(ctx, doc)
	return err
}

func (db *Database) GetPendingTransfer(ctx context.Context, id string) (*pool.TransferRequest, error) {
	res := db.collection(model.PendingTransferCollection).
		FindOne(ctx, bson.M{"_id": id})

	var doc model.PendingTransferDocument
	if err := res.Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("transfer %q: %w", id, pool.ErrTransferNotFound)
		}
		return nil, err
	}

	amount, err := parseAmount(doc.Amount)
	if err != nil {
		return nil, fmt.Errorf("transfer %q: %w", id, err)
	}
	return &pool.TransferRequest{
		ID:        doc.ID,
		Account:   doc.Account,
		Amount:    amount,
		Kind:      pool.TransferKind(doc.Kind),
		Memo:      doc.Memo,
		CreatedAt: doc.CreatedAt,
	}, nil
}

func (db *Database) DeletePendingTransfer(ctx context.Context, id string) error {
	res, err := db.collection(model.PendingTransferCollection).
		DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("transfer %q: %w", id, pool.ErrTransferNotFound)
	}
	return nil
}

func (db *Database) CountPendingTransfers(ctx context.Context) (uint64, error) {
	count, err := db.collection(model.PendingTransferCollection).
		CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, err
	}
	return uint64(count), nil
}
