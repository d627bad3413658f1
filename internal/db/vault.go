package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/stakepool-labs/staking-pool/internal/db/model"
	"github.com/stakepool-labs/staking-pool/internal/pool"
)

func (db *Database) GetVault(ctx context.Context, account string) (*pool.Vault, error) {
	res := db.collection(model.VaultCollection).
		FindOne(ctx, bson.M{"_id": account})

	var doc model.VaultDocument
	if err := res.Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("vault %q: %w", account, pool.ErrAccountNotRegistered)
		}
		return nil, err
	}

	staked, err := parseAmount(doc.Staked)
	if err != nil {
		return nil, fmt.Errorf("vault %q: %w", account, err)
	}
	return &pool.Vault{Staked: staked}, nil
}

func (db *Database) PutVault(ctx context.Context, account string, vault *pool.Vault) error {
	coll := db.collection(model.VaultCollection)

	res, err := coll.UpdateOne(ctx,
		bson.M{"_id": account},
		bson.M{"$set": bson.M{"staked": vault.Staked.String()}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount > 0 {
		return nil
	}

	seq, err := db.nextVaultSeq(ctx)
	if err != nil {
		return err
	}
	_, err = coll.InsertOne(ctx, model.VaultDocument{
		Account:      account,
		Staked:       vault.Staked.String(),
		Seq:          seq,
		RegisteredAt: time.Now().UTC(),
	})
	return err
}

// nextVaultSeq returns one past the highest sequence number ever assigned.
// Removed vaults leave gaps, so listings stay in registration order even
// after churn.
func (db *Database) nextVaultSeq(ctx context.Context) (uint64, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "seq", Value: -1}})
	res := db.collection(model.VaultCollection).FindOne(ctx, bson.M{}, opts)

	var doc model.VaultDocument
	if err := res.Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return 0, nil
		}
		return 0, err
	}
	return doc.Seq + 1, nil
}

func (db *Database) RemoveVault(ctx context.Context, account string) error {
	res, err := db.collection(model.VaultCollection).
		DeleteOne(ctx, bson.M{"_id": account})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("vault %q: %w", account, pool.ErrAccountNotRegistered)
	}
	return nil
}

func (db *Database) CountVaults(ctx context.Context) (uint64, error) {
	count, err := db.collection(model.VaultCollection).
		CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, err
	}
	return uint64(count), nil
}

func (db *Database) ListAccounts(ctx context.Context, fromIndex, limit uint64) ([]string, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "seq", Value: 1}}).
		SetSkip(int64(fromIndex)).
		SetLimit(int64(limit))

	cursor, err := db.collection(model.VaultCollection).Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var accounts []string
	for cursor.Next(ctx) {
		var doc model.VaultDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		accounts = append(accounts, doc.Account)
	}
	return accounts, cursor.Err()
}
