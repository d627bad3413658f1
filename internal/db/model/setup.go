package model

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/stakepool-labs/staking-pool/internal/config"
)

const setupTimeout = 30 * time.Second

var collections = map[string][]mongo.IndexModel{
	LedgerCollection: nil,
	VaultCollection: {
		{Keys: bson.D{{Key: "seq", Value: 1}}, Options: options.Index().SetUnique(true)},
	},
	PendingTransferCollection: {
		{Keys: bson.D{{Key: "account", Value: 1}}},
		{Keys: bson.D{{Key: "created_at", Value: 1}}},
	},
}

// Setup creates the collections and indexes used by the pool store.
func Setup(ctx context.Context, cfg *config.DbConfig) error {
	credential := options.Credential{
		Username: cfg.Username,
		Password: cfg.Password,
	}
	clientOps := options.Client().ApplyURI(cfg.Address).SetAuth(credential)
	client, err := mongo.Connect(ctx, clientOps)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, setupTimeout)
	defer cancel()

	database := client.Database(cfg.DbName)
	for name, indexes := range collections {
		if err := createCollection(ctx, database, name); err != nil {
			return err
		}
		if len(indexes) == 0 {
			continue
		}
		if _, err := database.Collection(name).Indexes().CreateMany(ctx, indexes); err != nil {
			return fmt.Errorf("failed to create indexes on %s: %w", name, err)
		}
	}

	return client.Disconnect(ctx)
}

func createCollection(ctx context.Context, database *mongo.Database, name string) error {
	err := database.CreateCollection(ctx, name)
	if err != nil {
		var cmdErr mongo.CommandError
		// code 48 is NamespaceExists: the collection was created by an
		// earlier run
		if errors.As(err, &cmdErr) && cmdErr.Code == 48 {
			return nil
		}
		return fmt.Errorf("failed to create collection %s: %w", name, err)
	}
	return nil
}
