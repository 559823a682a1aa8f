// Package mongo implements the ledger repositories on MongoDB. Multi-document
// transactions need a replica set; on a standalone server the Transactor
// reports ports.ErrAtomicUnitsUnsupported and the engine runs in fallback mode.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"internal-wallet-service/config"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
)

// Collection name constants.
const (
	colUsers        = "users"
	colAssetTypes   = "asset_types"
	colWallets      = "wallets"
	colTransactions = "transactions"
	colAuditLogs    = "audit_logs"
)

// Store holds the client and database shared by the repositories.
type Store struct {
	client *mongo.Client
	db     *mongo.Database
}

// Connect opens a client, verifies connectivity and returns a Store.
func Connect(ctx context.Context, cfg config.MongoConfig, log zerolog.Logger) (*Store, error) {
	opts := options.Client().ApplyURI(cfg.URI)
	if cfg.Timeout > 0 {
		opts.SetTimeout(cfg.Timeout)
	}

	client, err := mongo.Connect(opts)
	if err != nil {
		return nil, fmt.Errorf("connecting to mongodb: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.WithoutCancel(ctx))
		return nil, fmt.Errorf("pinging mongodb: %w", err)
	}

	log.Info().
		Str("database", cfg.Database).
		Msg("MongoDB connection established")

	return NewStore(client, cfg.Database), nil
}

// NewStore wraps an existing client.
func NewStore(client *mongo.Client, database string) *Store {
	return &Store{client: client, db: client.Database(database)}
}

// Client returns the underlying driver client.
func (s *Store) Client() *mongo.Client { return s.client }

// Database returns the ledger database.
func (s *Store) Database() *mongo.Database { return s.db }

// Migrate creates the indexes the repositories rely on for uniqueness.
func (s *Store) Migrate(ctx context.Context) error {
	for col, models := range migrationIndexes() {
		if _, err := s.db.Collection(col).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("migrate %s indexes: %w", col, err)
		}
	}
	return nil
}

// Close disconnects the client.
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func migrationIndexes() map[string][]mongo.IndexModel {
	return map[string][]mongo.IndexModel{
		colUsers: {
			{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "created_at", Value: 1}}},
		},
		colAssetTypes: {
			{Keys: bson.D{{Key: "name", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		colWallets: {
			{
				Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "asset_type_id", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
		},
		colTransactions: {
			{Keys: bson.D{{Key: "idempotency_key", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "wallet_id", Value: 1}, {Key: "created_at", Value: -1}}},
		},
		colAuditLogs: {
			{Keys: bson.D{{Key: "created_at", Value: -1}}},
		},
	}
}

func now() time.Time {
	return time.Now().UTC()
}

func isNoDocuments(err error) bool {
	return errors.Is(err, mongo.ErrNoDocuments)
}
