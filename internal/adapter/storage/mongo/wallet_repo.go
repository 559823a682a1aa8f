package mongo

import (
	"context"
	"fmt"
	"time"

	"internal-wallet-service/internal/core/domain"
	"internal-wallet-service/internal/core/ports"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// WalletRepo implements ports.WalletRepository. Balance changes are single
// FindOneAndUpdate calls with $inc, guarded by a $gte filter for debits.
type WalletRepo struct {
	col *mongo.Collection
}

// NewWalletRepo creates a wallet repository on the wallets collection.
func NewWalletRepo(store *Store) *WalletRepo {
	return &WalletRepo{col: store.db.Collection(colWallets)}
}

// ApplyDelta adds delta to the owner's balance in one FindOneAndUpdate.
// Debits only match a wallet whose balance covers them, and credits with
// allowCreate upsert a missing wallet. A nil wallet means nothing matched.
// A duplicate key from a racing first credit is retried once as a plain
// update.
func (r *WalletRepo) ApplyDelta(ctx context.Context, userID, assetTypeID uuid.UUID, delta decimal.Decimal, allowCreate bool) (*domain.Wallet, error) {
	filter, err := walletDeltaFilter(userID, assetTypeID, delta)
	if err != nil {
		return nil, err
	}
	upsert := allowCreate && !delta.IsNegative()
	update, err := walletDeltaUpdate(delta, now(), upsert)
	if err != nil {
		return nil, err
	}

	w, err := r.findAndUpdate(ctx, filter, update, upsert)
	if err != nil && upsert && mongo.IsDuplicateKeyError(err) {
		// A concurrent upsert created the wallet first; apply to it instead.
		w, err = r.findAndUpdate(ctx, filter, update, false)
	}
	if err != nil {
		return nil, fmt.Errorf("apply wallet delta: %w", err)
	}
	return w, nil
}

func (r *WalletRepo) findAndUpdate(ctx context.Context, filter, update bson.M, upsert bool) (*domain.Wallet, error) {
	opts := options.FindOneAndUpdate().
		SetUpsert(upsert).
		SetReturnDocument(options.After)

	var m walletModel
	if err := r.col.FindOneAndUpdate(ctx, filter, update, opts).Decode(&m); err != nil {
		if isNoDocuments(err) {
			return nil, nil
		}
		return nil, err
	}
	return fromWalletModel(&m)
}

// GetByOwner returns the wallet for a user and asset type, or nil when none
// exists.
func (r *WalletRepo) GetByOwner(ctx context.Context, userID, assetTypeID uuid.UUID) (*domain.Wallet, error) {
	var m walletModel
	err := r.col.FindOne(ctx, ownerFilter(userID, assetTypeID)).Decode(&m)
	if err != nil {
		if isNoDocuments(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get wallet: %w", err)
	}
	return fromWalletModel(&m)
}

// ListByUser returns the user's wallets in creation order.
func (r *WalletRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Wallet, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := r.col.Find(ctx, bson.M{"user_id": userID.String()}, opts)
	if err != nil {
		return nil, fmt.Errorf("list wallets: %w", err)
	}
	var models []walletModel
	if err := cur.All(ctx, &models); err != nil {
		return nil, fmt.Errorf("decode wallets: %w", err)
	}

	wallets := make([]domain.Wallet, 0, len(models))
	for i := range models {
		w, err := fromWalletModel(&models[i])
		if err != nil {
			return nil, err
		}
		wallets = append(wallets, *w)
	}
	return wallets, nil
}

// EnsureZero creates a zero-balance wallet unless one already exists.
func (r *WalletRepo) EnsureZero(ctx context.Context, userID, assetTypeID uuid.UUID) error {
	zero, err := toDecimal128(decimal.Zero)
	if err != nil {
		return err
	}
	ts := now()
	update := bson.M{"$setOnInsert": bson.M{
		"_id":        uuid.New().String(),
		"balance":    zero,
		"created_at": ts,
		"updated_at": ts,
	}}
	_, err = r.col.UpdateOne(ctx, ownerFilter(userID, assetTypeID), update, options.UpdateOne().SetUpsert(true))
	if err != nil && !mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("ensure wallet: %w", err)
	}
	return nil
}

func ownerFilter(userID, assetTypeID uuid.UUID) bson.M {
	return bson.M{"user_id": userID.String(), "asset_type_id": assetTypeID.String()}
}

// walletDeltaFilter matches the owner's wallet and, for a debit, only when
// the current balance covers it.
func walletDeltaFilter(userID, assetTypeID uuid.UUID, delta decimal.Decimal) (bson.M, error) {
	filter := ownerFilter(userID, assetTypeID)
	if delta.IsNegative() {
		floor, err := toDecimal128(delta.Neg())
		if err != nil {
			return nil, err
		}
		filter["balance"] = bson.M{"$gte": floor}
	}
	return filter, nil
}

// walletDeltaUpdate increments the balance. On upsert the owner fields come
// from the equality filter, so only the id and creation time are set here.
func walletDeltaUpdate(delta decimal.Decimal, ts time.Time, upsert bool) (bson.M, error) {
	inc, err := toDecimal128(delta)
	if err != nil {
		return nil, err
	}
	update := bson.M{
		"$inc": bson.M{"balance": inc},
		"$set": bson.M{"updated_at": ts},
	}
	if upsert {
		update["$setOnInsert"] = bson.M{
			"_id":        uuid.New().String(),
			"created_at": ts,
		}
	}
	return update, nil
}

var _ ports.WalletRepository = (*WalletRepo)(nil)
