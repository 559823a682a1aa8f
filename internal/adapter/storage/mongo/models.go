package mongo

import (
	"fmt"
	"time"

	"internal-wallet-service/internal/core/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/v2/bson"
)

type userModel struct {
	ID        string    `bson:"_id"`
	Username  string    `bson:"username"`
	CreatedAt time.Time `bson:"created_at"`
}

type assetTypeModel struct {
	ID        string    `bson:"_id"`
	Name      string    `bson:"name"`
	CreatedAt time.Time `bson:"created_at"`
}

type walletModel struct {
	ID          string          `bson:"_id"`
	UserID      string          `bson:"user_id"`
	AssetTypeID string          `bson:"asset_type_id"`
	Balance     bson.Decimal128 `bson:"balance"`
	CreatedAt   time.Time       `bson:"created_at"`
	UpdatedAt   time.Time       `bson:"updated_at"`
}

type transactionModel struct {
	ID             string          `bson:"_id"`
	WalletID       string          `bson:"wallet_id"`
	Amount         bson.Decimal128 `bson:"amount"`
	Kind           string          `bson:"kind"`
	Description    string          `bson:"description"`
	IdempotencyKey string          `bson:"idempotency_key"`
	BalanceAfter   bson.Decimal128 `bson:"balance_after"`
	Mode           string          `bson:"mode"`
	CreatedAt      time.Time       `bson:"created_at"`
}

type auditModel struct {
	ID           string    `bson:"_id"`
	UserID       *string   `bson:"user_id,omitempty"`
	Action       string    `bson:"action"`
	ResourceType string    `bson:"resource_type"`
	ResourceID   string    `bson:"resource_id,omitempty"`
	Details      string    `bson:"details,omitempty"`
	IPAddress    string    `bson:"ip_address"`
	CreatedAt    time.Time `bson:"created_at"`
}

// toDecimal128 fails with domain.ErrAmountPrecision when d does not fit the
// 34 significant digits of a Decimal128.
func toDecimal128(d decimal.Decimal) (bson.Decimal128, error) {
	v, err := bson.ParseDecimal128(d.String())
	if err != nil {
		return bson.Decimal128{}, fmt.Errorf("%w: convert %s to decimal128: %v", domain.ErrAmountPrecision, d, err)
	}
	return v, nil
}

func fromDecimal128(v bson.Decimal128) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(v.String())
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse decimal128 %s: %w", v, err)
	}
	return d, nil
}

func toUserModel(u *domain.User) *userModel {
	return &userModel{ID: u.ID.String(), Username: u.Username, CreatedAt: u.CreatedAt}
}

func fromUserModel(m *userModel) (*domain.User, error) {
	id, err := uuid.Parse(m.ID)
	if err != nil {
		return nil, fmt.Errorf("parse user id: %w", err)
	}
	return &domain.User{ID: id, Username: m.Username, CreatedAt: m.CreatedAt}, nil
}

func toAssetTypeModel(a *domain.AssetType) *assetTypeModel {
	return &assetTypeModel{ID: a.ID.String(), Name: a.Name, CreatedAt: a.CreatedAt}
}

func fromAssetTypeModel(m *assetTypeModel) (*domain.AssetType, error) {
	id, err := uuid.Parse(m.ID)
	if err != nil {
		return nil, fmt.Errorf("parse asset type id: %w", err)
	}
	return &domain.AssetType{ID: id, Name: m.Name, CreatedAt: m.CreatedAt}, nil
}

func fromWalletModel(m *walletModel) (*domain.Wallet, error) {
	id, err := uuid.Parse(m.ID)
	if err != nil {
		return nil, fmt.Errorf("parse wallet id: %w", err)
	}
	userID, err := uuid.Parse(m.UserID)
	if err != nil {
		return nil, fmt.Errorf("parse wallet user id: %w", err)
	}
	assetID, err := uuid.Parse(m.AssetTypeID)
	if err != nil {
		return nil, fmt.Errorf("parse wallet asset type id: %w", err)
	}
	balance, err := fromDecimal128(m.Balance)
	if err != nil {
		return nil, err
	}
	return &domain.Wallet{
		ID:          id,
		UserID:      userID,
		AssetTypeID: assetID,
		Balance:     balance,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}, nil
}

func toTransactionModel(t *domain.Transaction) (*transactionModel, error) {
	amount, err := toDecimal128(t.Amount)
	if err != nil {
		return nil, err
	}
	balanceAfter, err := toDecimal128(t.BalanceAfter)
	if err != nil {
		return nil, err
	}
	return &transactionModel{
		ID:             t.ID.String(),
		WalletID:       t.WalletID.String(),
		Amount:         amount,
		Kind:           string(t.Kind),
		Description:    t.Description,
		IdempotencyKey: t.IdempotencyKey,
		BalanceAfter:   balanceAfter,
		Mode:           string(t.Mode),
		CreatedAt:      t.CreatedAt,
	}, nil
}

func fromTransactionModel(m *transactionModel) (*domain.Transaction, error) {
	id, err := uuid.Parse(m.ID)
	if err != nil {
		return nil, fmt.Errorf("parse transaction id: %w", err)
	}
	walletID, err := uuid.Parse(m.WalletID)
	if err != nil {
		return nil, fmt.Errorf("parse transaction wallet id: %w", err)
	}
	amount, err := fromDecimal128(m.Amount)
	if err != nil {
		return nil, err
	}
	balanceAfter, err := fromDecimal128(m.BalanceAfter)
	if err != nil {
		return nil, err
	}
	return &domain.Transaction{
		ID:             id,
		WalletID:       walletID,
		Amount:         amount,
		Kind:           domain.TransactionKind(m.Kind),
		Description:    m.Description,
		IdempotencyKey: m.IdempotencyKey,
		BalanceAfter:   balanceAfter,
		Mode:           domain.AtomicityMode(m.Mode),
		CreatedAt:      m.CreatedAt,
	}, nil
}

func toAuditModel(l *domain.AuditLog) *auditModel {
	m := &auditModel{
		ID:           l.ID.String(),
		Action:       string(l.Action),
		ResourceType: l.ResourceType,
		ResourceID:   l.ResourceID,
		Details:      l.Details,
		IPAddress:    l.IPAddress,
		CreatedAt:    l.CreatedAt,
	}
	if l.UserID != nil {
		s := l.UserID.String()
		m.UserID = &s
	}
	return m
}
