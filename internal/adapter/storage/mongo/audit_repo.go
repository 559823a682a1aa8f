package mongo

import (
	"context"
	"fmt"

	"internal-wallet-service/internal/core/domain"
	"internal-wallet-service/internal/core/ports"

	"go.mongodb.org/mongo-driver/v2/mongo"
)

type AuditRepo struct {
	col *mongo.Collection
}

// NewAuditRepo creates an audit log repository on the audit_logs collection.
func NewAuditRepo(store *Store) *AuditRepo {
	return &AuditRepo{col: store.db.Collection(colAuditLogs)}
}

// Create inserts an audit log entry.
func (r *AuditRepo) Create(ctx context.Context, log *domain.AuditLog) error {
	if _, err := r.col.InsertOne(ctx, toAuditModel(log)); err != nil {
		return fmt.Errorf("insert audit log: %w", err)
	}
	return nil
}

var _ ports.AuditRepository = (*AuditRepo)(nil)
