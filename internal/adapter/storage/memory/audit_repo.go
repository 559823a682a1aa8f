package memory

import (
	"context"

	"internal-wallet-service/internal/core/domain"
	"internal-wallet-service/internal/core/ports"
)

// AuditRepo implements ports.AuditRepository.
type AuditRepo struct {
	store *Store
}

// NewAuditRepo creates a memory-backed AuditRepository.
func NewAuditRepo(store *Store) *AuditRepo {
	return &AuditRepo{store: store}
}

// Create appends an audit log.
func (r *AuditRepo) Create(_ context.Context, log *domain.AuditLog) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	r.store.audits = append(r.store.audits, *log)
	return nil
}

var _ ports.AuditRepository = (*AuditRepo)(nil)
