package mongo

import (
	"context"

	"internal-wallet-service/internal/core/ports"

	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
)

// HealthCheck implements ports.HealthChecker for MongoDB.
type HealthCheck struct {
	store *Store
}

// NewHealthCheck creates a health checker for the store's client.
func NewHealthCheck(store *Store) *HealthCheck {
	return &HealthCheck{store: store}
}

// Ping checks the primary is reachable.
func (h *HealthCheck) Ping(ctx context.Context) error {
	return h.store.client.Ping(ctx, readpref.Primary())
}

// Name returns the component name reported by /health.
func (h *HealthCheck) Name() string {
	return "mongodb"
}

var _ ports.HealthChecker = (*HealthCheck)(nil)
