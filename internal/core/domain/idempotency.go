package domain

import (
	"fmt"

	"github.com/google/uuid"
)

// NormalizeIdempotencyKey validates that key is a UUID and returns its
// canonical lowercase form, so retries that differ only in case collide.
func NormalizeIdempotencyKey(key string) (string, error) {
	id, err := uuid.Parse(key)
	if err != nil {
		return "", fmt.Errorf("idempotency key must be a valid UUID: %w", err)
	}
	return id.String(), nil
}
