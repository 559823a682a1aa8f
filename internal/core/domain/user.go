package domain

import (
	"time"

	"github.com/google/uuid"
)

// User is a ledger account holder identified by a unique handle.
type User struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
}

// AssetType is a named fungible unit such as "Gold Coins".
// Names are unique and matched case-sensitively.
type AssetType struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}
