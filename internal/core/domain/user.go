package domain

import (
	"time"

	"github.com/google/uuid"
)

// User represents a registered platform user (the calling principal).
// A user may hold at most one linked external Hedera wallet; the link is
// set once via wallet-connect and never changed by this subsystem.
type User struct {
	ID           uuid.UUID `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Never expose
	FullName     *string   `json:"full_name,omitempty"`
	Active       bool      `json:"active"`

	WalletAccountID   *string    `json:"wallet_account_id,omitempty"`
	WalletPublicKey   *string    `json:"-"`
	WalletConnectedAt *time.Time `json:"wallet_connected_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// WalletConnected reports whether the user has linked an external wallet.
func (u *User) WalletConnected() bool {
	return u.WalletAccountID != nil && *u.WalletAccountID != ""
}
