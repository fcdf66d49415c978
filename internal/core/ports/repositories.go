package ports

import (
	"context"
	"time"

	"hedera-asset-gateway/internal/core/domain"

	"github.com/google/uuid"
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	// GetByUsernameOrEmail is used for duplicate checks at registration.
	GetByUsernameOrEmail(ctx context.Context, username, email string) (*domain.User, error)
	// ConnectWallet sets the wallet link fields. The link is written once.
	ConnectWallet(ctx context.Context, userID uuid.UUID, accountID, publicKey string, at time.Time) error
}

// ContractRepository defines persistence for deployed contract records.
type ContractRepository interface {
	Create(ctx context.Context, record *domain.ContractRecord) error
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]domain.ContractRecord, error)
}

// AssetRepository defines persistence for asset class records and answers
// the ownership queries gating transfer and mint. Lookups are always fresh
// reads — ownership is security-relevant and must never be stale.
type AssetRepository interface {
	Create(ctx context.Context, record *domain.AssetClassRecord) error
	// GetByTokenID returns nil, nil when no record exists.
	GetByTokenID(ctx context.Context, tokenID string) (*domain.AssetClassRecord, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]domain.AssetClassRecord, error)
}

// ItemRepository defines persistence for minted NFT item records.
type ItemRepository interface {
	Create(ctx context.Context, record *domain.ItemRecord) error
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]domain.ItemRecord, error)
}

// OperationRepository defines persistence for the operation history.
type OperationRepository interface {
	Create(ctx context.Context, record *domain.OperationRecord) error
	// ListByUser returns records ordered newest-first.
	ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]domain.OperationRecord, error)
}

// AuditRepository defines append-only persistence for audit entries.
// Entries are never updated or deleted through this subsystem.
type AuditRepository interface {
	Append(ctx context.Context, entry *domain.AuditEntry) error
	// ListByUser returns entries ordered newest-first.
	ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]domain.AuditEntry, error)
}
