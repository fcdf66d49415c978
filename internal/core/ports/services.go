package ports

import (
	"context"
	"time"

	"hedera-asset-gateway/internal/core/domain"

	"github.com/google/uuid"
)

// EncryptionService handles AES-256-GCM encryption/decryption. It protects
// asset class supply keys at rest.
type EncryptionService interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(ciphertext string) (string, error)
}

// HashService handles password hashing (Argon2id).
type HashService interface {
	Hash(password string) (string, error)
	Verify(password string, hash string) (bool, error)
}

// TokenService handles JWT token operations.
type TokenService interface {
	Generate(userID uuid.UUID, username string) (string, time.Time, error)
	// Validate returns apperror.ErrExpiredToken for expired tokens and
	// apperror.ErrInvalidToken for anything else unparsable.
	Validate(tokenString string) (*TokenClaims, error)
}

// TokenClaims holds the parsed JWT claims.
type TokenClaims struct {
	UserID   uuid.UUID
	Username string
}

// --- Service Ports (Business Logic) ---

// AuthService defines authentication business logic.
type AuthService interface {
	Register(ctx context.Context, req RegisterRequest) (*AuthToken, error)
	Login(ctx context.Context, username, password string) (*AuthToken, error)
	// ConnectWallet links an external Hedera account to the user. The link
	// is set once; subsequent calls fail validation.
	ConnectWallet(ctx context.Context, userID uuid.UUID, req WalletConnectRequest) error
}

// RegisterRequest holds validated input for user registration.
type RegisterRequest struct {
	Username string
	Email    string
	Password string
	FullName *string
}

// WalletConnectRequest holds validated input for wallet linking.
type WalletConnectRequest struct {
	AccountID string
	PublicKey string
	Signature string
}

// AuthToken is an issued bearer token with its expiry.
type AuthToken struct {
	Token     string
	ExpiresAt time.Time
}

// ModePolicy decides whether an operation may proceed under the configured
// network mode, and produces cost estimates.
type ModePolicy interface {
	// Evaluate never returns an error: requiring acknowledgement is an
	// expected decision, not a failure.
	Evaluate(kind domain.OperationKind, acknowledgedCost bool) PolicyDecision
	Estimate(kind domain.OperationKind) domain.CostEstimate
	Mode() domain.NetworkMode
}

// PolicyDecision is the outcome of a policy evaluation. When Proceed is
// false, Estimate carries the cost range the caller must acknowledge.
type PolicyDecision struct {
	Proceed  bool
	Estimate *domain.CostEstimate
}

// OperationSerializer guarantees at most one caller executes the protected
// section per signing identity, in FIFO order of arrival.
type OperationSerializer interface {
	// WithExclusive runs fn while holding exclusive access for identityID.
	// It returns ctx.Err() if the context is cancelled while queued; fn's
	// error is returned unchanged. Access is released on every exit path.
	WithExclusive(ctx context.Context, identityID string, fn func() error) error
}

// Orchestrator executes a ledger operation on behalf of a principal.
type Orchestrator interface {
	Execute(ctx context.Context, principal *domain.User, req domain.OperationRequest) (*domain.OperationResult, error)
}

// ReportingService serves read views over local records and the operator
// balance.
type ReportingService interface {
	ListContracts(ctx context.Context, ownerID uuid.UUID) ([]domain.ContractRecord, error)
	ListAssets(ctx context.Context, ownerID uuid.UUID) ([]domain.AssetClassRecord, error)
	ListItems(ctx context.Context, ownerID uuid.UUID) ([]domain.ItemRecord, error)
	ListOperations(ctx context.Context, userID uuid.UUID, limit int) ([]domain.OperationRecord, error)
	Balance(ctx context.Context) (*BalanceSnapshot, error)
}

// AuditService is the append-only audit trail of high-stakes operations.
type AuditService interface {
	Append(ctx context.Context, entry *domain.AuditEntry) error
	ListForUser(ctx context.Context, userID uuid.UUID, limit int) ([]domain.AuditEntry, error)
}
