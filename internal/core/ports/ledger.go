package ports

import (
	"context"
	"time"

	"hedera-asset-gateway/internal/core/domain"
)

// LedgerClient is the narrow capability used to execute ledger
// transactions on behalf of the shared signing identity. The real
// implementation talks to the Hedera network.
type LedgerClient interface {
	// Submit drives one sub-operation through the
	// build→freeze→sign→submit→confirm pipeline. prior holds the receipts
	// of sub-operations that already completed within the same
	// orchestration, so descriptors can reference earlier artifacts (e.g.
	// a contract creation resolving its bytecode file id).
	// Failures are returned as *domain.LedgerError tagged with the stage
	// reached.
	Submit(ctx context.Context, sub domain.SubOperation, prior []domain.Receipt) (*domain.Receipt, error)

	// Balance queries the operator account balance. On mainnet this query
	// carries a query payment.
	Balance(ctx context.Context) (*BalanceSnapshot, error)

	// OperatorAccount returns the signing identity's account id string;
	// it keys the operation serializer.
	OperatorAccount() string
}

// BalanceSnapshot is a point-in-time view of the operator account.
type BalanceSnapshot struct {
	AccountID   string             `json:"account_id"`
	Hbars       string             `json:"hbar_balance"`
	Network     domain.NetworkMode `json:"network"`
	RetrievedAt time.Time          `json:"retrieved_at"`
}

// BalanceCache is a short-lived cache for balance snapshots, shielding the
// paid mainnet balance query from repeated dashboard polling.
type BalanceCache interface {
	// Get returns nil, nil on a cache miss.
	Get(ctx context.Context) (*BalanceSnapshot, error)
	Set(ctx context.Context, snapshot *BalanceSnapshot, ttl time.Duration) error
}
