package integration

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"hedera-asset-gateway/internal/core/domain"
	"hedera-asset-gateway/internal/core/ports"

	"github.com/google/uuid"
)

// --- In-Memory User Repo ---

type inMemoryUserRepo struct {
	mu    sync.RWMutex
	users map[uuid.UUID]*domain.User
}

func newInMemoryUserRepo() *inMemoryUserRepo {
	return &inMemoryUserRepo{users: make(map[uuid.UUID]*domain.User)}
}

func (r *inMemoryUserRepo) Create(ctx context.Context, u *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Username == u.Username || existing.Email == u.Email {
			return fmt.Errorf("user already exists")
		}
	}
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *inMemoryUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (r *inMemoryUserRepo) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *inMemoryUserRepo) GetByUsernameOrEmail(ctx context.Context, username, email string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if u.Username == username || u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *inMemoryUserRepo) ConnectWallet(ctx context.Context, userID uuid.UUID, accountID, publicKey string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok {
		return fmt.Errorf("user not found")
	}
	u.WalletAccountID = &accountID
	u.WalletPublicKey = &publicKey
	u.WalletConnectedAt = &at
	return nil
}

// --- In-Memory Contract Repo ---

type inMemoryContractRepo struct {
	mu        sync.RWMutex
	contracts []domain.ContractRecord
}

func newInMemoryContractRepo() *inMemoryContractRepo {
	return &inMemoryContractRepo{}
}

func (r *inMemoryContractRepo) Create(ctx context.Context, c *domain.ContractRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.contracts = append(r.contracts, *c)
	return nil
}

func (r *inMemoryContractRepo) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]domain.ContractRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []domain.ContractRecord
	for _, c := range r.contracts {
		if c.OwnerID == ownerID {
			out = append(out, c)
		}
	}
	return out, nil
}

// --- In-Memory Asset Repo ---

type inMemoryAssetRepo struct {
	mu     sync.RWMutex
	assets []domain.AssetClassRecord
}

func newInMemoryAssetRepo() *inMemoryAssetRepo {
	return &inMemoryAssetRepo{}
}

func (r *inMemoryAssetRepo) Create(ctx context.Context, a *domain.AssetClassRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.assets = append(r.assets, *a)
	return nil
}

func (r *inMemoryAssetRepo) GetByTokenID(ctx context.Context, tokenID string) (*domain.AssetClassRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for i := range r.assets {
		if r.assets[i].TokenID == tokenID {
			cp := r.assets[i]
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *inMemoryAssetRepo) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]domain.AssetClassRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []domain.AssetClassRecord
	for _, a := range r.assets {
		if a.OwnerID == ownerID {
			out = append(out, a)
		}
	}
	return out, nil
}

// --- In-Memory Item Repo ---

type inMemoryItemRepo struct {
	mu    sync.RWMutex
	items []domain.ItemRecord
}

func newInMemoryItemRepo() *inMemoryItemRepo {
	return &inMemoryItemRepo{}
}

func (r *inMemoryItemRepo) Create(ctx context.Context, it *domain.ItemRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, *it)
	return nil
}

func (r *inMemoryItemRepo) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]domain.ItemRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []domain.ItemRecord
	for _, it := range r.items {
		if it.OwnerID == ownerID {
			out = append(out, it)
		}
	}
	return out, nil
}

// --- In-Memory Operation Repo ---

type inMemoryOperationRepo struct {
	mu  sync.RWMutex
	ops []domain.OperationRecord
}

func newInMemoryOperationRepo() *inMemoryOperationRepo {
	return &inMemoryOperationRepo{}
}

func (r *inMemoryOperationRepo) Create(ctx context.Context, op *domain.OperationRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ops = append(r.ops, *op)
	return nil
}

func (r *inMemoryOperationRepo) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]domain.OperationRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []domain.OperationRecord
	for _, op := range r.ops {
		if op.UserID == userID {
			out = append(out, op)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// --- In-Memory Audit Repo ---

type inMemoryAuditRepo struct {
	mu      sync.RWMutex
	entries []domain.AuditEntry
}

func newInMemoryAuditRepo() *inMemoryAuditRepo {
	return &inMemoryAuditRepo{}
}

func (r *inMemoryAuditRepo) Append(ctx context.Context, e *domain.AuditEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, *e)
	return nil
}

func (r *inMemoryAuditRepo) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]domain.AuditEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []domain.AuditEntry
	for _, e := range r.entries {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *inMemoryAuditRepo) count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// --- Stub Ledger Client ---

// stubLedger is a scripted ports.LedgerClient. It counts submissions,
// tracks how many run concurrently, and fabricates receipts per sub-op
// kind so the orchestrator's materialization paths run for real.
type stubLedger struct {
	mu        sync.Mutex
	calls     int
	active    int
	maxActive int
	order     []domain.SubOpKind
	delay     time.Duration

	// transferAmounts records token transfer amounts in submission order.
	transferAmounts []int64

	nextToken int
	nextSer   int64

	// failWith, when set, is returned for every submission.
	failWith error
}

func newStubLedger() *stubLedger {
	return &stubLedger{nextToken: 4000}
}

func (s *stubLedger) Submit(ctx context.Context, sub domain.SubOperation, prior []domain.Receipt) (*domain.Receipt, error) {
	s.mu.Lock()
	s.calls++
	s.active++
	if s.active > s.maxActive {
		s.maxActive = s.active
	}
	s.order = append(s.order, sub.SubOpKind())
	if tt, ok := sub.(domain.TokenTransfer); ok {
		s.transferAmounts = append(s.transferAmounts, tt.Amount)
	}
	delay := s.delay
	failWith := s.failWith
	s.nextToken++
	tokenNum := s.nextToken
	token := fmt.Sprintf("0.0.%d", tokenNum)
	s.nextSer++
	serial := s.nextSer
	s.mu.Unlock()

	if delay > 0 {
		time.Sleep(delay)
	}

	defer func() {
		s.mu.Lock()
		s.active--
		s.mu.Unlock()
	}()

	if failWith != nil {
		return nil, failWith
	}

	rcpt := &domain.Receipt{
		SubOp:         sub.SubOpKind(),
		TransactionID: fmt.Sprintf("0.0.1001@%d.%d", time.Now().Unix(), serial),
		Status:        "SUCCESS",
	}
	switch sub.SubOpKind() {
	case domain.SubOpFileCreate:
		rcpt.FileID = token
	case domain.SubOpContractCreate:
		rcpt.ContractID = token
		rcpt.ContractAddress = fmt.Sprintf("%040d", tokenNum)
	case domain.SubOpTokenCreate:
		rcpt.TokenID = token
		rcpt.SupplyKey = "stub-supply-key-" + token
	case domain.SubOpTokenMint:
		rcpt.SerialNumbers = []int64{serial}
	}
	return rcpt, nil
}

func (s *stubLedger) Balance(ctx context.Context) (*ports.BalanceSnapshot, error) {
	return &ports.BalanceSnapshot{
		AccountID:   s.OperatorAccount(),
		Hbars:       "100 ℏ",
		Network:     domain.NetworkModeMainnet,
		RetrievedAt: time.Now().UTC(),
	}, nil
}

func (s *stubLedger) OperatorAccount() string {
	return "0.0.1001"
}

func (s *stubLedger) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}
