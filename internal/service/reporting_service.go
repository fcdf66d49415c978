package service

import (
	"context"
	"fmt"
	"time"

	"hedera-asset-gateway/internal/core/domain"
	"hedera-asset-gateway/internal/core/ports"
	"hedera-asset-gateway/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// balanceCacheTTL bounds how stale a served balance snapshot can be. The
// mainnet balance query carries a query payment, so dashboard polling is
// answered from cache within this window.
const balanceCacheTTL = 30 * time.Second

// reportingService implements ports.ReportingService.
type reportingService struct {
	contractRepo ports.ContractRepository
	assetRepo    ports.AssetRepository
	itemRepo     ports.ItemRepository
	opRepo       ports.OperationRepository
	ledger       ports.LedgerClient
	cache        ports.BalanceCache
	log          zerolog.Logger
}

// NewReportingService creates a new reporting service.
func NewReportingService(
	contractRepo ports.ContractRepository,
	assetRepo ports.AssetRepository,
	itemRepo ports.ItemRepository,
	opRepo ports.OperationRepository,
	ledger ports.LedgerClient,
	cache ports.BalanceCache,
	log zerolog.Logger,
) ports.ReportingService {
	return &reportingService{
		contractRepo: contractRepo,
		assetRepo:    assetRepo,
		itemRepo:     itemRepo,
		opRepo:       opRepo,
		ledger:       ledger,
		cache:        cache,
		log:          log,
	}
}

// ListContracts returns the caller's deployed contract records.
func (s *reportingService) ListContracts(ctx context.Context, ownerID uuid.UUID) ([]domain.ContractRecord, error) {
	records, err := s.contractRepo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("list contracts: %w", err))
	}
	return records, nil
}

// ListAssets returns the caller's asset class records.
func (s *reportingService) ListAssets(ctx context.Context, ownerID uuid.UUID) ([]domain.AssetClassRecord, error) {
	records, err := s.assetRepo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("list assets: %w", err))
	}
	return records, nil
}

// ListItems returns the caller's minted item records.
func (s *reportingService) ListItems(ctx context.Context, ownerID uuid.UUID) ([]domain.ItemRecord, error) {
	records, err := s.itemRepo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("list items: %w", err))
	}
	return records, nil
}

// ListOperations returns the caller's operation history, newest first.
func (s *reportingService) ListOperations(ctx context.Context, userID uuid.UUID, limit int) ([]domain.OperationRecord, error) {
	records, err := s.opRepo.ListByUser(ctx, userID, limit)
	if err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("list operations: %w", err))
	}
	return records, nil
}

// Balance returns the operator account balance, served from the cache when
// a fresh enough snapshot exists.
func (s *reportingService) Balance(ctx context.Context) (*ports.BalanceSnapshot, error) {
	cached, err := s.cache.Get(ctx)
	if err != nil {
		s.log.Warn().Err(err).Msg("balance cache read failed, querying ledger")
	}
	if cached != nil {
		return cached, nil
	}

	snapshot, err := s.ledger.Balance(ctx)
	if err != nil {
		return nil, apperror.ErrLedgerUnavailable(fmt.Errorf("balance query: %w", err))
	}

	// Best-effort: a cache write failure only costs the next poll a query.
	if err := s.cache.Set(ctx, snapshot, balanceCacheTTL); err != nil {
		s.log.Warn().Err(err).Msg("failed to cache balance snapshot")
	}

	return snapshot, nil
}
