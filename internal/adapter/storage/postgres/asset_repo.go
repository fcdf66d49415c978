package postgres

import (
	"context"
	"errors"
	"fmt"

	"hedera-asset-gateway/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// AssetRepo implements ports.AssetRepository.
type AssetRepo struct {
	pool Pool
}

// NewAssetRepo creates a new AssetRepo.
func NewAssetRepo(pool Pool) *AssetRepo {
	return &AssetRepo{pool: pool}
}

const assetColumns = `id, owner_id, name, symbol, token_id, kind, decimals, initial_supply,
	supply_key_enc, ledger_tx_id, network, status, pending_reconciliation, created_at`

// Create inserts an asset class record.
func (r *AssetRepo) Create(ctx context.Context, a *domain.AssetClassRecord) error {
	query := `INSERT INTO asset_classes (id, owner_id, name, symbol, token_id, kind, decimals,
		initial_supply, supply_key_enc, ledger_tx_id, network, status, pending_reconciliation, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`

	_, err := r.pool.Exec(ctx, query,
		a.ID, a.OwnerID, a.Name, a.Symbol, a.TokenID, a.Kind, a.Decimals,
		a.InitialSupply, a.SupplyKeyEnc, a.LedgerTxID, a.Mode, a.Status,
		a.PendingReconciliation, a.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert asset class: %w", err)
	}
	return nil
}

// GetByTokenID fetches an asset class by its ledger token id. Returns
// nil, nil when no record exists; the query always hits the database so
// ownership decisions are never made on stale data.
func (r *AssetRepo) GetByTokenID(ctx context.Context, tokenID string) (*domain.AssetClassRecord, error) {
	query := `SELECT ` + assetColumns + ` FROM asset_classes WHERE token_id = $1`

	a := &domain.AssetClassRecord{}
	err := r.pool.QueryRow(ctx, query, tokenID).Scan(
		&a.ID, &a.OwnerID, &a.Name, &a.Symbol, &a.TokenID, &a.Kind, &a.Decimals,
		&a.InitialSupply, &a.SupplyKeyEnc, &a.LedgerTxID, &a.Mode, &a.Status,
		&a.PendingReconciliation, &a.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get asset class by token id: %w", err)
	}
	return a, nil
}

// ListByOwner returns the owner's asset class records, newest first.
func (r *AssetRepo) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]domain.AssetClassRecord, error) {
	query := `SELECT ` + assetColumns + ` FROM asset_classes WHERE owner_id = $1 ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list asset classes: %w", err)
	}
	defer rows.Close()

	var records []domain.AssetClassRecord
	for rows.Next() {
		var a domain.AssetClassRecord
		if err := rows.Scan(
			&a.ID, &a.OwnerID, &a.Name, &a.Symbol, &a.TokenID, &a.Kind, &a.Decimals,
			&a.InitialSupply, &a.SupplyKeyEnc, &a.LedgerTxID, &a.Mode, &a.Status,
			&a.PendingReconciliation, &a.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan asset class: %w", err)
		}
		records = append(records, a)
	}
	return records, rows.Err()
}
