package postgres

import (
	"context"
	"fmt"

	"hedera-asset-gateway/internal/core/domain"

	"github.com/google/uuid"
)

// ItemRepo implements ports.ItemRepository.
type ItemRepo struct {
	pool Pool
}

// NewItemRepo creates a new ItemRepo.
func NewItemRepo(pool Pool) *ItemRepo {
	return &ItemRepo{pool: pool}
}

// Create inserts a minted item record.
func (r *ItemRepo) Create(ctx context.Context, it *domain.ItemRecord) error {
	query := `INSERT INTO items (id, owner_id, token_id, serial_number, metadata,
		ledger_tx_id, network, pending_reconciliation, minted_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := r.pool.Exec(ctx, query,
		it.ID, it.OwnerID, it.TokenID, it.SerialNumber, it.Metadata,
		it.LedgerTxID, it.Mode, it.PendingReconciliation, it.MintedAt,
	)
	if err != nil {
		return fmt.Errorf("insert item: %w", err)
	}
	return nil
}

// ListByOwner returns the owner's minted items, newest first.
func (r *ItemRepo) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]domain.ItemRecord, error) {
	query := `SELECT id, owner_id, token_id, serial_number, metadata, ledger_tx_id,
		network, pending_reconciliation, minted_at
		FROM items WHERE owner_id = $1 ORDER BY minted_at DESC`

	rows, err := r.pool.Query(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()

	var records []domain.ItemRecord
	for rows.Next() {
		var it domain.ItemRecord
		if err := rows.Scan(
			&it.ID, &it.OwnerID, &it.TokenID, &it.SerialNumber, &it.Metadata,
			&it.LedgerTxID, &it.Mode, &it.PendingReconciliation, &it.MintedAt,
		); err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		records = append(records, it)
	}
	return records, rows.Err()
}
