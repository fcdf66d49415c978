package postgres

import (
	"context"
	"fmt"

	"hedera-asset-gateway/internal/core/domain"

	"github.com/google/uuid"
)

// ContractRepo implements ports.ContractRepository.
type ContractRepo struct {
	pool Pool
}

// NewContractRepo creates a new ContractRepo.
func NewContractRepo(pool Pool) *ContractRepo {
	return &ContractRepo{pool: pool}
}

// Create inserts a deployed contract record.
func (r *ContractRepo) Create(ctx context.Context, c *domain.ContractRecord) error {
	query := `INSERT INTO contracts (id, owner_id, name, contract_id, contract_address,
		bytecode_file_id, ledger_tx_id, network, status, pending_reconciliation, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err := r.pool.Exec(ctx, query,
		c.ID, c.OwnerID, c.Name, c.ContractID, c.ContractAddress,
		c.BytecodeFileID, c.LedgerTxID, c.Mode, c.Status, c.PendingReconciliation, c.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert contract: %w", err)
	}
	return nil
}

// ListByOwner returns the owner's contract records, newest first.
func (r *ContractRepo) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]domain.ContractRecord, error) {
	query := `SELECT id, owner_id, name, contract_id, contract_address, bytecode_file_id,
		ledger_tx_id, network, status, pending_reconciliation, created_at
		FROM contracts WHERE owner_id = $1 ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list contracts: %w", err)
	}
	defer rows.Close()

	var records []domain.ContractRecord
	for rows.Next() {
		var c domain.ContractRecord
		if err := rows.Scan(
			&c.ID, &c.OwnerID, &c.Name, &c.ContractID, &c.ContractAddress, &c.BytecodeFileID,
			&c.LedgerTxID, &c.Mode, &c.Status, &c.PendingReconciliation, &c.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan contract: %w", err)
		}
		records = append(records, c)
	}
	return records, rows.Err()
}
