package postgres

import (
	"context"
	"fmt"

	"hedera-asset-gateway/internal/core/domain"

	"github.com/google/uuid"
)

// OperationRepo implements ports.OperationRepository.
type OperationRepo struct {
	pool Pool
}

// NewOperationRepo creates a new OperationRepo.
func NewOperationRepo(pool Pool) *OperationRepo {
	return &OperationRepo{pool: pool}
}

// Create inserts an operation history record.
func (r *OperationRepo) Create(ctx context.Context, op *domain.OperationRecord) error {
	query := `INSERT INTO operations (id, user_id, kind, status, ledger_tx_id, resource_ref,
		stage_reached, completed_sub_ops, total_sub_ops, network, pending_reconciliation, detail, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	_, err := r.pool.Exec(ctx, query,
		op.ID, op.UserID, op.Kind, op.Status, op.LedgerTxID, op.ResourceRef,
		op.StageReached, op.CompletedSubOps, op.TotalSubOps, op.Mode,
		op.PendingReconciliation, op.Detail, op.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert operation: %w", err)
	}
	return nil
}

// ListByUser returns the user's operations, newest first.
func (r *OperationRepo) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]domain.OperationRecord, error) {
	query := `SELECT id, user_id, kind, status, ledger_tx_id, resource_ref, stage_reached,
		completed_sub_ops, total_sub_ops, network, pending_reconciliation, detail, created_at
		FROM operations WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2`

	rows, err := r.pool.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list operations: %w", err)
	}
	defer rows.Close()

	var records []domain.OperationRecord
	for rows.Next() {
		var op domain.OperationRecord
		if err := rows.Scan(
			&op.ID, &op.UserID, &op.Kind, &op.Status, &op.LedgerTxID, &op.ResourceRef,
			&op.StageReached, &op.CompletedSubOps, &op.TotalSubOps, &op.Mode,
			&op.PendingReconciliation, &op.Detail, &op.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan operation: %w", err)
		}
		records = append(records, op)
	}
	return records, rows.Err()
}
