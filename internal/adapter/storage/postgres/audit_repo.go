package postgres

import (
	"context"
	"fmt"

	"hedera-asset-gateway/internal/core/domain"
	"hedera-asset-gateway/internal/core/ports"

	"github.com/google/uuid"
)

type auditRepo struct {
	pool Pool
}

// NewAuditRepository creates a PostgreSQL-backed AuditRepository. The
// backing table is insert-only; no update or delete statements exist here.
func NewAuditRepository(pool Pool) ports.AuditRepository {
	return &auditRepo{pool: pool}
}

func (r *auditRepo) Append(ctx context.Context, entry *domain.AuditEntry) error {
	query := `INSERT INTO audit_entries (id, user_id, kind, resource_ref, ledger_tx_id,
		stage_reached, outcome, network, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := r.pool.Exec(ctx, query,
		entry.ID, entry.UserID, entry.Kind, entry.ResourceRef, entry.LedgerTxID,
		entry.StageReached, entry.Outcome, entry.Mode, entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}
	return nil
}

func (r *auditRepo) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]domain.AuditEntry, error) {
	query := `SELECT id, user_id, kind, resource_ref, ledger_tx_id, stage_reached,
		outcome, network, created_at
		FROM audit_entries WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2`

	rows, err := r.pool.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list audit entries: %w", err)
	}
	defer rows.Close()

	var entries []domain.AuditEntry
	for rows.Next() {
		var e domain.AuditEntry
		if err := rows.Scan(
			&e.ID, &e.UserID, &e.Kind, &e.ResourceRef, &e.LedgerTxID, &e.StageReached,
			&e.Outcome, &e.Mode, &e.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan audit entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
