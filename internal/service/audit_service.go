package service

import (
	"context"
	"fmt"

	"hedera-asset-gateway/internal/core/domain"
	"hedera-asset-gateway/internal/core/ports"
	"hedera-asset-gateway/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type auditService struct {
	repo ports.AuditRepository
	log  zerolog.Logger
}

// NewAuditService creates the append-only audit trail service. Every write
// is also emitted on the logger so the trail survives in log storage even
// if the database row is lost.
func NewAuditService(repo ports.AuditRepository, log zerolog.Logger) ports.AuditService {
	return &auditService{repo: repo, log: log}
}

// Append persists one audit entry. Writes are synchronous: the caller must
// know whether the trail recorded the attempt.
func (s *auditService) Append(ctx context.Context, entry *domain.AuditEntry) error {
	s.log.Info().
		Str("user_id", entry.UserID.String()).
		Str("kind", string(entry.Kind)).
		Str("resource_ref", entry.ResourceRef).
		Str("ledger_tx_id", entry.LedgerTxID).
		Str("stage_reached", string(entry.StageReached)).
		Str("outcome", string(entry.Outcome)).
		Str("network", string(entry.Mode)).
		Msg("audit")

	if err := s.repo.Append(ctx, entry); err != nil {
		return apperror.ErrDatabaseError(fmt.Errorf("append audit entry: %w", err))
	}
	return nil
}

// ListForUser returns the user's audit entries, newest first.
func (s *auditService) ListForUser(ctx context.Context, userID uuid.UUID, limit int) ([]domain.AuditEntry, error) {
	entries, err := s.repo.ListByUser(ctx, userID, limit)
	if err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("list audit entries: %w", err))
	}
	return entries, nil
}
