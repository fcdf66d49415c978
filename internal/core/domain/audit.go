package domain

import (
	"time"

	"github.com/google/uuid"
)

// AuditEntry records one high-stakes operation attempt that reached
// submission. Append-only: entries are never updated or deleted through
// this subsystem, even when the operation later fails, since cost may have
// been incurred regardless of the final outcome.
type AuditEntry struct {
	ID           uuid.UUID       `json:"id"`
	UserID       uuid.UUID       `json:"user_id"`
	Kind         OperationKind   `json:"kind"`
	ResourceRef  string          `json:"resource_ref,omitempty"`
	LedgerTxID   string          `json:"ledger_tx_id,omitempty"`
	StageReached PipelineStage   `json:"stage_reached"`
	Outcome      OperationStatus `json:"outcome"`
	Mode         NetworkMode     `json:"network"`
	CreatedAt    time.Time       `json:"created_at"`
}
