package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// OperationKind identifies a user-triggered ledger operation.
type OperationKind string

const (
	OperationDeployContract   OperationKind = "deploy-contract"
	OperationCreateAssetClass OperationKind = "create-asset-class"
	OperationTransfer         OperationKind = "transfer"
	OperationMintItem         OperationKind = "mint-item"
)

// OperationRequest is a tagged union over the four operation kinds.
// Exactly one params pointer matching Kind is non-nil. Immutable once
// constructed.
type OperationRequest struct {
	Kind             OperationKind
	AcknowledgedCost bool

	Deploy      *DeployContractParams
	CreateAsset *CreateAssetClassParams
	Transfer    *TransferParams
	Mint        *MintItemParams
}

// DeployContractParams carries parameters for a contract deployment.
// Deployment is a composite operation: bytecode file creation followed by
// contract creation referencing that file.
type DeployContractParams struct {
	Name              string
	Bytecode          []byte // decoded from hex at the HTTP boundary
	ConstructorParams string
}

// CreateAssetClassParams carries parameters for token class creation.
type CreateAssetClassParams struct {
	Name          string
	Symbol        string
	Decimals      uint32
	InitialSupply uint64
	Kind          AssetKind
}

// TransferParams carries parameters for a fungible token transfer from the
// operator treasury to an external account.
type TransferParams struct {
	TokenID   string
	ToAccount string
	Amount    int64
}

// MintItemParams carries parameters for minting an NFT into an owned class.
type MintItemParams struct {
	TokenID  string
	Metadata []byte // JSON document
}

// ResourceRef returns the ledger resource the request acts on, if any.
// Only Transfer and MintItem reference a pre-existing resource.
func (r *OperationRequest) ResourceRef() string {
	switch r.Kind {
	case OperationTransfer:
		if r.Transfer != nil {
			return r.Transfer.TokenID
		}
	case OperationMintItem:
		if r.Mint != nil {
			return r.Mint.TokenID
		}
	}
	return ""
}

// --- Pipeline descriptors ---

// SubOpKind identifies one ledger transaction within an operation.
type SubOpKind string

const (
	SubOpFileCreate     SubOpKind = "file-create"
	SubOpContractCreate SubOpKind = "contract-create"
	SubOpTokenCreate    SubOpKind = "token-create"
	SubOpTokenTransfer  SubOpKind = "token-transfer"
	SubOpTokenMint      SubOpKind = "token-mint"
)

// SubOperation describes one ledger transaction to build, freeze, sign,
// submit, and confirm. Composite operations are an ordered list of these,
// so partial completion is representable as "k of n succeeded".
type SubOperation interface {
	SubOpKind() SubOpKind
}

// FileCreate stores contract bytecode on the ledger file service.
type FileCreate struct {
	Contents []byte
}

func (FileCreate) SubOpKind() SubOpKind { return SubOpFileCreate }

// ContractCreate instantiates a contract from a bytecode file. When FileID
// is empty the executor resolves it from the preceding FileCreate receipt.
type ContractCreate struct {
	FileID            string
	Gas               uint64
	ConstructorParams string
}

func (ContractCreate) SubOpKind() SubOpKind { return SubOpContractCreate }

// TokenCreate creates a fungible token or NFT collection with the operator
// as treasury. The executor generates a supply key and reports it in the
// receipt so it can be persisted (encrypted) for later minting.
type TokenCreate struct {
	Name          string
	Symbol        string
	Kind          AssetKind
	Decimals      uint32
	InitialSupply uint64
	MaxSupply     int64 // NFT collections only
}

func (TokenCreate) SubOpKind() SubOpKind { return SubOpTokenCreate }

// TokenTransfer moves fungible tokens from the operator treasury.
type TokenTransfer struct {
	TokenID   string
	ToAccount string
	Amount    int64
}

func (TokenTransfer) SubOpKind() SubOpKind { return SubOpTokenTransfer }

// TokenMint mints one NFT into a collection, signed with the collection's
// supply key.
type TokenMint struct {
	TokenID   string
	Metadata  []byte
	SupplyKey string // decrypted supply key authorizing the mint
}

func (TokenMint) SubOpKind() SubOpKind { return SubOpTokenMint }

// Receipt is the confirmed outcome of one sub-operation.
type Receipt struct {
	SubOp           SubOpKind `json:"sub_op"`
	TransactionID   string    `json:"transaction_id"`
	Status          string    `json:"status"`
	FileID          string    `json:"file_id,omitempty"`
	ContractID      string    `json:"contract_id,omitempty"`
	ContractAddress string    `json:"contract_address,omitempty"`
	TokenID         string    `json:"token_id,omitempty"`
	SerialNumbers   []int64   `json:"serial_numbers,omitempty"`
	SupplyKey       string    `json:"-"` // plaintext key material, never serialized
}

// --- Failure classification ---

// PipelineStage names where in the build→freeze→sign→submit→confirm
// pipeline a sub-operation failed.
type PipelineStage string

const (
	StageBuild   PipelineStage = "build"
	StageFreeze  PipelineStage = "freeze"
	StageSign    PipelineStage = "sign"
	StageSubmit  PipelineStage = "submit"
	StageConfirm PipelineStage = "confirm"
)

// LedgerError is a failed ledger call tagged with the stage reached.
// Submitted distinguishes rejections (the network never accepted the
// transaction; the whole operation is retry-safe) from indeterminate
// failures (the transaction may have been accepted; retrying blindly risks
// duplicate effects).
type LedgerError struct {
	Stage         PipelineStage
	TransactionID string
	Submitted     bool
	Err           error
}

func (e *LedgerError) Error() string {
	return fmt.Sprintf("ledger %s stage: %v", e.Stage, e.Err)
}

func (e *LedgerError) Unwrap() error {
	return e.Err
}

// Indeterminate reports whether the outcome on the ledger is unknown.
func (e *LedgerError) Indeterminate() bool {
	return e.Submitted
}

// PipelineError reports a failed orchestration with its partial state: the
// receipts of sub-operations that already completed are real, billable
// artifacts and must not be lost.
type PipelineError struct {
	Kind        OperationKind
	SubOpIndex  int // index of the failed sub-operation
	TotalSubOps int
	Completed   []Receipt
	Ledger      *LedgerError
}

func (e *PipelineError) Error() string {
	return fmt.Sprintf("%s sub-operation %d/%d failed: %v",
		e.Kind, e.SubOpIndex+1, e.TotalSubOps, e.Ledger)
}

func (e *PipelineError) Unwrap() error {
	return e.Ledger
}

// --- Results and history ---

// Outcome classifies the result of an orchestration attempt.
type Outcome string

const (
	OutcomeConfirmed   Outcome = "confirmed"
	OutcomeAckRequired Outcome = "ack_required"
)

// OperationResult is the immutable outcome returned to the caller.
// OutcomeAckRequired is an expected, user-actionable result carrying the
// cost estimate — not a failure.
type OperationResult struct {
	Kind     OperationKind `json:"kind"`
	Outcome  Outcome       `json:"outcome"`
	Estimate *CostEstimate `json:"estimate,omitempty"`

	LedgerTxID      string      `json:"ledger_tx_id,omitempty"`
	ContractID      string      `json:"contract_id,omitempty"`
	ContractAddress string      `json:"contract_address,omitempty"`
	FileID          string      `json:"file_id,omitempty"`
	TokenID         string      `json:"token_id,omitempty"`
	SerialNumbers   []int64     `json:"serial_numbers,omitempty"`
	Receipts        []Receipt   `json:"receipts,omitempty"`
	Mode            NetworkMode `json:"network,omitempty"`

	// PendingReconciliation is set when the ledger effect confirmed but the
	// local record write failed; the operation still succeeded.
	PendingReconciliation bool `json:"pending_reconciliation,omitempty"`
}

// OperationStatus is the persisted terminal state of an operation attempt.
type OperationStatus string

const (
	OperationStatusConfirmed     OperationStatus = "CONFIRMED"
	OperationStatusRejected      OperationStatus = "REJECTED"
	OperationStatusIndeterminate OperationStatus = "INDETERMINATE"
)

// OperationRecord is the persisted history entry for one orchestration
// attempt that reached the ledger pipeline.
type OperationRecord struct {
	ID                    uuid.UUID       `json:"id"`
	UserID                uuid.UUID       `json:"user_id"`
	Kind                  OperationKind   `json:"kind"`
	Status                OperationStatus `json:"status"`
	LedgerTxID            string          `json:"ledger_tx_id,omitempty"`
	ResourceRef           string          `json:"resource_ref,omitempty"`
	StageReached          PipelineStage   `json:"stage_reached,omitempty"`
	CompletedSubOps       int             `json:"completed_sub_ops"`
	TotalSubOps           int             `json:"total_sub_ops"`
	Mode                  NetworkMode     `json:"network"`
	PendingReconciliation bool            `json:"pending_reconciliation,omitempty"`
	Detail                *string         `json:"detail,omitempty"`
	CreatedAt             time.Time       `json:"created_at"`
}
