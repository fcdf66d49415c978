package dto

import (
	"encoding/json"

	"hedera-asset-gateway/internal/core/domain"
)

// RegisterRequest is the request body for user registration.
type RegisterRequest struct {
	Username string  `json:"username" binding:"required,min=3,max=50,safe_id"`
	Email    string  `json:"email" binding:"required,email,max=254"`
	Password string  `json:"password" binding:"required,min=8,max=128"`
	FullName *string `json:"full_name,omitempty" binding:"omitempty,max=100"`
}

// LoginRequest is the request body for user login.
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// AuthResponse is the response body for successful registration or login.
type AuthResponse struct {
	Token     string `json:"token"`
	ExpiresAt int64  `json:"expires_at"` // Unix timestamp
}

// WalletConnectRequest is the request body for linking an external Hedera
// account to the authenticated user.
type WalletConnectRequest struct {
	AccountID string `json:"account_id" binding:"required,hedera_id"`
	PublicKey string `json:"public_key" binding:"required,max=200"`
	Signature string `json:"signature" binding:"required,max=400"`
}

// WalletConnectResponse acknowledges a successful wallet link.
type WalletConnectResponse struct {
	AccountID string `json:"account_id"`
	Connected bool   `json:"connected"`
}

// DeployContractRequest is the request body for contract deployment.
// Bytecode is hex-encoded; decoding happens at the handler so a bad
// encoding fails validation before anything reaches the ledger.
type DeployContractRequest struct {
	ContractName      string `json:"contract_name" binding:"required,min=1,max=100"`
	Bytecode          string `json:"bytecode" binding:"required,hex_bytecode"`
	ConstructorParams string `json:"constructor_params,omitempty"`
	AcknowledgedCost  bool   `json:"acknowledged_cost"`
}

// CreateAssetRequest is the request body for token class creation.
type CreateAssetRequest struct {
	Name             string `json:"name" binding:"required,min=1,max=100"`
	Symbol           string `json:"symbol" binding:"required,min=1,max=16"`
	Kind             string `json:"kind" binding:"required,oneof=fungible nft"`
	Decimals         uint32 `json:"decimals" binding:"lte=18"`
	InitialSupply    uint64 `json:"initial_supply"`
	AcknowledgedCost bool   `json:"acknowledged_cost"`
}

// TransferRequest is the request body for a fungible token transfer.
type TransferRequest struct {
	AssetID          string `json:"asset_id" binding:"required,hedera_id"`
	ToAccount        string `json:"to_account" binding:"required,hedera_id"`
	Amount           int64  `json:"amount" binding:"required,gt=0"`
	AcknowledgedCost bool   `json:"acknowledged_cost"`
}

// MintRequest is the request body for minting an NFT item.
type MintRequest struct {
	AssetID          string          `json:"asset_id" binding:"required,hedera_id"`
	Metadata         json.RawMessage `json:"metadata" binding:"required"`
	AcknowledgedCost bool            `json:"acknowledged_cost"`
}

// OperationResponse is the response body for a confirmed ledger operation.
type OperationResponse struct {
	Kind            string           `json:"kind"`
	Outcome         string           `json:"outcome"`
	LedgerTxID      string           `json:"ledger_tx_id,omitempty"`
	ContractID      string           `json:"contract_id,omitempty"`
	ContractAddress string           `json:"contract_address,omitempty"`
	FileID          string           `json:"file_id,omitempty"`
	AssetID         string           `json:"asset_id,omitempty"`
	SerialNumbers   []int64          `json:"serial_numbers,omitempty"`
	Receipts        []domain.Receipt `json:"receipts,omitempty"`
	Network         string           `json:"network,omitempty"`

	PendingReconciliation bool `json:"pending_reconciliation,omitempty"`
}

// ToOperationResponse converts a domain operation result to its DTO.
func ToOperationResponse(r *domain.OperationResult) OperationResponse {
	return OperationResponse{
		Kind:                  string(r.Kind),
		Outcome:               string(r.Outcome),
		LedgerTxID:            r.LedgerTxID,
		ContractID:            r.ContractID,
		ContractAddress:       r.ContractAddress,
		FileID:                r.FileID,
		AssetID:               r.TokenID,
		SerialNumbers:         r.SerialNumbers,
		Receipts:              r.Receipts,
		Network:               string(r.Mode),
		PendingReconciliation: r.PendingReconciliation,
	}
}
