package domain

import (
	"time"

	"github.com/google/uuid"
)

// NetworkMode is the operating mode the service runs in. Mainnet operations
// spend real HBAR and require explicit cost acknowledgement.
type NetworkMode string

const (
	NetworkModeTestnet NetworkMode = "testnet"
	NetworkModeMainnet NetworkMode = "mainnet"
)

// HighStakes reports whether operations in this mode have real monetary cost.
func (m NetworkMode) HighStakes() bool {
	return m == NetworkModeMainnet
}

// AssetKind distinguishes fungible token classes from NFT collections.
type AssetKind string

const (
	AssetKindFungible AssetKind = "fungible"
	AssetKindNFT      AssetKind = "nft"
)

// ResourceStatus is the lifecycle state of a ledger-visible resource record.
type ResourceStatus string

const (
	ResourceStatusActive  ResourceStatus = "ACTIVE"
	ResourceStatusRetired ResourceStatus = "RETIRED"
)

// ContractRecord is the local record of a deployed smart contract.
// Created exactly once on confirmed deployment; never mutated afterwards
// except status transitions.
type ContractRecord struct {
	ID                    uuid.UUID      `json:"id"`
	OwnerID               uuid.UUID      `json:"owner_id"`
	Name                  string         `json:"name"`
	ContractID            string         `json:"contract_id"`
	ContractAddress       string         `json:"contract_address"`
	BytecodeFileID        string         `json:"bytecode_file_id"`
	LedgerTxID            string         `json:"ledger_tx_id"`
	Mode                  NetworkMode    `json:"network"`
	Status                ResourceStatus `json:"status"`
	PendingReconciliation bool           `json:"pending_reconciliation,omitempty"`
	CreatedAt             time.Time      `json:"created_at"`
}

// AssetClassRecord is the local record of a created token class (fungible
// token or NFT collection). SupplyKeyEnc holds the AES-encrypted supply key
// that authorizes minting into this class.
type AssetClassRecord struct {
	ID                    uuid.UUID      `json:"id"`
	OwnerID               uuid.UUID      `json:"owner_id"`
	Name                  string         `json:"name"`
	Symbol                string         `json:"symbol"`
	TokenID               string         `json:"token_id"`
	Kind                  AssetKind      `json:"kind"`
	Decimals              uint32         `json:"decimals"`
	InitialSupply         uint64         `json:"initial_supply"`
	SupplyKeyEnc          string         `json:"-"` // Encrypted, never expose
	LedgerTxID            string         `json:"ledger_tx_id"`
	Mode                  NetworkMode    `json:"network"`
	Status                ResourceStatus `json:"status"`
	PendingReconciliation bool           `json:"pending_reconciliation,omitempty"`
	CreatedAt             time.Time      `json:"created_at"`
}

// IsNFT reports whether items can be minted into this class.
func (a *AssetClassRecord) IsNFT() bool {
	return a.Kind == AssetKindNFT
}

// ItemRecord is the local record of a minted NFT item.
type ItemRecord struct {
	ID                    uuid.UUID   `json:"id"`
	OwnerID               uuid.UUID   `json:"owner_id"`
	TokenID               string      `json:"token_id"`
	SerialNumber          int64       `json:"serial_number"`
	Metadata              string      `json:"metadata"` // JSON document
	LedgerTxID            string      `json:"ledger_tx_id"`
	Mode                  NetworkMode `json:"network"`
	PendingReconciliation bool        `json:"pending_reconciliation,omitempty"`
	MintedAt              time.Time   `json:"minted_at"`
}
