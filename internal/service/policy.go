package service

import (
	"hedera-asset-gateway/internal/core/domain"
	"hedera-asset-gateway/internal/core/ports"
)

// costTable holds the advisory cost ranges per operation kind. Ranges are
// deliberately wide: exact fees depend on network congestion and payload
// size, and the numbers exist to force explicit intent, not to price.
var costTable = map[domain.OperationKind]domain.CostEstimate{
	domain.OperationDeployContract: {
		Operation:         domain.OperationDeployContract,
		EstimatedCostUSD:  "$5.00 - $20.00",
		EstimatedCostHbar: "5 - 20 HBAR",
	},
	domain.OperationCreateAssetClass: {
		Operation:         domain.OperationCreateAssetClass,
		EstimatedCostUSD:  "$1.00 - $5.00",
		EstimatedCostHbar: "1 - 5 HBAR",
	},
	domain.OperationMintItem: {
		Operation:         domain.OperationMintItem,
		EstimatedCostUSD:  "$0.50 - $2.00",
		EstimatedCostHbar: "0.5 - 2 HBAR",
	},
	domain.OperationTransfer: {
		Operation:         domain.OperationTransfer,
		EstimatedCostUSD:  "$0.01 - $0.10",
		EstimatedCostHbar: "0.01 - 0.1 HBAR",
	},
}

// defaultEstimate covers operation kinds missing from the table.
var defaultEstimate = domain.CostEstimate{
	EstimatedCostUSD:  "$0.01 - $1.00",
	EstimatedCostHbar: "0.01 - 1 HBAR",
}

const mainnetAdvisory = "This operation spends real HBAR on mainnet. Re-submit with acknowledged_cost=true to proceed."

// NetworkModePolicy implements ports.ModePolicy. On mainnet with cost
// acknowledgement enabled, operations without acknowledged_cost are held
// back with an estimate; on testnet everything proceeds.
type NetworkModePolicy struct {
	mode       domain.NetworkMode
	ackEnabled bool
}

// NewNetworkModePolicy creates a policy for the given mode.
func NewNetworkModePolicy(mode domain.NetworkMode, ackEnabled bool) *NetworkModePolicy {
	return &NetworkModePolicy{mode: mode, ackEnabled: ackEnabled}
}

// Evaluate decides whether the operation may proceed. Holding an operation
// for acknowledgement is an expected decision, never an error.
func (p *NetworkModePolicy) Evaluate(kind domain.OperationKind, acknowledgedCost bool) ports.PolicyDecision {
	if !p.mode.HighStakes() || !p.ackEnabled || acknowledgedCost {
		return ports.PolicyDecision{Proceed: true}
	}

	est := p.Estimate(kind)
	return ports.PolicyDecision{Proceed: false, Estimate: &est}
}

// Estimate returns the advisory cost range for the operation kind.
func (p *NetworkModePolicy) Estimate(kind domain.OperationKind) domain.CostEstimate {
	est, ok := costTable[kind]
	if !ok {
		est = defaultEstimate
		est.Operation = kind
	}
	if p.mode.HighStakes() {
		est.Advisory = mainnetAdvisory
	}
	return est
}

// Mode returns the configured network mode.
func (p *NetworkModePolicy) Mode() domain.NetworkMode {
	return p.mode
}
