package service

import (
	"testing"

	"hedera-asset-gateway/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNetworkModePolicy_TestnetAlwaysProceeds(t *testing.T) {
	p := NewNetworkModePolicy(domain.NetworkModeTestnet, true)

	for _, kind := range []domain.OperationKind{
		domain.OperationDeployContract,
		domain.OperationCreateAssetClass,
		domain.OperationTransfer,
		domain.OperationMintItem,
	} {
		d := p.Evaluate(kind, false)
		assert.True(t, d.Proceed, "testnet %s should proceed without acknowledgement", kind)
		assert.Nil(t, d.Estimate)
	}
}

func TestNetworkModePolicy_MainnetRequiresAck(t *testing.T) {
	p := NewNetworkModePolicy(domain.NetworkModeMainnet, true)

	d := p.Evaluate(domain.OperationDeployContract, false)
	assert.False(t, d.Proceed)
	require.NotNil(t, d.Estimate)
	assert.Equal(t, domain.OperationDeployContract, d.Estimate.Operation)
	assert.Equal(t, "$5.00 - $20.00", d.Estimate.EstimatedCostUSD)
	assert.NotEmpty(t, d.Estimate.Advisory)

	// The same request with acknowledgement proceeds.
	d = p.Evaluate(domain.OperationDeployContract, true)
	assert.True(t, d.Proceed)
}

func TestNetworkModePolicy_MainnetAckDisabled(t *testing.T) {
	p := NewNetworkModePolicy(domain.NetworkModeMainnet, false)

	d := p.Evaluate(domain.OperationMintItem, false)
	assert.True(t, d.Proceed, "disabled acknowledgement gate should proceed")
}

func TestNetworkModePolicy_EstimateTable(t *testing.T) {
	p := NewNetworkModePolicy(domain.NetworkModeMainnet, true)

	tests := []struct {
		kind    domain.OperationKind
		wantUSD string
	}{
		{domain.OperationDeployContract, "$5.00 - $20.00"},
		{domain.OperationCreateAssetClass, "$1.00 - $5.00"},
		{domain.OperationMintItem, "$0.50 - $2.00"},
		{domain.OperationTransfer, "$0.01 - $0.10"},
		{domain.OperationKind("something-else"), "$0.01 - $1.00"},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			est := p.Estimate(tt.kind)
			assert.Equal(t, tt.kind, est.Operation)
			assert.Equal(t, tt.wantUSD, est.EstimatedCostUSD)
		})
	}
}

func TestNetworkModePolicy_TestnetEstimateHasNoAdvisory(t *testing.T) {
	p := NewNetworkModePolicy(domain.NetworkModeTestnet, true)

	est := p.Estimate(domain.OperationTransfer)
	assert.Empty(t, est.Advisory)
}
