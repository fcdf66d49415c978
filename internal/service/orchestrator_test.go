package service

import (
	"context"
	"errors"
	"testing"

	"hedera-asset-gateway/internal/core/domain"
	"hedera-asset-gateway/internal/core/ports/mocks"
	"hedera-asset-gateway/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type orchestratorFixture struct {
	orch         *TransactionOrchestrator
	ledger       *mocks.MockLedgerClient
	contractRepo *mocks.MockContractRepository
	assetRepo    *mocks.MockAssetRepository
	itemRepo     *mocks.MockItemRepository
	opRepo       *mocks.MockOperationRepository
	auditSvc     *mocks.MockAuditService
	encSvc       *mocks.MockEncryptionService
	ctrl         *gomock.Controller
}

func setupOrchestrator(t *testing.T, mode domain.NetworkMode) *orchestratorFixture {
	ctrl := gomock.NewController(t)
	f := &orchestratorFixture{
		ledger:       mocks.NewMockLedgerClient(ctrl),
		contractRepo: mocks.NewMockContractRepository(ctrl),
		assetRepo:    mocks.NewMockAssetRepository(ctrl),
		itemRepo:     mocks.NewMockItemRepository(ctrl),
		opRepo:       mocks.NewMockOperationRepository(ctrl),
		auditSvc:     mocks.NewMockAuditService(ctrl),
		encSvc:       mocks.NewMockEncryptionService(ctrl),
		ctrl:         ctrl,
	}
	f.ledger.EXPECT().OperatorAccount().Return("0.0.1001").AnyTimes()
	f.orch = NewTransactionOrchestrator(
		f.ledger,
		NewNetworkModePolicy(mode, true),
		NewFIFOSerializer(),
		f.contractRepo,
		f.assetRepo,
		f.itemRepo,
		f.opRepo,
		f.auditSvc,
		f.encSvc,
		zerolog.Nop(),
	)
	return f
}

func testPrincipal() *domain.User {
	return &domain.User{ID: uuid.New(), Username: "alice", Active: true}
}

func deployRequest(ack bool) domain.OperationRequest {
	return domain.OperationRequest{
		Kind:             domain.OperationDeployContract,
		AcknowledgedCost: ack,
		Deploy: &domain.DeployContractParams{
			Name:     "escrow",
			Bytecode: []byte{0x60, 0x80, 0x60, 0x40},
		},
	}
}

func TestOrchestrator_MainnetWithoutAck_HeldWithEstimate(t *testing.T) {
	f := setupOrchestrator(t, domain.NetworkModeMainnet)
	defer f.ctrl.Finish()

	// No ledger, repo or audit expectations: nothing may be touched.
	result, err := f.orch.Execute(context.Background(), testPrincipal(), deployRequest(false))
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, domain.OutcomeAckRequired, result.Outcome)
	require.NotNil(t, result.Estimate)
	assert.Equal(t, "$5.00 - $20.00", result.Estimate.EstimatedCostUSD)
	assert.Empty(t, result.LedgerTxID)
}

func TestOrchestrator_TestnetWithoutAck_Proceeds(t *testing.T) {
	f := setupOrchestrator(t, domain.NetworkModeTestnet)
	defer f.ctrl.Finish()

	ctx := context.Background()
	f.ledger.EXPECT().Submit(gomock.Any(), gomock.Any(), gomock.Any()).Return(&domain.Receipt{
		SubOp: domain.SubOpFileCreate, TransactionID: "0.0.1001@1.1", Status: "SUCCESS", FileID: "0.0.555",
	}, nil)
	f.ledger.EXPECT().Submit(gomock.Any(), gomock.Any(), gomock.Any()).Return(&domain.Receipt{
		SubOp: domain.SubOpContractCreate, TransactionID: "0.0.1001@1.2", Status: "SUCCESS",
		ContractID: "0.0.777", ContractAddress: "0x00abc",
	}, nil)
	f.contractRepo.EXPECT().Create(ctx, gomock.Any()).Return(nil)
	f.opRepo.EXPECT().Create(ctx, gomock.Any()).Return(nil)
	// Testnet runs are not audited.

	result, err := f.orch.Execute(ctx, testPrincipal(), deployRequest(false))
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeConfirmed, result.Outcome)
	assert.Equal(t, "0.0.555", result.FileID)
	assert.Equal(t, "0.0.777", result.ContractID)
	assert.Equal(t, "0.0.1001@1.2", result.LedgerTxID)
	assert.False(t, result.PendingReconciliation)
}

func TestOrchestrator_DeploySuccess_MainnetAudited(t *testing.T) {
	f := setupOrchestrator(t, domain.NetworkModeMainnet)
	defer f.ctrl.Finish()

	ctx := context.Background()
	principal := testPrincipal()

	f.ledger.EXPECT().Submit(gomock.Any(), gomock.Any(), gomock.Any()).Return(&domain.Receipt{
		SubOp: domain.SubOpFileCreate, TransactionID: "tx-1", Status: "SUCCESS", FileID: "0.0.555",
	}, nil)
	f.ledger.EXPECT().Submit(gomock.Any(), gomock.Any(), gomock.Any()).Return(&domain.Receipt{
		SubOp: domain.SubOpContractCreate, TransactionID: "tx-2", Status: "SUCCESS", ContractID: "0.0.777",
	}, nil)
	f.contractRepo.EXPECT().Create(ctx, gomock.Any()).DoAndReturn(func(_ context.Context, rec *domain.ContractRecord) error {
		assert.Equal(t, principal.ID, rec.OwnerID)
		assert.Equal(t, "0.0.555", rec.BytecodeFileID)
		assert.Equal(t, domain.NetworkModeMainnet, rec.Mode)
		return nil
	})
	f.opRepo.EXPECT().Create(ctx, gomock.Any()).DoAndReturn(func(_ context.Context, rec *domain.OperationRecord) error {
		assert.Equal(t, domain.OperationStatusConfirmed, rec.Status)
		assert.Equal(t, 2, rec.CompletedSubOps)
		assert.Equal(t, 2, rec.TotalSubOps)
		return nil
	})
	f.auditSvc.EXPECT().Append(ctx, gomock.Any()).DoAndReturn(func(_ context.Context, entry *domain.AuditEntry) error {
		assert.Equal(t, domain.OperationStatusConfirmed, entry.Outcome)
		assert.Equal(t, "tx-2", entry.LedgerTxID)
		return nil
	})

	result, err := f.orch.Execute(ctx, principal, deployRequest(true))
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeConfirmed, result.Outcome)
}

func TestOrchestrator_TransferUnownedToken_NoLedgerCall(t *testing.T) {
	f := setupOrchestrator(t, domain.NetworkModeTestnet)
	defer f.ctrl.Finish()

	ctx := context.Background()
	req := domain.OperationRequest{
		Kind:     domain.OperationTransfer,
		Transfer: &domain.TransferParams{TokenID: "0.0.9999", ToAccount: "0.0.2002", Amount: 10},
	}

	// Owned by someone else: the caller gets the same answer as "absent".
	f.assetRepo.EXPECT().GetByTokenID(ctx, "0.0.9999").Return(&domain.AssetClassRecord{
		OwnerID: uuid.New(), TokenID: "0.0.9999", Kind: domain.AssetKindFungible,
	}, nil)

	_, err := f.orch.Execute(ctx, testPrincipal(), req)
	require.Error(t, err)

	var appErr *apperror.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "OWN_001", appErr.Code)
	assert.Equal(t, 404, appErr.HTTPStatus)
}

func TestOrchestrator_TransferAbsentToken_SameAnswer(t *testing.T) {
	f := setupOrchestrator(t, domain.NetworkModeTestnet)
	defer f.ctrl.Finish()

	ctx := context.Background()
	req := domain.OperationRequest{
		Kind:     domain.OperationTransfer,
		Transfer: &domain.TransferParams{TokenID: "0.0.9999", ToAccount: "0.0.2002", Amount: 10},
	}

	f.assetRepo.EXPECT().GetByTokenID(ctx, "0.0.9999").Return(nil, nil)

	_, err := f.orch.Execute(ctx, testPrincipal(), req)
	require.Error(t, err)

	var appErr *apperror.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "OWN_001", appErr.Code)
}

func TestOrchestrator_MintIntoFungibleClass(t *testing.T) {
	f := setupOrchestrator(t, domain.NetworkModeTestnet)
	defer f.ctrl.Finish()

	ctx := context.Background()
	principal := testPrincipal()
	req := domain.OperationRequest{
		Kind: domain.OperationMintItem,
		Mint: &domain.MintItemParams{TokenID: "0.0.3333", Metadata: []byte(`{"name":"x"}`)},
	}

	f.assetRepo.EXPECT().GetByTokenID(ctx, "0.0.3333").Return(&domain.AssetClassRecord{
		OwnerID: principal.ID, TokenID: "0.0.3333", Kind: domain.AssetKindFungible,
	}, nil)

	_, err := f.orch.Execute(ctx, principal, req)
	require.Error(t, err)

	var appErr *apperror.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "OWN_002", appErr.Code)
}

func TestOrchestrator_MintSuccess(t *testing.T) {
	f := setupOrchestrator(t, domain.NetworkModeTestnet)
	defer f.ctrl.Finish()

	ctx := context.Background()
	principal := testPrincipal()
	req := domain.OperationRequest{
		Kind: domain.OperationMintItem,
		Mint: &domain.MintItemParams{TokenID: "0.0.3333", Metadata: []byte(`{"name":"sword"}`)},
	}

	f.assetRepo.EXPECT().GetByTokenID(ctx, "0.0.3333").Return(&domain.AssetClassRecord{
		OwnerID: principal.ID, TokenID: "0.0.3333", Kind: domain.AssetKindNFT, SupplyKeyEnc: "enc-key",
	}, nil)
	f.encSvc.EXPECT().Decrypt("enc-key").Return("plain-key", nil)
	f.ledger.EXPECT().Submit(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, sub domain.SubOperation, _ []domain.Receipt) (*domain.Receipt, error) {
			mint, ok := sub.(domain.TokenMint)
			require.True(t, ok)
			assert.Equal(t, "plain-key", mint.SupplyKey)
			// Mint receipts carry serials only; the collection id must come
			// from the request.
			return &domain.Receipt{
				SubOp: domain.SubOpTokenMint, TransactionID: "tx-9", Status: "SUCCESS",
				SerialNumbers: []int64{7},
			}, nil
		})
	f.itemRepo.EXPECT().Create(ctx, gomock.Any()).DoAndReturn(func(_ context.Context, rec *domain.ItemRecord) error {
		assert.Equal(t, "0.0.3333", rec.TokenID)
		assert.Equal(t, int64(7), rec.SerialNumber)
		assert.Equal(t, `{"name":"sword"}`, rec.Metadata)
		return nil
	})
	f.opRepo.EXPECT().Create(ctx, gomock.Any()).Return(nil)

	result, err := f.orch.Execute(ctx, principal, req)
	require.NoError(t, err)
	assert.Equal(t, "0.0.3333", result.TokenID)
	assert.Equal(t, []int64{7}, result.SerialNumbers)
}

func TestOrchestrator_RejectedBeforeSubmission(t *testing.T) {
	f := setupOrchestrator(t, domain.NetworkModeTestnet)
	defer f.ctrl.Finish()

	ctx := context.Background()
	req := domain.OperationRequest{
		Kind:        domain.OperationCreateAssetClass,
		CreateAsset: &domain.CreateAssetClassParams{Name: "Gold", Symbol: "GLD", Kind: domain.AssetKindFungible},
	}

	f.ledger.EXPECT().Submit(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, &domain.LedgerError{
		Stage: domain.StageSign, Submitted: false, Err: errors.New("bad operator key"),
	})
	f.opRepo.EXPECT().Create(ctx, gomock.Any()).DoAndReturn(func(_ context.Context, rec *domain.OperationRecord) error {
		assert.Equal(t, domain.OperationStatusRejected, rec.Status)
		assert.Equal(t, domain.StageSign, rec.StageReached)
		assert.Equal(t, 0, rec.CompletedSubOps)
		return nil
	})

	_, err := f.orch.Execute(ctx, testPrincipal(), req)
	require.Error(t, err)

	var appErr *apperror.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "LGR_001", appErr.Code)
}

func TestOrchestrator_PartialDeployFailure_ReportsCompletedSteps(t *testing.T) {
	f := setupOrchestrator(t, domain.NetworkModeMainnet)
	defer f.ctrl.Finish()

	ctx := context.Background()

	f.ledger.EXPECT().Submit(gomock.Any(), gomock.Any(), gomock.Any()).Return(&domain.Receipt{
		SubOp: domain.SubOpFileCreate, TransactionID: "tx-1", Status: "SUCCESS", FileID: "0.0.555",
	}, nil)
	f.ledger.EXPECT().Submit(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, &domain.LedgerError{
		Stage: domain.StageConfirm, TransactionID: "tx-2", Submitted: true, Err: errors.New("receipt timeout"),
	})
	f.opRepo.EXPECT().Create(ctx, gomock.Any()).DoAndReturn(func(_ context.Context, rec *domain.OperationRecord) error {
		assert.Equal(t, domain.OperationStatusIndeterminate, rec.Status)
		assert.Equal(t, 1, rec.CompletedSubOps)
		assert.Equal(t, 2, rec.TotalSubOps)
		return nil
	})
	// The failed attempt may still have cost money: audited on mainnet.
	f.auditSvc.EXPECT().Append(ctx, gomock.Any()).DoAndReturn(func(_ context.Context, entry *domain.AuditEntry) error {
		assert.Equal(t, domain.OperationStatusIndeterminate, entry.Outcome)
		return nil
	})

	_, err := f.orch.Execute(ctx, testPrincipal(), deployRequest(true))
	require.Error(t, err)

	var appErr *apperror.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "LGR_002", appErr.Code)

	details, ok := appErr.Details.(map[string]interface{})
	require.True(t, ok)
	completed, ok := details["completed"].([]domain.Receipt)
	require.True(t, ok)
	require.Len(t, completed, 1)
	assert.Equal(t, "0.0.555", completed[0].FileID)
}

func TestOrchestrator_PersistenceFailureAfterConfirm_PendingReconciliation(t *testing.T) {
	f := setupOrchestrator(t, domain.NetworkModeTestnet)
	defer f.ctrl.Finish()

	ctx := context.Background()
	req := domain.OperationRequest{
		Kind: domain.OperationCreateAssetClass,
		CreateAsset: &domain.CreateAssetClassParams{
			Name: "Gold", Symbol: "GLD", Kind: domain.AssetKindFungible, InitialSupply: 1000,
		},
	}

	f.ledger.EXPECT().Submit(gomock.Any(), gomock.Any(), gomock.Any()).Return(&domain.Receipt{
		SubOp: domain.SubOpTokenCreate, TransactionID: "tx-5", Status: "SUCCESS",
		TokenID: "0.0.4444", SupplyKey: "plain-key",
	}, nil)
	f.encSvc.EXPECT().Encrypt("plain-key").Return("enc-key", nil)
	f.assetRepo.EXPECT().Create(ctx, gomock.Any()).Return(errors.New("db down"))
	f.opRepo.EXPECT().Create(ctx, gomock.Any()).DoAndReturn(func(_ context.Context, rec *domain.OperationRecord) error {
		assert.True(t, rec.PendingReconciliation)
		return nil
	})

	result, err := f.orch.Execute(ctx, testPrincipal(), req)
	require.NoError(t, err, "confirmed ledger effect must not surface as failure")
	assert.Equal(t, domain.OutcomeConfirmed, result.Outcome)
	assert.Equal(t, "0.0.4444", result.TokenID)
	assert.True(t, result.PendingReconciliation)
}

func TestOrchestrator_CreateAssetClass_EncryptsSupplyKey(t *testing.T) {
	f := setupOrchestrator(t, domain.NetworkModeTestnet)
	defer f.ctrl.Finish()

	ctx := context.Background()
	req := domain.OperationRequest{
		Kind: domain.OperationCreateAssetClass,
		CreateAsset: &domain.CreateAssetClassParams{
			Name: "Relics", Symbol: "RLC", Kind: domain.AssetKindNFT,
		},
	}

	f.ledger.EXPECT().Submit(gomock.Any(), gomock.Any(), gomock.Any()).Return(&domain.Receipt{
		SubOp: domain.SubOpTokenCreate, TransactionID: "tx-6", Status: "SUCCESS",
		TokenID: "0.0.4445", SupplyKey: "plain-key",
	}, nil)
	f.encSvc.EXPECT().Encrypt("plain-key").Return("enc-key", nil)
	f.assetRepo.EXPECT().Create(ctx, gomock.Any()).DoAndReturn(func(_ context.Context, rec *domain.AssetClassRecord) error {
		assert.Equal(t, "enc-key", rec.SupplyKeyEnc, "supply key must be stored encrypted")
		assert.Equal(t, domain.AssetKindNFT, rec.Kind)
		return nil
	})
	f.opRepo.EXPECT().Create(ctx, gomock.Any()).Return(nil)

	result, err := f.orch.Execute(ctx, testPrincipal(), req)
	require.NoError(t, err)
	assert.Equal(t, "0.0.4445", result.TokenID)
	// The plaintext key never appears in the result.
	for _, rcpt := range result.Receipts {
		assert.Empty(t, rcpt.SupplyKey)
	}
}
