package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"hedera-asset-gateway/internal/core/domain"
	"hedera-asset-gateway/internal/core/ports"
	"hedera-asset-gateway/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// defaultContractGas is the gas limit for contract instantiation.
const defaultContractGas = 100_000

// TransactionOrchestrator implements ports.Orchestrator. One Execute call
// runs the full gate sequence: ownership, cost policy, serialized pipeline
// execution, record materialization, audit.
type TransactionOrchestrator struct {
	ledger       ports.LedgerClient
	policy       ports.ModePolicy
	serializer   ports.OperationSerializer
	contractRepo ports.ContractRepository
	assetRepo    ports.AssetRepository
	itemRepo     ports.ItemRepository
	opRepo       ports.OperationRepository
	auditSvc     ports.AuditService
	encSvc       ports.EncryptionService
	log          zerolog.Logger
}

// NewTransactionOrchestrator creates a new TransactionOrchestrator.
func NewTransactionOrchestrator(
	ledger ports.LedgerClient,
	policy ports.ModePolicy,
	serializer ports.OperationSerializer,
	contractRepo ports.ContractRepository,
	assetRepo ports.AssetRepository,
	itemRepo ports.ItemRepository,
	opRepo ports.OperationRepository,
	auditSvc ports.AuditService,
	encSvc ports.EncryptionService,
	log zerolog.Logger,
) *TransactionOrchestrator {
	return &TransactionOrchestrator{
		ledger:       ledger,
		policy:       policy,
		serializer:   serializer,
		contractRepo: contractRepo,
		assetRepo:    assetRepo,
		itemRepo:     itemRepo,
		opRepo:       opRepo,
		auditSvc:     auditSvc,
		encSvc:       encSvc,
		log:          log,
	}
}

// Execute runs one ledger operation on behalf of principal.
//
// Gate order matters: ownership is checked before the cost policy so a
// caller probing tokens they do not own learns nothing, and the policy is
// checked before any ledger call so an unacknowledged mainnet operation
// spends nothing. Only after both gates does the request enter the
// serialized pipeline.
func (s *TransactionOrchestrator) Execute(ctx context.Context, principal *domain.User, req domain.OperationRequest) (*domain.OperationResult, error) {
	supplyKey, err := s.checkOwnership(ctx, principal, &req)
	if err != nil {
		return nil, err
	}

	decision := s.policy.Evaluate(req.Kind, req.AcknowledgedCost)
	if !decision.Proceed {
		s.log.Info().
			Str("user_id", principal.ID.String()).
			Str("kind", string(req.Kind)).
			Msg("operation held for cost acknowledgement")
		return &domain.OperationResult{
			Kind:     req.Kind,
			Outcome:  domain.OutcomeAckRequired,
			Estimate: decision.Estimate,
			Mode:     s.policy.Mode(),
		}, nil
	}

	subs, err := buildPlan(&req, supplyKey)
	if err != nil {
		return nil, err
	}

	var receipts []domain.Receipt
	execErr := s.serializer.WithExclusive(ctx, s.ledger.OperatorAccount(), func() error {
		for i, sub := range subs {
			rcpt, err := s.ledger.Submit(ctx, sub, receipts)
			if err != nil {
				var le *domain.LedgerError
				if !errors.As(err, &le) {
					le = &domain.LedgerError{Stage: domain.StageSubmit, Submitted: false, Err: err}
				}
				return &domain.PipelineError{
					Kind:        req.Kind,
					SubOpIndex:  i,
					TotalSubOps: len(subs),
					Completed:   receipts,
					Ledger:      le,
				}
			}
			receipts = append(receipts, *rcpt)
		}
		return nil
	})

	if execErr != nil {
		var pe *domain.PipelineError
		if errors.As(execErr, &pe) {
			return nil, s.recordFailure(ctx, principal, &req, pe)
		}
		// Cancelled or timed out while queued: nothing was submitted.
		return nil, execErr
	}

	return s.recordSuccess(ctx, principal, &req, receipts), nil
}

// checkOwnership verifies the principal may act on the referenced resource.
// It reads the asset record fresh on every call; ownership gates real
// spending and must never be answered from a cache. For mint operations the
// decrypted supply key is returned for pipeline use.
func (s *TransactionOrchestrator) checkOwnership(ctx context.Context, principal *domain.User, req *domain.OperationRequest) (string, error) {
	ref := req.ResourceRef()
	if ref == "" {
		return "", nil
	}

	record, err := s.assetRepo.GetByTokenID(ctx, ref)
	if err != nil {
		return "", apperror.ErrDatabaseError(fmt.Errorf("ownership lookup: %w", err))
	}
	// Absent and not-owned are indistinguishable to the caller.
	if record == nil || record.OwnerID != principal.ID {
		return "", apperror.ErrNotOwned("asset class")
	}

	switch req.Kind {
	case domain.OperationTransfer:
		if record.IsNFT() {
			return "", apperror.Validation("transfers require a fungible token class")
		}
	case domain.OperationMintItem:
		if !record.IsNFT() {
			return "", apperror.ErrNotNFTClass()
		}
		key, err := s.encSvc.Decrypt(record.SupplyKeyEnc)
		if err != nil {
			return "", apperror.ErrEncryptionFailure(fmt.Errorf("decrypt supply key: %w", err))
		}
		return key, nil
	}

	return "", nil
}

// buildPlan translates a request into the ordered sub-operations to run.
func buildPlan(req *domain.OperationRequest, supplyKey string) ([]domain.SubOperation, error) {
	switch req.Kind {
	case domain.OperationDeployContract:
		return []domain.SubOperation{
			domain.FileCreate{Contents: req.Deploy.Bytecode},
			domain.ContractCreate{
				Gas:               defaultContractGas,
				ConstructorParams: req.Deploy.ConstructorParams,
			},
		}, nil
	case domain.OperationCreateAssetClass:
		tc := domain.TokenCreate{
			Name:          req.CreateAsset.Name,
			Symbol:        req.CreateAsset.Symbol,
			Kind:          req.CreateAsset.Kind,
			Decimals:      req.CreateAsset.Decimals,
			InitialSupply: req.CreateAsset.InitialSupply,
		}
		// NFT collections mint serially up to a cap; the requested supply
		// becomes the cap instead of a pre-minted balance.
		if req.CreateAsset.Kind == domain.AssetKindNFT {
			tc.Decimals = 0
			tc.InitialSupply = 0
			tc.MaxSupply = int64(req.CreateAsset.InitialSupply)
		}
		return []domain.SubOperation{tc}, nil
	case domain.OperationTransfer:
		return []domain.SubOperation{
			domain.TokenTransfer{
				TokenID:   req.Transfer.TokenID,
				ToAccount: req.Transfer.ToAccount,
				Amount:    req.Transfer.Amount,
			},
		}, nil
	case domain.OperationMintItem:
		return []domain.SubOperation{
			domain.TokenMint{
				TokenID:   req.Mint.TokenID,
				Metadata:  req.Mint.Metadata,
				SupplyKey: supplyKey,
			},
		}, nil
	default:
		return nil, apperror.Validation(fmt.Sprintf("unknown operation kind: %s", req.Kind))
	}
}

// recordFailure persists the failure and maps it to the caller-facing
// error. Partially completed sub-operations are real, billed artifacts and
// are reported in the error details rather than discarded.
func (s *TransactionOrchestrator) recordFailure(ctx context.Context, principal *domain.User, req *domain.OperationRequest, pe *domain.PipelineError) error {
	status := domain.OperationStatusRejected
	if pe.Ledger.Indeterminate() {
		status = domain.OperationStatusIndeterminate
	}

	s.log.Error().
		Str("user_id", principal.ID.String()).
		Str("kind", string(req.Kind)).
		Str("stage", string(pe.Ledger.Stage)).
		Str("status", string(status)).
		Int("completed_sub_ops", len(pe.Completed)).
		Err(pe.Ledger.Err).
		Msg("ledger operation failed")

	detail := pe.Error()
	s.persistOperation(ctx, &domain.OperationRecord{
		ID:              uuid.New(),
		UserID:          principal.ID,
		Kind:            req.Kind,
		Status:          status,
		LedgerTxID:      pe.Ledger.TransactionID,
		ResourceRef:     req.ResourceRef(),
		StageReached:    pe.Ledger.Stage,
		CompletedSubOps: len(pe.Completed),
		TotalSubOps:     pe.TotalSubOps,
		Mode:            s.policy.Mode(),
		Detail:          &detail,
		CreatedAt:       time.Now().UTC(),
	})

	// The network may have charged for this attempt once submission was
	// reached, so it is audited even though it failed.
	if s.submissionReached(pe) {
		s.appendAudit(ctx, principal, req, pe.Ledger.TransactionID, pe.Ledger.Stage, status)
	}

	details := map[string]interface{}{
		"operation":   string(req.Kind),
		"stage":       string(pe.Ledger.Stage),
		"completed":   pe.Completed,
		"total_steps": pe.TotalSubOps,
	}

	if status == domain.OperationStatusIndeterminate {
		return apperror.ErrLedgerIndeterminate(pe).WithDetails(details)
	}
	return apperror.ErrLedgerRejected(pe).WithDetails(details)
}

// submissionReached reports whether any transaction of this operation was
// handed to the network.
func (s *TransactionOrchestrator) submissionReached(pe *domain.PipelineError) bool {
	return pe.Ledger.Submitted || len(pe.Completed) > 0
}

// recordSuccess materializes the confirmed receipts into local records.
// Persistence failures here never fail the operation: the ledger effect is
// already real, so the result is returned flagged for reconciliation.
func (s *TransactionOrchestrator) recordSuccess(ctx context.Context, principal *domain.User, req *domain.OperationRequest, receipts []domain.Receipt) *domain.OperationResult {
	now := time.Now().UTC()
	mode := s.policy.Mode()

	result := &domain.OperationResult{
		Kind:     req.Kind,
		Outcome:  domain.OutcomeConfirmed,
		Receipts: receipts,
		Mode:     mode,
	}
	if n := len(receipts); n > 0 {
		result.LedgerTxID = receipts[n-1].TransactionID
	}

	switch req.Kind {
	case domain.OperationDeployContract:
		fileRcpt, contractRcpt := receipts[0], receipts[1]
		result.FileID = fileRcpt.FileID
		result.ContractID = contractRcpt.ContractID
		result.ContractAddress = contractRcpt.ContractAddress

		if err := s.contractRepo.Create(ctx, &domain.ContractRecord{
			ID:              uuid.New(),
			OwnerID:         principal.ID,
			Name:            req.Deploy.Name,
			ContractID:      contractRcpt.ContractID,
			ContractAddress: contractRcpt.ContractAddress,
			BytecodeFileID:  fileRcpt.FileID,
			LedgerTxID:      contractRcpt.TransactionID,
			Mode:            mode,
			Status:          domain.ResourceStatusActive,
			CreatedAt:       now,
		}); err != nil {
			s.markPending(result, "contract record", err)
		}

	case domain.OperationCreateAssetClass:
		rcpt := receipts[0]
		result.TokenID = rcpt.TokenID

		record := &domain.AssetClassRecord{
			ID:            uuid.New(),
			OwnerID:       principal.ID,
			Name:          req.CreateAsset.Name,
			Symbol:        req.CreateAsset.Symbol,
			TokenID:       rcpt.TokenID,
			Kind:          req.CreateAsset.Kind,
			Decimals:      req.CreateAsset.Decimals,
			InitialSupply: req.CreateAsset.InitialSupply,
			LedgerTxID:    rcpt.TransactionID,
			Mode:          mode,
			Status:        domain.ResourceStatusActive,
			CreatedAt:     now,
		}
		keyEnc, err := s.encSvc.Encrypt(rcpt.SupplyKey)
		if err != nil {
			// The class exists on the ledger but minting into it needs the
			// key; surface via reconciliation rather than losing the class.
			s.markPending(result, "supply key encryption", err)
		} else {
			record.SupplyKeyEnc = keyEnc
		}
		record.PendingReconciliation = result.PendingReconciliation
		if err := s.assetRepo.Create(ctx, record); err != nil {
			s.markPending(result, "asset class record", err)
		}

	case domain.OperationMintItem:
		rcpt := receipts[0]
		// The class id comes from the request, not the receipt: receipts
		// confirm the mint but need not echo the collection back.
		result.TokenID = req.Mint.TokenID
		result.SerialNumbers = rcpt.SerialNumbers

		for _, serial := range rcpt.SerialNumbers {
			if err := s.itemRepo.Create(ctx, &domain.ItemRecord{
				ID:           uuid.New(),
				OwnerID:      principal.ID,
				TokenID:      req.Mint.TokenID,
				SerialNumber: serial,
				Metadata:     string(req.Mint.Metadata),
				LedgerTxID:   rcpt.TransactionID,
				Mode:         mode,
				MintedAt:     now,
			}); err != nil {
				s.markPending(result, "item record", err)
			}
		}

	case domain.OperationTransfer:
		result.TokenID = req.Transfer.TokenID
	}

	// Key material stays out of everything returned to callers.
	for i := range result.Receipts {
		result.Receipts[i].SupplyKey = ""
	}

	s.persistOperation(ctx, &domain.OperationRecord{
		ID:                    uuid.New(),
		UserID:                principal.ID,
		Kind:                  req.Kind,
		Status:                domain.OperationStatusConfirmed,
		LedgerTxID:            result.LedgerTxID,
		ResourceRef:           req.ResourceRef(),
		StageReached:          domain.StageConfirm,
		CompletedSubOps:       len(receipts),
		TotalSubOps:           len(receipts),
		Mode:                  mode,
		PendingReconciliation: result.PendingReconciliation,
		CreatedAt:             now,
	})

	s.appendAudit(ctx, principal, req, result.LedgerTxID, domain.StageConfirm, domain.OperationStatusConfirmed)

	s.log.Info().
		Str("user_id", principal.ID.String()).
		Str("kind", string(req.Kind)).
		Str("ledger_tx_id", result.LedgerTxID).
		Bool("pending_reconciliation", result.PendingReconciliation).
		Msg("operation confirmed")

	return result
}

// markPending flags the result for reconciliation after a confirmed ledger
// effect could not be fully recorded locally.
func (s *TransactionOrchestrator) markPending(result *domain.OperationResult, what string, err error) {
	result.PendingReconciliation = true
	s.log.Error().
		Err(err).
		Str("kind", string(result.Kind)).
		Str("ledger_tx_id", result.LedgerTxID).
		Msgf("confirmed on ledger but %s failed, flagged for reconciliation", what)
}

// persistOperation writes the history record; failures are logged, never
// surfaced, since the record is derived state.
func (s *TransactionOrchestrator) persistOperation(ctx context.Context, record *domain.OperationRecord) {
	if err := s.opRepo.Create(ctx, record); err != nil {
		s.log.Error().
			Err(err).
			Str("kind", string(record.Kind)).
			Str("status", string(record.Status)).
			Msg("failed to persist operation record")
	}
}

// appendAudit writes the audit entry for high-stakes operations. Testnet
// runs are not audited.
func (s *TransactionOrchestrator) appendAudit(ctx context.Context, principal *domain.User, req *domain.OperationRequest, ledgerTxID string, stage domain.PipelineStage, outcome domain.OperationStatus) {
	mode := s.policy.Mode()
	if !mode.HighStakes() {
		return
	}
	if err := s.auditSvc.Append(ctx, &domain.AuditEntry{
		ID:           uuid.New(),
		UserID:       principal.ID,
		Kind:         req.Kind,
		ResourceRef:  req.ResourceRef(),
		LedgerTxID:   ledgerTxID,
		StageReached: stage,
		Outcome:      outcome,
		Mode:         mode,
		CreatedAt:    time.Now().UTC(),
	}); err != nil {
		s.log.Error().
			Err(err).
			Str("kind", string(req.Kind)).
			Str("ledger_tx_id", ledgerTxID).
			Msg("failed to append audit entry")
	}
}
