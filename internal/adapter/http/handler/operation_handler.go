package handler

import (
	"encoding/hex"
	"strings"

	"hedera-asset-gateway/internal/adapter/http/dto"
	"hedera-asset-gateway/internal/core/domain"
	"hedera-asset-gateway/internal/core/ports"
	"hedera-asset-gateway/pkg/apperror"
	"hedera-asset-gateway/pkg/response"

	"github.com/gin-gonic/gin"
)

// OperationHandler handles the state-changing ledger operation endpoints.
// Every endpoint funnels into the orchestrator; the handler's job is input
// decoding and mapping the ack-required outcome onto the error envelope.
type OperationHandler struct {
	orchestrator ports.Orchestrator
}

// NewOperationHandler creates a new OperationHandler.
func NewOperationHandler(orchestrator ports.Orchestrator) *OperationHandler {
	return &OperationHandler{orchestrator: orchestrator}
}

// DeployContract handles POST /api/v1/contracts/deploy.
func (h *OperationHandler) DeployContract(c *gin.Context) {
	user, ok := principal(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	var req dto.DeployContractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	bytecode, err := hex.DecodeString(strings.TrimPrefix(req.Bytecode, "0x"))
	if err != nil {
		response.Error(c, apperror.Validation("bytecode is not valid hex"))
		return
	}

	h.execute(c, user, domain.OperationRequest{
		Kind:             domain.OperationDeployContract,
		AcknowledgedCost: req.AcknowledgedCost,
		Deploy: &domain.DeployContractParams{
			Name:              req.ContractName,
			Bytecode:          bytecode,
			ConstructorParams: req.ConstructorParams,
		},
	})
}

// CreateAssetClass handles POST /api/v1/assets/create.
func (h *OperationHandler) CreateAssetClass(c *gin.Context) {
	user, ok := principal(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	var req dto.CreateAssetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	kind := domain.AssetKind(req.Kind)
	if kind == domain.AssetKindNFT && req.Decimals != 0 {
		response.Error(c, apperror.Validation("nft classes have no decimals"))
		return
	}

	h.execute(c, user, domain.OperationRequest{
		Kind:             domain.OperationCreateAssetClass,
		AcknowledgedCost: req.AcknowledgedCost,
		CreateAsset: &domain.CreateAssetClassParams{
			Name:          req.Name,
			Symbol:        req.Symbol,
			Decimals:      req.Decimals,
			InitialSupply: req.InitialSupply,
			Kind:          kind,
		},
	})
}

// Transfer handles POST /api/v1/assets/transfer.
func (h *OperationHandler) Transfer(c *gin.Context) {
	user, ok := principal(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	var req dto.TransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	h.execute(c, user, domain.OperationRequest{
		Kind:             domain.OperationTransfer,
		AcknowledgedCost: req.AcknowledgedCost,
		Transfer: &domain.TransferParams{
			TokenID:   req.AssetID,
			ToAccount: req.ToAccount,
			Amount:    req.Amount,
		},
	})
}

// MintItem handles POST /api/v1/assets/mint.
func (h *OperationHandler) MintItem(c *gin.Context) {
	user, ok := principal(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	var req dto.MintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	h.execute(c, user, domain.OperationRequest{
		Kind:             domain.OperationMintItem,
		AcknowledgedCost: req.AcknowledgedCost,
		Mint: &domain.MintItemParams{
			TokenID:  req.AssetID,
			Metadata: req.Metadata,
		},
	})
}

// execute runs the orchestration and writes the response. An ack-required
// outcome comes back as a nil-error result and is surfaced as POL_001 with
// the estimate in the details payload.
func (h *OperationHandler) execute(c *gin.Context, user *domain.User, req domain.OperationRequest) {
	result, err := h.orchestrator.Execute(c.Request.Context(), user, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	if result.Outcome == domain.OutcomeAckRequired {
		response.Error(c, apperror.ErrAckRequired(result.Estimate))
		return
	}

	response.Created(c, dto.ToOperationResponse(result))
}
