package handler

import (
	"strconv"

	"hedera-asset-gateway/internal/core/domain"
	"hedera-asset-gateway/internal/core/ports"
	"hedera-asset-gateway/pkg/apperror"
	"hedera-asset-gateway/pkg/response"

	"github.com/gin-gonic/gin"
)

// AccountHandler serves read views: owned resources, operation history,
// the audit trail, the operator balance, and cost estimates.
type AccountHandler struct {
	reportingSvc ports.ReportingService
	auditSvc     ports.AuditService
	policy       ports.ModePolicy
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(reportingSvc ports.ReportingService, auditSvc ports.AuditService, policy ports.ModePolicy) *AccountHandler {
	return &AccountHandler{
		reportingSvc: reportingSvc,
		auditSvc:     auditSvc,
		policy:       policy,
	}
}

// ListContracts handles GET /api/v1/contracts.
func (h *AccountHandler) ListContracts(c *gin.Context) {
	user, ok := principal(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	contracts, err := h.reportingSvc.ListContracts(c.Request.Context(), user.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, contracts)
}

// ListAssets handles GET /api/v1/assets.
func (h *AccountHandler) ListAssets(c *gin.Context) {
	user, ok := principal(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	assets, err := h.reportingSvc.ListAssets(c.Request.Context(), user.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, assets)
}

// ListItems handles GET /api/v1/items.
func (h *AccountHandler) ListItems(c *gin.Context) {
	user, ok := principal(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	items, err := h.reportingSvc.ListItems(c.Request.Context(), user.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, items)
}

// ListOperations handles GET /api/v1/operations.
func (h *AccountHandler) ListOperations(c *gin.Context) {
	user, ok := principal(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	limit := parseLimit(c.Query("limit"), 50, 200)
	ops, err := h.reportingSvc.ListOperations(c.Request.Context(), user.ID, limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, ops)
}

// ListAudit handles GET /api/v1/account/audit.
func (h *AccountHandler) ListAudit(c *gin.Context) {
	user, ok := principal(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	limit := parseLimit(c.Query("limit"), 20, 100)
	entries, err := h.auditSvc.ListForUser(c.Request.Context(), user.ID, limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, entries)
}

// GetBalance handles GET /api/v1/account/balance.
func (h *AccountHandler) GetBalance(c *gin.Context) {
	snapshot, err := h.reportingSvc.Balance(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, snapshot)
}

// EstimateCost handles GET /api/v1/costs/estimate/:kind.
func (h *AccountHandler) EstimateCost(c *gin.Context) {
	kind := domain.OperationKind(c.Param("kind"))
	switch kind {
	case domain.OperationDeployContract, domain.OperationCreateAssetClass,
		domain.OperationTransfer, domain.OperationMintItem:
	default:
		response.Error(c, apperror.Validation("unknown operation kind"))
		return
	}

	response.OK(c, h.policy.Estimate(kind))
}

// parseLimit parses a limit query parameter with a default and a cap.
func parseLimit(raw string, def, max int) int {
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return def
	}
	if n > max {
		return max
	}
	return n
}
