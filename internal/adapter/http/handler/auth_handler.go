package handler

import (
	"net/http"

	"hedera-asset-gateway/internal/adapter/http/dto"
	"hedera-asset-gateway/internal/adapter/http/middleware"
	"hedera-asset-gateway/internal/core/domain"
	"hedera-asset-gateway/internal/core/ports"
	"hedera-asset-gateway/pkg/apperror"
	"hedera-asset-gateway/pkg/response"

	"github.com/gin-gonic/gin"
)

// AuthHandler handles authentication and wallet-link endpoints.
type AuthHandler struct {
	authSvc ports.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authSvc ports.AuthService) *AuthHandler {
	return &AuthHandler{authSvc: authSvc}
}

// Register handles POST /api/v1/auth/register.
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	token, err := h.authSvc.Register(c.Request.Context(), ports.RegisterRequest{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		FullName: req.FullName,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.AuthResponse{
		Token:     token.Token,
		ExpiresAt: token.ExpiresAt.Unix(),
	})
}

// Login handles POST /api/v1/auth/login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	token, err := h.authSvc.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.AuthResponse{
		Token:     token.Token,
		ExpiresAt: token.ExpiresAt.Unix(),
	})
}

// ConnectWallet handles POST /api/v1/auth/wallet-connect.
func (h *AuthHandler) ConnectWallet(c *gin.Context) {
	user, ok := principal(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	var req dto.WalletConnectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	err := h.authSvc.ConnectWallet(c.Request.Context(), user.ID, ports.WalletConnectRequest{
		AccountID: req.AccountID,
		PublicKey: req.PublicKey,
		Signature: req.Signature,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.WalletConnectResponse{
		AccountID: req.AccountID,
		Connected: true,
	})
}

// principal returns the resolved user placed in context by JWTAuth.
func principal(c *gin.Context) (*domain.User, bool) {
	v, ok := c.Get(middleware.CtxUserKey)
	if !ok {
		return nil, false
	}
	user, ok := v.(*domain.User)
	return user, ok
}

// HealthCheck handles GET /health — deep health check verifying all dependencies.
func HealthCheck(checkers ...ports.HealthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		type depStatus struct {
			Status string `json:"status"`
			Error  string `json:"error,omitempty"`
		}

		deps := make(map[string]depStatus)
		allHealthy := true

		for _, checker := range checkers {
			if err := checker.Ping(c.Request.Context()); err != nil {
				deps[checker.Name()] = depStatus{Status: "unhealthy", Error: err.Error()}
				allHealthy = false
			} else {
				deps[checker.Name()] = depStatus{Status: "healthy"}
			}
		}

		status := "healthy"
		httpCode := http.StatusOK
		if !allHealthy {
			status = "degraded"
			httpCode = http.StatusServiceUnavailable
		}

		c.JSON(httpCode, gin.H{
			"status":       status,
			"dependencies": deps,
		})
	}
}
