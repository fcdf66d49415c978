package handler

import (
	"hedera-asset-gateway/internal/adapter/http/middleware"
	redisStore "hedera-asset-gateway/internal/adapter/storage/redis"
	"hedera-asset-gateway/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// RouterDeps holds all dependencies needed to set up routes.
type RouterDeps struct {
	AuthSvc        ports.AuthService
	Orchestrator   ports.Orchestrator
	ReportingSvc   ports.ReportingService
	AuditSvc       ports.AuditService
	Policy         ports.ModePolicy
	TokenSvc       ports.TokenService
	UserRepo       ports.UserRepository
	RateLimitStore *redisStore.RateLimitStore // nil = rate limiting disabled
	HealthCheckers []ports.HealthChecker
	Logger         zerolog.Logger
}

// SetupRouter initialises the Gin engine with all routes and middleware.
func SetupRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(middleware.MaxBodySize(1 << 20)) // 1 MB request body limit

	// Health check (deep — verifies PostgreSQL + Redis + Hedera)
	r.GET("/health", HealthCheck(deps.HealthCheckers...))

	// Rate limit rules
	rules := middleware.DefaultRateLimitRules()

	// Helper: return rate limiter middleware if store is available, else noop.
	rl := func(group string) gin.HandlerFunc {
		if deps.RateLimitStore == nil {
			return func(c *gin.Context) { c.Next() }
		}
		rule, ok := rules[group]
		if !ok {
			return func(c *gin.Context) { c.Next() }
		}
		return middleware.RateLimiter(deps.RateLimitStore, group, rule, deps.Logger)
	}

	// API v1 routes
	v1 := r.Group("/api/v1")

	// --- Public routes (no auth) ---
	authHandler := NewAuthHandler(deps.AuthSvc)
	auth := v1.Group("/auth")
	{
		auth.POST("/register", rl("auth_register"), authHandler.Register)
		auth.POST("/login", rl("auth_login"), authHandler.Login)
	}

	// --- JWT-authenticated routes ---
	jwtAuth := middleware.JWTAuth(deps.TokenSvc, deps.UserRepo, deps.Logger)
	operationHandler := NewOperationHandler(deps.Orchestrator)
	accountHandler := NewAccountHandler(deps.ReportingSvc, deps.AuditSvc, deps.Policy)

	v1.POST("/auth/wallet-connect", jwtAuth, rl("auth_login"), authHandler.ConnectWallet)

	contracts := v1.Group("/contracts", jwtAuth)
	{
		contracts.POST("/deploy", rl("operations"), operationHandler.DeployContract)
		contracts.GET("", rl("reads"), accountHandler.ListContracts)
	}

	assets := v1.Group("/assets", jwtAuth)
	{
		assets.POST("/create", rl("operations"), operationHandler.CreateAssetClass)
		assets.POST("/transfer", rl("operations"), operationHandler.Transfer)
		assets.POST("/mint", rl("operations"), operationHandler.MintItem)
		assets.GET("", rl("reads"), accountHandler.ListAssets)
	}

	v1.GET("/items", jwtAuth, rl("reads"), accountHandler.ListItems)
	v1.GET("/operations", jwtAuth, rl("reads"), accountHandler.ListOperations)

	account := v1.Group("/account", jwtAuth)
	{
		account.GET("/balance", rl("balance"), accountHandler.GetBalance)
		account.GET("/audit", rl("reads"), accountHandler.ListAudit)
	}

	v1.GET("/costs/estimate/:kind", jwtAuth, rl("reads"), accountHandler.EstimateCost)

	return r
}
