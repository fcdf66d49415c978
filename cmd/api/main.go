package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"hedera-asset-gateway/config"
	httpHandler "hedera-asset-gateway/internal/adapter/http/handler"
	"hedera-asset-gateway/internal/adapter/ledger/hedera"
	pgStorage "hedera-asset-gateway/internal/adapter/storage/postgres"
	redisStorage "hedera-asset-gateway/internal/adapter/storage/redis"
	"hedera-asset-gateway/internal/core/domain"
	"hedera-asset-gateway/internal/core/ports"
	"hedera-asset-gateway/internal/service"
	"hedera-asset-gateway/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.New(cfg.Log.Level, cfg.Log.Pretty)

	log.Info().
		Str("mode", cfg.Server.Mode).
		Str("network", cfg.Ledger.Network).
		Int("port", cfg.Server.Port).
		Msg("Starting Hedera Asset Gateway")

	ctx := context.Background()

	// Initialize PostgreSQL pool
	pool, err := pgStorage.NewPool(ctx, cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()
	log.Info().Msg("PostgreSQL connected")

	// Initialize Redis client
	rdb, err := redisStorage.NewClient(ctx, cfg.Redis, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()
	log.Info().Msg("Redis connected")

	// Initialize the Hedera ledger client (operator identity loaded once)
	ledgerClient, err := hedera.NewClient(cfg.Ledger, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize Hedera client")
	}
	defer ledgerClient.Close()
	log.Info().Str("operator", ledgerClient.OperatorAccount()).Msg("Hedera client ready")

	// Initialize repositories
	userRepo := pgStorage.NewUserRepo(pool)
	contractRepo := pgStorage.NewContractRepo(pool)
	assetRepo := pgStorage.NewAssetRepo(pool)
	itemRepo := pgStorage.NewItemRepo(pool)
	opRepo := pgStorage.NewOperationRepo(pool)
	auditRepo := pgStorage.NewAuditRepository(pool)

	// Initialize Redis stores
	balanceCache := redisStorage.NewBalanceCache(rdb)
	rateLimitStore := redisStorage.NewRateLimitStore(rdb)

	// Initialize core services
	encSvc, err := service.NewAESEncryptionService(cfg.AES.Key)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize encryption service")
	}
	hashSvc := service.NewArgon2HashService()
	tokenSvc := service.NewJWTTokenService(cfg.JWT.Secret, cfg.JWT.Expiry, cfg.JWT.Issuer)

	// Initialize business services
	mode := domain.NetworkModeTestnet
	if cfg.Ledger.IsMainnet() {
		mode = domain.NetworkModeMainnet
	}
	policy := service.NewNetworkModePolicy(mode, cfg.Ledger.CostAckEnabled)
	serializer := service.NewFIFOSerializer()

	authSvc := service.NewAuthService(userRepo, hashSvc, tokenSvc)
	auditSvc := service.NewAuditService(auditRepo, log)
	orchestrator := service.NewTransactionOrchestrator(
		ledgerClient,
		policy,
		serializer,
		contractRepo,
		assetRepo,
		itemRepo,
		opRepo,
		auditSvc,
		encSvc,
		log,
	)
	reportingSvc := service.NewReportingService(contractRepo, assetRepo, itemRepo, opRepo, ledgerClient, balanceCache, log)

	// Initialize health checkers
	pgHealth := pgStorage.NewHealthCheck(pool)
	redisHealth := redisStorage.NewHealthCheck(rdb)
	ledgerHealth := hedera.NewHealthCheck(ledgerClient)

	// Setup Gin router with all routes
	router := httpHandler.SetupRouter(httpHandler.RouterDeps{
		AuthSvc:        authSvc,
		Orchestrator:   orchestrator,
		ReportingSvc:   reportingSvc,
		AuditSvc:       auditSvc,
		Policy:         policy,
		TokenSvc:       tokenSvc,
		UserRepo:       userRepo,
		RateLimitStore: rateLimitStore,
		HealthCheckers: []ports.HealthChecker{pgHealth, redisHealth, ledgerHealth},
		Logger:         log,
	})

	// HTTP Server with graceful shutdown
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("addr", addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}
