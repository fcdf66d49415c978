package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"hedera-asset-gateway/internal/adapter/http/handler"
	redisStorage "hedera-asset-gateway/internal/adapter/storage/redis"
	"hedera-asset-gateway/internal/core/domain"
	"hedera-asset-gateway/internal/core/ports"
	"hedera-asset-gateway/internal/service"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testAESKey    = "0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef"
	testJWTSecret = "integration-test-secret"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// testEnv wires the full stack: real services and router, in-memory
// repositories, a scripted ledger client, and miniredis for the caches.
type testEnv struct {
	router    *gin.Engine
	ledger    *stubLedger
	userRepo  *inMemoryUserRepo
	assetRepo *inMemoryAssetRepo
	auditRepo *inMemoryAuditRepo
}

func setupEnv(t *testing.T, mode domain.NetworkMode, ackEnabled bool) *testEnv {
	t.Helper()

	userRepo := newInMemoryUserRepo()
	contractRepo := newInMemoryContractRepo()
	assetRepo := newInMemoryAssetRepo()
	itemRepo := newInMemoryItemRepo()
	opRepo := newInMemoryOperationRepo()
	auditRepo := newInMemoryAuditRepo()
	ledger := newStubLedger()

	mr := miniredis.RunT(t)
	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	log := zerolog.Nop()

	encSvc, err := service.NewAESEncryptionService(testAESKey)
	require.NoError(t, err)
	hashSvc := service.NewArgon2HashService()
	tokenSvc := service.NewJWTTokenService(testJWTSecret, time.Hour, "hedera-asset-gateway")

	policy := service.NewNetworkModePolicy(mode, ackEnabled)
	serializer := service.NewFIFOSerializer()

	authSvc := service.NewAuthService(userRepo, hashSvc, tokenSvc)
	auditSvc := service.NewAuditService(auditRepo, log)
	orchestrator := service.NewTransactionOrchestrator(
		ledger, policy, serializer,
		contractRepo, assetRepo, itemRepo, opRepo,
		auditSvc, encSvc, log,
	)
	reportingSvc := service.NewReportingService(
		contractRepo, assetRepo, itemRepo, opRepo,
		ledger, redisStorage.NewBalanceCache(rdb), log,
	)

	router := handler.SetupRouter(handler.RouterDeps{
		AuthSvc:        authSvc,
		Orchestrator:   orchestrator,
		ReportingSvc:   reportingSvc,
		AuditSvc:       auditSvc,
		Policy:         policy,
		TokenSvc:       tokenSvc,
		UserRepo:       userRepo,
		HealthCheckers: []ports.HealthChecker{},
		Logger:         log,
	})

	return &testEnv{
		router:    router,
		ledger:    ledger,
		userRepo:  userRepo,
		assetRepo: assetRepo,
		auditRepo: auditRepo,
	}
}

func (e *testEnv) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) registerAndLogin(t *testing.T, username string) string {
	t.Helper()
	w := e.do(t, http.MethodPost, "/api/v1/auth/register", "", map[string]interface{}{
		"username": username,
		"email":    username + "@example.com",
		"password": "password123",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = e.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]interface{}{
		"username": username,
		"password": "password123",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var envelope struct {
		Data struct {
			Token string `json:"token"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.NotEmpty(t, envelope.Data.Token)
	return envelope.Data.Token
}

func dataField(t *testing.T, w *httptest.ResponseRecorder, field string) interface{} {
	t.Helper()
	var envelope struct {
		Data map[string]interface{} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	return envelope.Data[field]
}

func TestCreateNFTClass_MainnetAckFlow(t *testing.T) {
	env := setupEnv(t, domain.NetworkModeMainnet, true)
	token := env.registerAndLogin(t, "alice")

	// Without acknowledged_cost: held with the estimate, nothing spent.
	w := env.do(t, http.MethodPost, "/api/v1/assets/create", token, map[string]interface{}{
		"name":           "Guild Relics",
		"symbol":         "RLC",
		"kind":           "nft",
		"initial_supply": 100,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	var envelope struct {
		ErrorCode string `json:"error_code"`
		Details   struct {
			Operation string `json:"operation"`
		} `json:"details"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Equal(t, "POL_001", envelope.ErrorCode)
	assert.Equal(t, "create-asset-class", envelope.Details.Operation)
	assert.Equal(t, 0, env.ledger.callCount(), "held operation must not reach the ledger")

	// Same call with the acknowledgement set goes through.
	w = env.do(t, http.MethodPost, "/api/v1/assets/create", token, map[string]interface{}{
		"name":              "Guild Relics",
		"symbol":            "RLC",
		"kind":              "nft",
		"initial_supply":    100,
		"acknowledged_cost": true,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assetID, _ := dataField(t, w, "asset_id").(string)
	assert.NotEmpty(t, assetID)
	assert.Equal(t, 1, env.ledger.callCount())

	// Mainnet submission leaves an audit entry.
	assert.Equal(t, 1, env.auditRepo.count())

	// The stored class carries an encrypted supply key, not the plaintext.
	stored, err := env.assetRepo.GetByTokenID(context.Background(), assetID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.NotEmpty(t, stored.SupplyKeyEnc)
	assert.NotContains(t, stored.SupplyKeyEnc, "stub-supply-key")
}

func TestMintIntoForeignClass_NoLedgerCalls(t *testing.T) {
	env := setupEnv(t, domain.NetworkModeTestnet, true)

	// U creates an NFT class.
	tokenU := env.registerAndLogin(t, "owner")
	w := env.do(t, http.MethodPost, "/api/v1/assets/create", tokenU, map[string]interface{}{
		"name":           "Guild Relics",
		"symbol":         "RLC",
		"kind":           "nft",
		"initial_supply": 10,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assetID, _ := dataField(t, w, "asset_id").(string)
	callsAfterCreate := env.ledger.callCount()

	// V tries to mint into U's class.
	tokenV := env.registerAndLogin(t, "intruder")
	w = env.do(t, http.MethodPost, "/api/v1/assets/mint", tokenV, map[string]interface{}{
		"asset_id": assetID,
		"metadata": map[string]string{"name": "Relic #1"},
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "OWN_001")
	assert.Equal(t, callsAfterCreate, env.ledger.callCount(), "ownership refusal must not reach the ledger")

	// An absent class gets the same answer.
	w = env.do(t, http.MethodPost, "/api/v1/assets/mint", tokenV, map[string]interface{}{
		"asset_id": "0.0.99999",
		"metadata": map[string]string{"name": "Relic #1"},
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "OWN_001")
}

func TestMintIntoOwnClass_Succeeds(t *testing.T) {
	env := setupEnv(t, domain.NetworkModeTestnet, true)
	token := env.registerAndLogin(t, "minter")

	w := env.do(t, http.MethodPost, "/api/v1/assets/create", token, map[string]interface{}{
		"name":           "Guild Relics",
		"symbol":         "RLC",
		"kind":           "nft",
		"initial_supply": 10,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assetID, _ := dataField(t, w, "asset_id").(string)

	w = env.do(t, http.MethodPost, "/api/v1/assets/mint", token, map[string]interface{}{
		"asset_id": assetID,
		"metadata": map[string]string{"name": "Relic #1"},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	serials, _ := dataField(t, w, "serial_numbers").([]interface{})
	assert.Len(t, serials, 1)

	// The minted item shows up in the owner's list.
	w = env.do(t, http.MethodGet, "/api/v1/items", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), assetID)
}

func TestOperations_ReplayIdempotence(t *testing.T) {
	env := setupEnv(t, domain.NetworkModeTestnet, true)
	token := env.registerAndLogin(t, "history")

	for i := 0; i < 3; i++ {
		w := env.do(t, http.MethodPost, "/api/v1/assets/create", token, map[string]interface{}{
			"name":           fmt.Sprintf("Class %d", i),
			"symbol":         fmt.Sprintf("C%d", i),
			"kind":           "fungible",
			"decimals":       2,
			"initial_supply": 1000,
		})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	}

	first := env.do(t, http.MethodGet, "/api/v1/operations", token, nil)
	second := env.do(t, http.MethodGet, "/api/v1/operations", token, nil)
	require.Equal(t, http.StatusOK, first.Code)
	require.Equal(t, http.StatusOK, second.Code)

	var a, b struct {
		Data []domain.OperationRecord `json:"data"`
	}
	require.NoError(t, json.Unmarshal(first.Body.Bytes(), &a))
	require.NoError(t, json.Unmarshal(second.Body.Bytes(), &b))
	assert.Equal(t, a.Data, b.Data, "replayed history must be identical")
	assert.Len(t, a.Data, 3)
}

func TestTestnetOperations_NotAudited(t *testing.T) {
	env := setupEnv(t, domain.NetworkModeTestnet, true)
	token := env.registerAndLogin(t, "quiet")

	w := env.do(t, http.MethodPost, "/api/v1/assets/create", token, map[string]interface{}{
		"name":           "Sandbox",
		"symbol":         "SBX",
		"kind":           "fungible",
		"initial_supply": 100,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, 0, env.auditRepo.count(), "testnet runs must leave no audit entries")
}

func TestWalletConnect_SetOnce(t *testing.T) {
	env := setupEnv(t, domain.NetworkModeTestnet, true)
	token := env.registerAndLogin(t, "wallet")

	body := map[string]interface{}{
		"account_id": "0.0.5005",
		"public_key": "302a300506032b6570032100aabb",
		"signature":  "deadbeef",
	}
	w := env.do(t, http.MethodPost, "/api/v1/auth/wallet-connect", token, body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// Second link attempt is refused.
	w = env.do(t, http.MethodPost, "/api/v1/auth/wallet-connect", token, body)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "VAL_001")
}

func TestBalance_Cached(t *testing.T) {
	env := setupEnv(t, domain.NetworkModeTestnet, true)
	token := env.registerAndLogin(t, "watcher")

	w := env.do(t, http.MethodGet, "/api/v1/account/balance", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "0.0.1001")

	w = env.do(t, http.MethodGet, "/api/v1/account/balance", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestProtectedRoute_NoToken(t *testing.T) {
	env := setupEnv(t, domain.NetworkModeTestnet, true)

	w := env.do(t, http.MethodGet, "/api/v1/assets", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "AUTH_003")
}
