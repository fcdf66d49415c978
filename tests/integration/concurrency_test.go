package integration

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"testing"
	"time"

	"hedera-asset-gateway/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// All concurrent requests share one signing identity. The stub ledger
// tracks how many submissions overlap; with the serializer in place the
// high-water mark must stay at one no matter how many callers race.
func TestConcurrentOperations_MutualExclusion(t *testing.T) {
	env := setupEnv(t, domain.NetworkModeTestnet, true)
	token := env.registerAndLogin(t, "racer")

	// A fungible class to transfer out of.
	w := env.do(t, http.MethodPost, "/api/v1/assets/create", token, map[string]interface{}{
		"name":           "Race Credits",
		"symbol":         "RCE",
		"kind":           "fungible",
		"decimals":       2,
		"initial_supply": 1000000,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assetID, _ := dataField(t, w, "asset_id").(string)
	callsBefore := env.ledger.callCount()

	env.ledger.mu.Lock()
	env.ledger.delay = 10 * time.Millisecond
	env.ledger.mu.Unlock()

	const n = 8
	var wg sync.WaitGroup
	codes := make([]int, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			resp := env.do(t, http.MethodPost, "/api/v1/assets/transfer", token, map[string]interface{}{
				"asset_id":   assetID,
				"to_account": "0.0.9009",
				"amount":     100 + i,
			})
			codes[i] = resp.Code
		}(i)
	}
	wg.Wait()

	for i, code := range codes {
		assert.Equal(t, http.StatusCreated, code, "transfer %d failed", i)
	}
	assert.Equal(t, callsBefore+n, env.ledger.callCount())

	env.ledger.mu.Lock()
	defer env.ledger.mu.Unlock()
	assert.Equal(t, 1, env.ledger.maxActive, "submissions must never overlap")
}

// Requests that arrive one after another must hit the ledger in arrival
// order even when earlier ones are still executing.
func TestConcurrentOperations_FIFOOrder(t *testing.T) {
	env := setupEnv(t, domain.NetworkModeTestnet, true)
	token := env.registerAndLogin(t, "queuer")

	w := env.do(t, http.MethodPost, "/api/v1/assets/create", token, map[string]interface{}{
		"name":           "Queue Credits",
		"symbol":         "QUE",
		"kind":           "fungible",
		"decimals":       0,
		"initial_supply": 1000,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assetID, _ := dataField(t, w, "asset_id").(string)

	// Each submission holds the identity long enough for the next request
	// to arrive and queue behind it.
	env.ledger.mu.Lock()
	env.ledger.delay = 40 * time.Millisecond
	env.ledger.mu.Unlock()

	const n = 5
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			resp := env.do(t, http.MethodPost, "/api/v1/assets/transfer", token, map[string]interface{}{
				"asset_id":   assetID,
				"to_account": "0.0.9009",
				"amount":     i + 1,
			})
			assert.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
		}(i)
		// Space arrivals so queue order is deterministic.
		time.Sleep(15 * time.Millisecond)
	}
	wg.Wait()

	env.ledger.mu.Lock()
	amounts := append([]int64(nil), env.ledger.transferAmounts...)
	env.ledger.mu.Unlock()

	require.Len(t, amounts, n)
	for i, amount := range amounts {
		assert.Equal(t, int64(i+1), amount, "submission order diverged from arrival order: %v", amounts)
	}
}

// A burst against distinct histories must not corrupt any of them: each
// user sees exactly their own operations afterwards.
func TestConcurrentUsers_IsolatedHistories(t *testing.T) {
	env := setupEnv(t, domain.NetworkModeTestnet, true)

	const users = 4
	tokens := make([]string, users)
	for i := 0; i < users; i++ {
		tokens[i] = env.registerAndLogin(t, fmt.Sprintf("user%d", i))
	}

	var wg sync.WaitGroup
	for i := 0; i < users; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			resp := env.do(t, http.MethodPost, "/api/v1/assets/create", tokens[i], map[string]interface{}{
				"name":           fmt.Sprintf("Class %d", i),
				"symbol":         fmt.Sprintf("U%d", i),
				"kind":           "fungible",
				"initial_supply": 100,
			})
			assert.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
		}(i)
	}
	wg.Wait()

	for i := 0; i < users; i++ {
		w := env.do(t, http.MethodGet, "/api/v1/operations", tokens[i], nil)
		require.Equal(t, http.StatusOK, w.Code)
		var envelope struct {
			Data []domain.OperationRecord `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
		assert.Len(t, envelope.Data, 1, "user %d history", i)
	}
}
