package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Artfain/dat-exchange/core"
)

func newTestRouter(t *testing.T) (*gin.Engine, *core.Exchange) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	exchange := core.NewExchange("node-test", zerolog.Nop(), nil)
	router := gin.New()
	NewServer(exchange, nil, zerolog.Nop()).Register(router)
	return router, exchange
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body any) (*httptest.ResponseRecorder, map[string]json.RawMessage) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	resp := map[string]json.RawMessage{}
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	}
	return rec, resp
}

func errorField(t *testing.T, resp map[string]json.RawMessage) string {
	t.Helper()
	var msg string
	require.NoError(t, json.Unmarshal(resp["error"], &msg))
	return msg
}

func TestCreateWalletEndpoint(t *testing.T) {
	router, _ := newTestRouter(t)

	rec, resp := doJSON(t, router, http.MethodPost, "/create_wallet", gin.H{"user_address": "alice"})
	assert.Equal(t, http.StatusCreated, rec.Code)
	var balance int64
	require.NoError(t, json.Unmarshal(resp["initial_balance"], &balance))
	assert.Equal(t, core.DefaultInitialBalance, balance)

	rec, resp = doJSON(t, router, http.MethodPost, "/create_wallet", gin.H{"user_address": "alice"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Wallet already exists", errorField(t, resp))

	rec, resp = doJSON(t, router, http.MethodPost, "/create_wallet", gin.H{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Missing user_address", errorField(t, resp))
}

func TestCreateAssetEndpoint(t *testing.T) {
	router, _ := newTestRouter(t)
	doJSON(t, router, http.MethodPost, "/create_wallet", gin.H{"user_address": "alice"})

	rec, _ := doJSON(t, router, http.MethodPost, "/create_asset", gin.H{
		"asset_id":        "x1",
		"name":            "First",
		"description":     "an asset",
		"creator_address": "alice",
		"metadata":        gin.H{"rarity": "common"},
	})
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec, resp := doJSON(t, router, http.MethodPost, "/create_asset", gin.H{
		"asset_id":        "x2",
		"name":            "Second",
		"description":     "an asset",
		"creator_address": "ghost",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Asset creation failed or creator not found", errorField(t, resp))

	rec, _ = doJSON(t, router, http.MethodPost, "/create_asset", gin.H{"asset_id": "x3"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTradeFlowOverHTTP(t *testing.T) {
	router, _ := newTestRouter(t)
	doJSON(t, router, http.MethodPost, "/create_wallet", gin.H{"user_address": "A", "initial_balance": 5000})
	doJSON(t, router, http.MethodPost, "/create_wallet", gin.H{"user_address": "B", "initial_balance": 3000})
	doJSON(t, router, http.MethodPost, "/create_asset", gin.H{
		"asset_id": "x1", "name": "First", "description": "d", "creator_address": "A",
	})

	rec, _ := doJSON(t, router, http.MethodPost, "/list_for_sale", gin.H{
		"asset_id": "x1", "seller_address": "A", "price": 1000,
	})
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec, _ = doJSON(t, router, http.MethodPost, "/buy_asset", gin.H{"asset_id": "x1", "buyer_address": "B"})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, resp := doJSON(t, router, http.MethodGet, "/user/B", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var wallet core.Wallet
	require.NoError(t, json.Unmarshal(resp["user"], &wallet))
	assert.Equal(t, int64(2000), wallet.Balance)
	assert.Equal(t, []string{"x1"}, wallet.AssetsOwned)

	rec, resp = doJSON(t, router, http.MethodGet, "/marketplace", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var total int
	require.NoError(t, json.Unmarshal(resp["total_listings"], &total))
	assert.Zero(t, total)

	rec, resp = doJSON(t, router, http.MethodGet, "/portfolio/B", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var portfolio core.Portfolio
	require.NoError(t, json.Unmarshal(resp["portfolio"], &portfolio))
	require.Len(t, portfolio.Assets, 1)
	assert.Equal(t, "B", portfolio.Assets[0].CurrentOwner)
}

func TestBuyAssetFailureReasons(t *testing.T) {
	router, _ := newTestRouter(t)
	doJSON(t, router, http.MethodPost, "/create_wallet", gin.H{"user_address": "seller"})
	doJSON(t, router, http.MethodPost, "/create_wallet", gin.H{"user_address": "poor", "initial_balance": 10})
	doJSON(t, router, http.MethodPost, "/create_asset", gin.H{
		"asset_id": "x1", "name": "First", "description": "d", "creator_address": "seller",
	})
	doJSON(t, router, http.MethodPost, "/list_for_sale", gin.H{
		"asset_id": "x1", "seller_address": "seller", "price": 500,
	})

	rec, resp := doJSON(t, router, http.MethodPost, "/buy_asset", gin.H{"asset_id": "x1", "buyer_address": "poor"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Insufficient balance", errorField(t, resp))

	rec, resp = doJSON(t, router, http.MethodPost, "/buy_asset", gin.H{"asset_id": "nope", "buyer_address": "poor"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Asset not available or buyer not found", errorField(t, resp))

	rec, resp = doJSON(t, router, http.MethodPost, "/buy_asset", gin.H{"asset_id": "x1", "buyer_address": "ghost"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "User not found", errorField(t, resp))
}

func TestTransferEndpoint(t *testing.T) {
	router, _ := newTestRouter(t)
	doJSON(t, router, http.MethodPost, "/create_wallet", gin.H{"user_address": "alice"})
	doJSON(t, router, http.MethodPost, "/create_wallet", gin.H{"user_address": "bob"})

	rec, _ := doJSON(t, router, http.MethodPost, "/transfer_currency", gin.H{
		"from_address": "alice", "to_address": "bob", "amount": 100,
	})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, resp := doJSON(t, router, http.MethodPost, "/transfer_currency", gin.H{
		"from_address": "alice", "to_address": "ghost", "amount": 100,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "User not found", errorField(t, resp))

	rec, resp = doJSON(t, router, http.MethodPost, "/transfer_currency", gin.H{
		"from_address": "alice", "to_address": "bob", "amount": 99999,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Insufficient balance", errorField(t, resp))
}

func TestMineEndpoint(t *testing.T) {
	router, _ := newTestRouter(t)

	rec, resp := doJSON(t, router, http.MethodGet, "/mine", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var reward string
	require.NoError(t, json.Unmarshal(resp["reward"], &reward))
	assert.Equal(t, "10 DAT tokens", reward)

	rec, resp = doJSON(t, router, http.MethodGet, "/chain", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var length int
	require.NoError(t, json.Unmarshal(resp["length"], &length))
	assert.Equal(t, 2, length)
}

func TestStatsEndpoint(t *testing.T) {
	router, _ := newTestRouter(t)
	doJSON(t, router, http.MethodPost, "/create_wallet", gin.H{"user_address": "alice"})

	rec, _ := doJSON(t, router, http.MethodGet, "/stats", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var stats core.Stats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Equal(t, 1, stats.TotalUsers)
	assert.Equal(t, 1, stats.TotalBlocks)
	assert.Equal(t, core.BaseCurrency, stats.BaseCurrency)
}

func TestUnknownUserEndpoints(t *testing.T) {
	router, _ := newTestRouter(t)

	rec, resp := doJSON(t, router, http.MethodGet, "/user/ghost", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "User not found", errorField(t, resp))

	rec, _ = doJSON(t, router, http.MethodGet, "/portfolio/ghost", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
