//go:build integration

package router_test

// End-to-end integration tests using real Postgres + Redis via testcontainers.
// Run with: go test -tags integration ./internal/router/... -v

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"retailpos/internal/config"
	"retailpos/internal/infra"
	"retailpos/internal/model"
	"retailpos/internal/router"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcPostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	tcRedis "github.com/testcontainers/testcontainers-go/modules/redis"
	"golang.org/x/crypto/bcrypt"
)

// ── Helpers ──────────────────────────────────────────────────────────────────

func jsonBody(t *testing.T, v any) *bytes.Buffer {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewBuffer(b)
}

func do(t *testing.T, srv *httptest.Server, method, path string, body *bytes.Buffer, token string) *http.Response {
	t.Helper()
	var req *http.Request
	var err error
	if body != nil {
		req, err = http.NewRequest(method, srv.URL+path, body)
	} else {
		req, err = http.NewRequest(method, srv.URL+path, nil)
	}
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	return resp
}

func decodeJSON(t *testing.T, resp *http.Response, dest any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(dest))
}

// ── Test Suite Setup ─────────────────────────────────────────────────────────

type testEnv struct {
	server *httptest.Server
	token  string // admin JWT
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()

	pgC, err := tcPostgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:15-alpine"),
		tcPostgres.WithDatabase("retailpos_test"),
		tcPostgres.WithUsername("retailpos"),
		tcPostgres.WithPassword("retailpos"),
		testcontainers.WithWaitStrategy(
			tcPostgres.BasicWaitStrategies()...,
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pgC.Terminate(ctx) })

	pgURL, err := pgC.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	rdC, err := tcRedis.RunContainer(ctx,
		testcontainers.WithImage("redis:7-alpine"),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdC.Terminate(ctx) })

	rdURL, err := rdC.ConnectionString(ctx)
	require.NoError(t, err)

	cfg := &config.Config{
		Port:               8000,
		Env:                "test",
		JWTSecret:          "test-secret-key",
		JWTExpirationHours: 8,
		JWTRefreshHours:    24,
		DatabaseURL:        pgURL,
		RedisURL:           rdURL,
		WorkerPoolSize:     1,
		PDFStoragePath:     t.TempDir(),
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	require.NoError(t, err)

	rdb, err := infra.NewRedis(cfg.RedisURL)
	require.NoError(t, err)

	// Seed admin user
	hash, err := bcrypt.GenerateFromPassword([]byte("retailpos2026"), 10)
	require.NoError(t, err)
	email := "admin@e2e.test"
	require.NoError(t, db.Create(&model.User{
		Username:     "admin@e2e.test",
		Name:         "Admin E2E",
		Email:        &email,
		PasswordHash: string(hash),
		Role:         "admin",
		Active:       true,
	}).Error)

	r := router.New(cfg, db, rdb)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	loginResp := do(t, srv, "POST", "/v1/auth/login",
		jsonBody(t, map[string]string{"username": "admin@e2e.test", "password": "retailpos2026"}),
		"",
	)
	require.Equal(t, http.StatusOK, loginResp.StatusCode)
	var loginBody struct {
		AccessToken string `json:"access_token"`
	}
	decodeJSON(t, loginResp, &loginBody)
	require.NotEmpty(t, loginBody.AccessToken)

	return &testEnv{server: srv, token: loginBody.AccessToken}
}

func createProduct(t *testing.T, env *testEnv, name, barcode string, cost, price float64, stock int) string {
	t.Helper()
	resp := do(t, env.server, "POST", "/v1/products",
		jsonBody(t, map[string]any{
			"name":     name,
			"barcode":  barcode,
			"category": "beverages",
			"cost":     cost,
			"price":    price,
			"stock":    stock,
		}),
		env.token,
	)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var prod struct {
		ID string `json:"id"`
	}
	decodeJSON(t, resp, &prod)
	return prod.ID
}

func openRegister(t *testing.T, env *testEnv, opening float64) string {
	t.Helper()
	resp := do(t, env.server, "POST", "/v1/register/open",
		jsonBody(t, map[string]any{"opening_amount": opening}),
		env.token,
	)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var session struct {
		ID string `json:"id"`
	}
	decodeJSON(t, resp, &session)
	return session.ID
}

// ── Tests ────────────────────────────────────────────────────────────────────

// Full day-at-the-till cycle: open register, sell for cash, record a manual
// egress, check the session report math, close.
func TestE2E_FullRegisterCycle(t *testing.T) {
	env := setupTestEnv(t)

	productID := createProduct(t, env, "Soda 500ml", "7890001000001", 150, 250, 20)
	sessionID := openRegister(t, env, 1000)

	// Cash sale: 3 × 250 = 750
	saleResp := do(t, env.server, "POST", "/v1/sales",
		jsonBody(t, map[string]any{
			"items": []map[string]any{
				{"product_id": productID, "quantity": 3, "unit_price": 250},
			},
			"payment_method": "cash",
		}),
		env.token,
	)
	require.Equal(t, http.StatusCreated, saleResp.StatusCode)
	var sale struct {
		ID           string `json:"id"`
		TicketNumber int    `json:"ticket_number"`
		Total        string `json:"total"`
		Profit       string `json:"profit"`
		Status       string `json:"status"`
		SessionID    string `json:"session_id"`
	}
	decodeJSON(t, saleResp, &sale)
	assert.Equal(t, 1, sale.TicketNumber)
	assert.Equal(t, "750", sale.Total)
	assert.Equal(t, "300", sale.Profit) // 3 × (250 − 150)
	assert.Equal(t, "paid", sale.Status)
	assert.Equal(t, sessionID, sale.SessionID)

	// Manual outflow of 100
	movResp := do(t, env.server, "POST", "/v1/movements",
		jsonBody(t, map[string]any{
			"session_id": sessionID,
			"type":       "egreso",
			"concept":    "supplier payment",
			"amount":     100,
		}),
		env.token,
	)
	require.Equal(t, http.StatusCreated, movResp.StatusCode)

	// Session report: 1000 + 0 − 100 + 750 = 1650 expected in drawer
	reportResp := do(t, env.server, "GET", "/v1/reports/session/"+sessionID, nil, env.token)
	require.Equal(t, http.StatusOK, reportResp.StatusCode)
	var report struct {
		ExpectedCash   string `json:"expected_cash"`
		CashSalesTotal string `json:"cash_sales_total"`
		ManualOutflows string `json:"manual_outflows"`
	}
	decodeJSON(t, reportResp, &report)
	assert.Equal(t, "1650", report.ExpectedCash)
	assert.Equal(t, "750", report.CashSalesTotal)
	assert.Equal(t, "100", report.ManualOutflows)

	// Close the register declaring a 50-short drawer
	closeResp := do(t, env.server, "POST", fmt.Sprintf("/v1/register/%s/close", sessionID),
		jsonBody(t, map[string]any{"closing_amount": 1600}),
		env.token,
	)
	require.Equal(t, http.StatusOK, closeResp.StatusCode)

	// Closing is terminal
	closeAgain := do(t, env.server, "POST", fmt.Sprintf("/v1/register/%s/close", sessionID),
		jsonBody(t, map[string]any{"closing_amount": 1600}),
		env.token,
	)
	assert.Equal(t, http.StatusConflict, closeAgain.StatusCode)
}

func TestE2E_CashSaleRequiresOpenRegister(t *testing.T) {
	env := setupTestEnv(t)
	productID := createProduct(t, env, "Juice 1L", "7890001000002", 200, 350, 10)

	resp := do(t, env.server, "POST", "/v1/sales",
		jsonBody(t, map[string]any{
			"items": []map[string]any{
				{"product_id": productID, "quantity": 1, "unit_price": 350},
			},
			"payment_method": "cash",
		}),
		env.token,
	)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestE2E_CancelSaleRestoresStock(t *testing.T) {
	env := setupTestEnv(t)
	productID := createProduct(t, env, "Beer 473ml", "7890001000003", 100, 180, 10)
	openRegister(t, env, 500)

	saleResp := do(t, env.server, "POST", "/v1/sales",
		jsonBody(t, map[string]any{
			"items": []map[string]any{
				{"product_id": productID, "quantity": 4, "unit_price": 180},
			},
			"payment_method": "cash",
		}),
		env.token,
	)
	require.Equal(t, http.StatusCreated, saleResp.StatusCode)
	var sale struct {
		ID string `json:"id"`
	}
	decodeJSON(t, saleResp, &sale)

	cancelResp := do(t, env.server, "POST", fmt.Sprintf("/v1/sales/%s/cancel", sale.ID),
		jsonBody(t, map[string]any{"reason": "customer returned"}),
		env.token,
	)
	require.Equal(t, http.StatusOK, cancelResp.StatusCode)

	prodResp := do(t, env.server, "GET", "/v1/products/"+productID, nil, env.token)
	require.Equal(t, http.StatusOK, prodResp.StatusCode)
	var prod struct {
		Stock int `json:"stock"`
	}
	decodeJSON(t, prodResp, &prod)
	assert.Equal(t, 10, prod.Stock)

	// Double-cancel conflicts
	cancelAgain := do(t, env.server, "POST", fmt.Sprintf("/v1/sales/%s/cancel", sale.ID),
		jsonBody(t, map[string]any{"reason": "again"}),
		env.token,
	)
	assert.Equal(t, http.StatusConflict, cancelAgain.StatusCode)
}

func TestE2E_PriceCheckPublicAndCached(t *testing.T) {
	env := setupTestEnv(t)
	createProduct(t, env, "Sparkling Water 2L", "7890001000004", 90, 150, 12)

	// No auth token on purpose: the kiosk endpoint is public.
	for i := 0; i < 2; i++ {
		resp := do(t, env.server, "GET", "/v1/price/7890001000004", nil, "")
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var price struct {
			Name  string `json:"name"`
			Price string `json:"price"`
		}
		decodeJSON(t, resp, &price)
		assert.Equal(t, "Sparkling Water 2L", price.Name)
		assert.Equal(t, "150", price.Price)
	}
}

func TestE2E_DuplicateOpenRejected(t *testing.T) {
	env := setupTestEnv(t)
	openRegister(t, env, 300)

	resp := do(t, env.server, "POST", "/v1/register/open",
		jsonBody(t, map[string]any{"opening_amount": 200}),
		env.token,
	)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestE2E_DailyReport(t *testing.T) {
	env := setupTestEnv(t)
	productID := createProduct(t, env, "Snack Mix", "7890001000005", 80, 140, 30)
	openRegister(t, env, 400)

	for i := 0; i < 2; i++ {
		resp := do(t, env.server, "POST", "/v1/sales",
			jsonBody(t, map[string]any{
				"items": []map[string]any{
					{"product_id": productID, "quantity": 1, "unit_price": 140},
				},
				"payment_method": "cash",
			}),
			env.token,
		)
		require.Equal(t, http.StatusCreated, resp.StatusCode)
	}

	reportResp := do(t, env.server, "GET",
		"/v1/reports/daily?date="+time.Now().Format("2006-01-02"), nil, env.token)
	require.Equal(t, http.StatusOK, reportResp.StatusCode)
	var report struct {
		SalesCount int64  `json:"sales_count"`
		GrossTotal string `json:"gross_total"`
	}
	decodeJSON(t, reportResp, &report)
	assert.Equal(t, int64(2), report.SalesCount)
	assert.Equal(t, "280", report.GrossTotal)
}
