package httpapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"saboaria/backend/internal/domain"
	"saboaria/backend/internal/service"
	"saboaria/backend/internal/store/memory"
)

type testEnv struct {
	server *httptest.Server
	token  string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	t.Setenv("SEED_OWNER_PASSWORD", "super-secret-1")

	repo := memory.New()
	svc := service.New(repo)
	auth := NewAuthManager("0123456789abcdef0123456789abcdef", time.Hour, repo)
	api := New(svc, auth, "http://127.0.0.1:3000")

	server := httptest.NewServer(api.Handler())
	t.Cleanup(server.Close)

	resp, err := auth.Login(domain.LoginRequest{Username: "owner", Password: "super-secret-1"})
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	return &testEnv{server: server, token: resp.AccessToken}
}

func (e *testEnv) do(t *testing.T, method, path string, body any) *http.Response {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal failed: %v", err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, e.server.URL+path, reader)
	if err != nil {
		t.Fatalf("new request failed: %v", err)
	}
	req.Header.Set("Authorization", "Bearer "+e.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, dest any) {
	t.Helper()
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		t.Fatalf("decode response failed: %v", err)
	}
}

func TestRequestsWithoutTokenAreRejected(t *testing.T) {
	env := newTestEnv(t)

	resp, err := http.Get(env.server.URL + "/api/v1/raw-materials")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
}

func TestHealthzIsPublic(t *testing.T) {
	env := newTestEnv(t)

	resp, err := http.Get(env.server.URL + "/healthz")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
}

// setupProduction drives material -> recipe -> batch through the API
// and returns the finished product id.
func setupProduction(t *testing.T, env *testEnv) int64 {
	t.Helper()

	resp := env.do(t, http.MethodPost, "/api/v1/raw-materials", domain.RawMaterialSaveRequest{
		Name: "Lavender Oil", Unit: "ml", QuantityOnHand: 100, UnitCost: 5, MinStock: 10,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create material: expected 201, got %d", resp.StatusCode)
	}
	var materialBody struct {
		RawMaterial domain.RawMaterial `json:"raw_material"`
	}
	decodeBody(t, resp, &materialBody)

	resp = env.do(t, http.MethodPost, "/api/v1/recipes", domain.RecipeSaveRequest{
		ProductName: "Lavender Soap", YieldUnits: 10, MarginPercent: 60,
		Lines: []domain.RecipeLineInput{{RawMaterialID: materialBody.RawMaterial.ID, QuantityPerBatch: 2}},
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create recipe: expected 201, got %d", resp.StatusCode)
	}
	var recipeBody struct {
		Recipe domain.Recipe `json:"recipe"`
	}
	decodeBody(t, resp, &recipeBody)

	resp = env.do(t, http.MethodPost, "/api/v1/production", domain.ProduceRequest{
		RecipeID: recipeBody.Recipe.ID, BatchSize: 20,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("produce: expected 201, got %d", resp.StatusCode)
	}
	var produceBody domain.ProduceResponse
	decodeBody(t, resp, &produceBody)
	return produceBody.Product.ID
}

func TestProductionAndOrderFlowOverHTTP(t *testing.T) {
	env := newTestEnv(t)
	productID := setupProduction(t, env)

	resp := env.do(t, http.MethodPost, "/api/v1/orders", domain.OrderSaveRequest{
		CustomerName: "Maria",
		Lines:        []domain.OrderLineInput{{ProductID: productID, Quantity: 5, UnitPrice: 3}},
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create order: expected 201, got %d", resp.StatusCode)
	}
	var orderBody struct {
		Order domain.Order `json:"order"`
	}
	decodeBody(t, resp, &orderBody)

	resp = env.do(t, http.MethodPost, fmt.Sprintf("/api/v1/orders/%d/confirm", orderBody.Order.ID), nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("confirm: expected 200, got %d", resp.StatusCode)
	}

	resp = env.do(t, http.MethodGet, fmt.Sprintf("/api/v1/products/%d", productID), nil)
	var productBody struct {
		Product domain.FinishedProduct `json:"product"`
	}
	decodeBody(t, resp, &productBody)
	if productBody.Product.QuantityOnHand != 15 {
		t.Fatalf("expected 15 on hand after confirmation, got %d", productBody.Product.QuantityOnHand)
	}
}

func TestErrorStatusMapping(t *testing.T) {
	env := newTestEnv(t)
	productID := setupProduction(t, env)

	// Unknown entity -> 404.
	resp := env.do(t, http.MethodGet, "/api/v1/products/9999", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}

	// Bad input -> 400.
	resp = env.do(t, http.MethodPost, "/api/v1/raw-materials", domain.RawMaterialSaveRequest{Name: ""})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}

	// Shortfall -> 422.
	resp = env.do(t, http.MethodPost, "/api/v1/orders", domain.OrderSaveRequest{
		CustomerName: "Maria",
		Lines:        []domain.OrderLineInput{{ProductID: productID, Quantity: 500, UnitPrice: 3}},
	})
	var orderBody struct {
		Order domain.Order `json:"order"`
	}
	decodeBody(t, resp, &orderBody)
	resp = env.do(t, http.MethodPost, fmt.Sprintf("/api/v1/orders/%d/confirm", orderBody.Order.ID), nil)
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", resp.StatusCode)
	}

	// Illegal transition -> 409.
	resp = env.do(t, http.MethodPost, fmt.Sprintf("/api/v1/orders/%d/deliver", orderBody.Order.ID), nil)
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409, got %d", resp.StatusCode)
	}
}

func TestBackupEndpoints(t *testing.T) {
	env := newTestEnv(t)
	setupProduction(t, env)

	resp := env.do(t, http.MethodGet, "/api/v1/backup/export", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("export: expected 200, got %d", resp.StatusCode)
	}
	var doc domain.BackupDocument
	decodeBody(t, resp, &doc)
	if doc.Meta == nil || len(doc.RawMaterials) != 1 {
		t.Fatalf("unexpected export document")
	}

	resp = env.do(t, http.MethodPost, "/api/v1/backup/import", domain.BackupDocument{})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("meta-less import: expected 400, got %d", resp.StatusCode)
	}

	resp = env.do(t, http.MethodGet, "/api/v1/backup/counts", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("counts: expected 200, got %d", resp.StatusCode)
	}
	var countsBody struct {
		Counts map[string]int `json:"counts"`
	}
	decodeBody(t, resp, &countsBody)
	if countsBody.Counts["raw_materials"] != 1 {
		t.Fatalf("unexpected counts: %+v", countsBody.Counts)
	}
}

func TestLoginRateLimitOverHTTP(t *testing.T) {
	env := newTestEnv(t)

	var last int
	for i := 0; i < 7; i++ {
		payload, _ := json.Marshal(domain.LoginRequest{Username: "owner", Password: "wrong"})
		resp, err := http.Post(env.server.URL+"/api/v1/auth/login", "application/json", bytes.NewReader(payload))
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		last = resp.StatusCode
		resp.Body.Close()
	}
	if last != http.StatusTooManyRequests {
		t.Fatalf("expected 429 after repeated failures, got %d", last)
	}
}
