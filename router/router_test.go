package router

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/pastelaria-api/cache"
	"github.com/yeremiapane/pastelaria-api/config"
	"github.com/yeremiapane/pastelaria-api/kds"
	"github.com/yeremiapane/pastelaria-api/models"
	"github.com/yeremiapane/pastelaria-api/testutil"
)

func testConfig() *config.Config {
	return &config.Config{
		GinMode:       gin.TestMode,
		AppVersion:    "test",
		JWTSecret:     "router-secret",
		TokenTTL:      time.Hour,
		AdminUsername: "admin",
		AdminPassword: "senha-forte",
		DeliveryFee:   5,
		MaxBodyBytes:  1 << 20,
		RateLimit:     1000,
		RateWindow:    time.Minute,
	}
}

func setupTestRouter(t *testing.T) http.Handler {
	db := testutil.NewTestDB(t)
	require.NoError(t, db.Create(&models.Produto{Nome: "Pastel de Carne", Categoria: models.CategoriaPastel, Preco: 8, Ativo: true}).Error)

	r, err := SetupRouter(testConfig(), db, cache.NewDBStore(db), kds.NewHub())
	require.NoError(t, err)
	return r
}

func request(r http.Handler, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), w.Body.String())
	return body
}

func login(t *testing.T, r http.Handler) string {
	t.Helper()
	w := request(r, http.MethodPost, "/api/v1/auth/login", "", map[string]string{"username": "admin", "password": "senha-forte"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	data := decode(t, w)["data"].(map[string]interface{})
	assert.Equal(t, float64(3600), data["expires_in"])
	return data["token"].(string)
}

func TestHealth(t *testing.T) {
	r := setupTestRouter(t)
	w := request(r, http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	body := decode(t, w)
	assert.Equal(t, "OK", body["status"])
	assert.Equal(t, "test", body["version"])
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestUnknownRouteIsJSON(t *testing.T) {
	r := setupTestRouter(t)
	w := request(r, http.MethodGet, "/api/v1/nada", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "NOT_FOUND", decode(t, w)["code"])
}

func TestLogin(t *testing.T) {
	r := setupTestRouter(t)

	w := request(r, http.MethodPost, "/api/v1/auth/login", "", map[string]string{"username": "admin", "password": "errada"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "INVALID_CREDENTIALS", decode(t, w)["code"])

	token := login(t, r)
	w = request(r, http.MethodGet, "/api/v1/auth/me", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "admin", decode(t, w)["data"].(map[string]interface{})["username"])
}

func TestProtectedRoutes(t *testing.T) {
	r := setupTestRouter(t)
	sabor := map[string]interface{}{"nome": "Catupiry", "categoria": "Especial", "preco_adicional": 3}

	w := request(r, http.MethodPost, "/api/v1/sabores", "", sabor)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "MISSING_TOKEN", decode(t, w)["code"])

	w = request(r, http.MethodPost, "/api/v1/sabores", "garbage", sabor)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "INVALID_TOKEN", decode(t, w)["code"])

	token := login(t, r)
	w = request(r, http.MethodPost, "/api/v1/sabores", token, sabor)
	assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = request(r, http.MethodPost, "/api/v1/admin/clear-cache", token, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCatalogCacheIsInvalidatedByWrites(t *testing.T) {
	r := setupTestRouter(t)

	w := request(r, http.MethodGet, "/api/v1/produtos", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "MISS", w.Header().Get(cache.HeaderCache))

	w = request(r, http.MethodGet, "/api/v1/produtos", "", nil)
	assert.Equal(t, "HIT", w.Header().Get(cache.HeaderCache))
	assert.Len(t, decode(t, w)["data"], 1)

	w = request(r, http.MethodPost, "/api/v1/produtos", "", map[string]interface{}{
		"nome": "Pastel de Frango", "categoria": "Pastel", "preco": 8.5,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = request(r, http.MethodGet, "/api/v1/produtos", "", nil)
	assert.Equal(t, "MISS", w.Header().Get(cache.HeaderCache))
	assert.Len(t, decode(t, w)["data"], 2)
}

func TestInvalidIDParam(t *testing.T) {
	r := setupTestRouter(t)
	w := request(r, http.MethodGet, "/api/v1/produtos/abc", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_ID", decode(t, w)["code"])
}

func TestOrderFlowEndToEnd(t *testing.T) {
	r := setupTestRouter(t)

	w := request(r, http.MethodPost, "/api/v1/pedidos", "", map[string]interface{}{
		"cliente_nome":     "Carlos",
		"cliente_telefone": "11912345678",
		"tipo_entrega":     "Balcão",
		"forma_pagamento":  "Dinheiro",
		"itens": []map[string]interface{}{
			{"produto_id": 1, "quantidade": 3},
		},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	pedido := decode(t, w)["data"].(map[string]interface{})
	assert.Equal(t, 24.0, pedido["total"])
	assert.Equal(t, 0.0, pedido["taxa_entrega"])

	w = request(r, http.MethodPut, "/api/v1/pedidos/1/status", "", map[string]string{"status": "Preparando"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = request(r, http.MethodGet, "/api/v1/pedidos?status=Preparando", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	rows := decode(t, w)["data"].([]interface{})
	require.Len(t, rows, 1)
	assert.Equal(t, 1.0, rows[0].(map[string]interface{})["total_itens"])
	assert.Equal(t, 24.0, rows[0].(map[string]interface{})["valor_itens"])

	w = request(r, http.MethodGet, "/api/v1/pedidos/stats?periodo=hoje", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	stats := decode(t, w)["data"].(map[string]interface{})
	assert.Equal(t, 1.0, stats["total_pedidos"])
	assert.Equal(t, 24.0, stats["faturamento"])
}

func TestDashboardStatsCachedAndInvalidatedByOrders(t *testing.T) {
	r := setupTestRouter(t)

	w := request(r, http.MethodGet, "/api/v1/stats", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "MISS", w.Header().Get(cache.HeaderCache))
	body := decode(t, w)
	assert.Equal(t, 1.0, body["produtos_ativos"])
	assert.Equal(t, 0.0, body["pedidos_hoje"])
	assert.Equal(t, 0.0, body["pedidos_pendentes"])
	assert.NotEmpty(t, body["timestamp"])

	w = request(r, http.MethodGet, "/api/v1/stats", "", nil)
	assert.Equal(t, "HIT", w.Header().Get(cache.HeaderCache))

	w = request(r, http.MethodPost, "/api/v1/pedidos", "", map[string]interface{}{
		"cliente_nome":     "Ana",
		"cliente_telefone": "11987654321",
		"tipo_entrega":     "Balcão",
		"forma_pagamento":  "PIX",
		"itens":            []map[string]interface{}{{"produto_id": 1, "quantidade": 1}},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = request(r, http.MethodGet, "/api/v1/stats", "", nil)
	assert.Equal(t, "MISS", w.Header().Get(cache.HeaderCache))
	body = decode(t, w)
	assert.Equal(t, 1.0, body["pedidos_hoje"])
	assert.Equal(t, 1.0, body["pedidos_pendentes"])

	w = request(r, http.MethodDelete, "/api/v1/pedidos/1", "", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = request(r, http.MethodGet, "/api/v1/stats", "", nil)
	assert.Equal(t, "MISS", w.Header().Get(cache.HeaderCache))
	assert.Equal(t, 0.0, decode(t, w)["pedidos_pendentes"])
}

func TestResolveConflictRequiresJSON(t *testing.T) {
	r := setupTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/sync/resolve-conflict",
		bytes.NewBufferString(`{"table":"produtos","id":1,"resolution":"server_wins"}`))
	req.Header.Set("Content-Type", "text/plain")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_CONTENT_TYPE", decode(t, w)["code"])

	w = request(r, http.MethodPost, "/api/v1/sync/resolve-conflict", "", map[string]interface{}{
		"table": "produtos", "id": 1, "resolution": "server_wins",
	})
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
}
