package middlewares

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/pastelaria-api/utils"
	"github.com/yeremiapane/pastelaria-api/validation"
)

var testSecret = []byte("test-secret")

func init() {
	gin.SetMode(gin.TestMode)
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) utils.ErrorResponse {
	t.Helper()
	var body utils.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestRequireAuth(t *testing.T) {
	r := gin.New()
	r.GET("/private", RequireAuth(testSecret), func(c *gin.Context) {
		c.String(http.StatusOK, CurrentUser(c).Username)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/private", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "MISSING_TOKEN", decodeError(t, w).Code)

	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "INVALID_TOKEN", decodeError(t, w).Code)

	expired, err := utils.GenerateToken(testSecret, "admin", "admin", -time.Minute)
	require.NoError(t, err)
	req = httptest.NewRequest(http.MethodGet, "/private", nil)
	req.Header.Set("Authorization", "Bearer "+expired)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "INVALID_TOKEN", decodeError(t, w).Code)

	token, err := utils.GenerateToken(testSecret, "admin", "admin", time.Hour)
	require.NoError(t, err)
	req = httptest.NewRequest(http.MethodGet, "/private", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "admin", w.Body.String())
}

func TestOptionalAuthNeverBlocks(t *testing.T) {
	r := gin.New()
	r.GET("/open", OptionalAuth(testSecret), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"authenticated": CurrentUser(c) != nil})
	})

	req := httptest.NewRequest(http.MethodGet, "/open", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"authenticated":false}`, w.Body.String())
}

func TestRequireRole(t *testing.T) {
	r := gin.New()
	r.GET("/admin", RequireAuth(testSecret), RequireRole("admin"), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	token, _ := utils.GenerateToken(testSecret, "caixa", "atendente", time.Hour)
	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestValidateJSON(t *testing.T) {
	r := gin.New()
	r.POST("/produtos", ValidateJSON(validation.ProdutoSchema), func(c *gin.Context) {
		var body struct {
			Preco float64 `json:"preco"`
		}
		require.NoError(t, c.ShouldBindJSON(&body))
		c.JSON(http.StatusOK, gin.H{"preco": body.Preco})
	})

	send := func(contentType, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/produtos", strings.NewReader(body))
		if contentType != "" {
			req.Header.Set("Content-Type", contentType)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	w := send("text/plain", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_CONTENT_TYPE", decodeError(t, w).Code)

	w = send("application/json", `{"nome":`)
	assert.Equal(t, "INVALID_JSON", decodeError(t, w).Code)

	w = send("application/json", `{"categoria":"Pizza","preco":-1}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	body := decodeError(t, w)
	assert.False(t, body.Success)
	assert.Equal(t, "VALIDATION_ERROR", body.Code)
	assert.Equal(t, "Dados inválidos", body.Error)
	assert.Equal(t, []interface{}{
		"Campo 'nome' é obrigatório",
		"Campo 'preco' deve ser maior ou igual a 0",
	}, body.Details)

	// numeric strings reach the handler as numbers
	w = send("application/json; charset=utf-8", `{"nome":"Pastel","categoria":"Pastel","preco":"8.50"}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"preco":8.5}`, w.Body.String())
}

func TestValidateParams(t *testing.T) {
	r := gin.New()
	r.GET("/produtos/:id", ValidateParams("id"), func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/produtos/abc", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_ID", decodeError(t, w).Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/produtos/7", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestBodyLimit(t *testing.T) {
	r := gin.New()
	r.Use(BodyLimit(16))
	r.POST("/echo", ValidateJSON(validation.Schema{}), func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader(`{"nome":"um texto bem comprido"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.Equal(t, "REQUEST_TOO_LARGE", decodeError(t, w).Code)

	// undeclared length is still capped while reading
	req = httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader(`{"nome":"um texto bem comprido"}`))
	req.ContentLength = -1
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func TestCORSPreflight(t *testing.T) {
	r := gin.New()
	r.Use(CORSMiddlewares())
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodOptions, "/x", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "86400", w.Header().Get("Access-Control-Max-Age"))
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Headers"), "X-Device-Type")
	assert.Contains(t, w.Header().Get("Access-Control-Expose-Headers"), "X-Cache")
}

func TestRateLimiterWindow(t *testing.T) {
	rl := NewRateLimiter(2, time.Minute)
	now := time.Now()

	assert.True(t, rl.Allow("1.1.1.1", now))
	assert.True(t, rl.Allow("1.1.1.1", now))
	assert.False(t, rl.Allow("1.1.1.1", now))
	assert.True(t, rl.Allow("2.2.2.2", now))
	assert.True(t, rl.Allow("1.1.1.1", now.Add(2*time.Minute)))

	rl.Cleanup(now.Add(10 * time.Minute))
	assert.Empty(t, rl.ips)
}

func TestRateLimiterPrunesIdleIPs(t *testing.T) {
	rl := NewRateLimiter(5, time.Minute)
	now := time.Now()

	for i := 0; i < 100; i++ {
		rl.Allow("10.1.0."+strconv.Itoa(i), now)
	}
	assert.Len(t, rl.ips, 100)

	assert.True(t, rl.Allow("10.2.0.1", now.Add(2*time.Minute)))
	assert.Len(t, rl.ips, 1)
}

func TestRateLimitRetryAfterIsSeconds(t *testing.T) {
	r := gin.New()
	r.Use(NewRateLimiter(1, time.Minute).RateLimit())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "60", w.Header().Get("Retry-After"))
	assert.Equal(t, "1", retryAfter(300*time.Millisecond))
}

func TestStrictLimiterDropsRefilledBuckets(t *testing.T) {
	sl := newStrictLimiter(10*time.Second, 2)
	now := time.Now()

	assert.True(t, sl.Allow("10.0.0.1", now))
	assert.True(t, sl.Allow("10.0.0.1", now))
	assert.False(t, sl.Allow("10.0.0.1", now))
	assert.True(t, sl.Allow("10.0.0.2", now))
	assert.Len(t, sl.buckets, 2)

	assert.True(t, sl.Allow("10.0.0.3", now.Add(30*time.Second)))
	assert.Len(t, sl.buckets, 1)
	assert.Contains(t, sl.buckets, "10.0.0.3")
}

func TestRequireJSON(t *testing.T) {
	r := gin.New()
	r.POST("/", RequireJSON(), func(c *gin.Context) { c.Status(http.StatusOK) })

	send := func(contentType, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
		req.Header.Set("Content-Type", contentType)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	w := send("text/plain", `{"table":"produtos"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_CONTENT_TYPE", decodeError(t, w).Code)

	w = send("application/json", `[1,2]`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_JSON", decodeError(t, w).Code)

	assert.Equal(t, http.StatusOK, send("application/json", `{}`).Code)
}

func TestStrictRateLimiterIsPerIP(t *testing.T) {
	r := gin.New()
	r.POST("/login", NewStrictRateLimiter(time.Hour, 1), func(c *gin.Context) { c.Status(http.StatusOK) })

	send := func(ip string) int {
		req := httptest.NewRequest(http.MethodPost, "/login", nil)
		req.RemoteAddr = ip + ":1234"
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusOK, send("10.0.0.1"))
	assert.Equal(t, http.StatusTooManyRequests, send("10.0.0.1"))
	assert.Equal(t, http.StatusOK, send("10.0.0.2"))
}

func TestRecoveryReturnsJSON(t *testing.T) {
	r := gin.New()
	r.Use(RequestID(), Recovery())
	r.GET("/boom", func(c *gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "INTERNAL_ERROR", decodeError(t, w).Code)
	assert.NotEmpty(t, w.Header().Get(HeaderRequestID))
}
