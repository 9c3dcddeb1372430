package cache

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/pastelaria-api/testutil"
)

func newTestStore(t *testing.T) *DBStore {
	return NewDBStore(testutil.NewTestDB(t))
}

func TestDBStoreGetBeforeAndAfterExpiry(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	now := time.Now()
	store.now = func() time.Time { return now }

	require.NoError(t, store.Set(ctx, "k", "v", time.Minute))

	val, ok, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v", val)

	// expired but not yet swept
	store.now = func() time.Time { return now.Add(2 * time.Minute) }
	_, ok, err = store.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)

	var count int64
	store.DB.Table("cache_dados").Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestDBStoreSetOverwrites(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "k", "old", time.Minute))
	require.NoError(t, store.Set(ctx, "k", "new", time.Minute))

	val, ok, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "new", val)
}

func TestDBStoreDeletePatternAndSweep(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	now := time.Now()
	store.now = func() time.Time { return now }

	require.NoError(t, store.Set(ctx, "GET|/api/v1/produtos|", "a", time.Minute))
	require.NoError(t, store.Set(ctx, "GET|/api/v1/produtos/1|", "b", time.Minute))
	require.NoError(t, store.Set(ctx, "GET|/api/v1/sabores|", "c", time.Second))

	n, err := store.DeletePattern(ctx, EntityPattern("/api/v1/produtos"))
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	store.now = func() time.Time { return now.Add(time.Hour) }
	swept, err := store.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), swept)
}

func TestKey(t *testing.T) {
	key := Key("GET", "/api/v1/produtos/3", "categoria=Pizza", "", "2.0.0", map[string]string{"id": "3"})
	assert.Equal(t, `GET|/api/v1/produtos/3|?categoria=Pizza|unknown|2.0.0|{"id":"3"}`, key)

	key = Key("GET", "/api/v1/sabores", "", "mobile", "", nil)
	assert.Equal(t, "GET|/api/v1/sabores||mobile|unknown|{}", key)
}

func TestLikeToGlob(t *testing.T) {
	assert.Equal(t, "GET|/api/v1/produtos*", LikeToGlob("GET|/api/v1/produtos%"))
	assert.Equal(t, `a?b\*c\[d\]`, LikeToGlob("a_b*c[d]"))
}

func TestMiddlewareMissThenHit(t *testing.T) {
	gin.SetMode(gin.TestMode)
	store := newTestStore(t)

	calls := 0
	r := gin.New()
	r.GET("/items", Middleware(store, time.Minute), func(c *gin.Context) {
		calls++
		c.JSON(http.StatusOK, gin.H{"success": true, "calls": calls})
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/items", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "MISS", w.Header().Get(HeaderCache))
	first := w.Body.String()

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/items", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "HIT", w.Header().Get(HeaderCache))
	assert.Equal(t, first, w.Body.String())
	assert.Equal(t, 1, calls)
}

func TestMiddlewareSkipsNon200(t *testing.T) {
	gin.SetMode(gin.TestMode)
	store := newTestStore(t)

	calls := 0
	r := gin.New()
	r.GET("/missing", Middleware(store, time.Minute), func(c *gin.Context) {
		calls++
		c.JSON(http.StatusNotFound, gin.H{"success": false})
	})

	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/missing", nil))
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Empty(t, w.Header().Get(HeaderCache))
	}
	assert.Equal(t, 2, calls)
}

func TestMiddlewareKeysOnDeviceType(t *testing.T) {
	gin.SetMode(gin.TestMode)
	store := newTestStore(t)

	calls := 0
	r := gin.New()
	r.GET("/items", Middleware(store, time.Minute), func(c *gin.Context) {
		calls++
		c.JSON(http.StatusOK, gin.H{"calls": calls})
	})

	for _, device := range []string{"mobile", "tablet"} {
		req := httptest.NewRequest(http.MethodGet, "/items", nil)
		req.Header.Set("X-Device-Type", device)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, "MISS", w.Header().Get(HeaderCache))
	}
	assert.Equal(t, 2, calls)
}
