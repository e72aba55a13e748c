package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"multichain-settlement/internal/adapter/http/middleware"
	redisStore "multichain-settlement/internal/adapter/storage/redis"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

// setupRateLimitRouter authenticates requests carrying X-Payer as that payer.
func setupRateLimitRouter(t *testing.T) (*gin.Engine, *miniredis.Miniredis) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	store := redisStore.NewRateLimitStore(client)

	fakeAuth := func(c *gin.Context) {
		if id := c.GetHeader("X-Payer"); id != "" {
			c.Set(middleware.CtxPayerID, uuid.MustParse(id))
		}
		c.Next()
	}

	r := gin.New()
	rule := middleware.RateLimitRule{Limit: 3, Window: time.Minute}
	r.GET("/test", fakeAuth, middleware.RateLimiter(store, "test", rule, zerolog.Nop()), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	return r, mr
}

func doRequest(r *gin.Engine, payer string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	if payer != "" {
		req.Header.Set("X-Payer", payer)
	}
	r.ServeHTTP(w, req)
	return w
}

func TestRateLimiter_AllowsWithinLimit(t *testing.T) {
	router, _ := setupRateLimitRouter(t)

	for i := 0; i < 3; i++ {
		w := doRequest(router, "")
		assert.Equal(t, http.StatusOK, w.Code, "request %d should succeed", i+1)
		assert.Equal(t, "3", w.Header().Get("X-RateLimit-Limit"))
		assert.NotEmpty(t, w.Header().Get("X-RateLimit-Remaining"))
		assert.NotEmpty(t, w.Header().Get("X-RateLimit-Reset"))
	}
}

func TestRateLimiter_BlocksOverLimit(t *testing.T) {
	router, _ := setupRateLimitRouter(t)

	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, doRequest(router, "").Code)
	}

	w := doRequest(router, "")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
}

func TestRateLimiter_CountsPerPayer(t *testing.T) {
	router, _ := setupRateLimitRouter(t)
	payerA := uuid.NewString()
	payerB := uuid.NewString()

	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, doRequest(router, payerA).Code)
	}
	assert.Equal(t, http.StatusTooManyRequests, doRequest(router, payerA).Code)

	assert.Equal(t, http.StatusOK, doRequest(router, payerB).Code)
	assert.Equal(t, http.StatusOK, doRequest(router, "").Code, "anonymous traffic has its own counter")
}

func TestRateLimiter_StoreDownAllows(t *testing.T) {
	router, mr := setupRateLimitRouter(t)
	mr.Close()

	w := doRequest(router, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("X-RateLimit-Limit"))
}

func TestDefaultRateLimitRules(t *testing.T) {
	rules := middleware.DefaultRateLimitRules()
	assert.Equal(t, int64(60), rules["payments"].Limit)
	assert.Equal(t, int64(30), rules["bundles"].Limit)
	assert.Equal(t, int64(10), rules["loans"].Limit)
	assert.Equal(t, int64(300), rules["reads"].Limit)
	for name, rule := range rules {
		assert.Equal(t, time.Minute, rule.Window, name)
	}
}
