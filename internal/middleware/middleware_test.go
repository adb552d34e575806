package middleware

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"pantry-be/internal/auth"
	"pantry-be/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newProtectedRouter(tm *auth.TokenManager, admin bool) *gin.Engine {
	r := gin.New()
	group := r.Group("/", Authenticate(tm))
	if admin {
		group.Use(RequireAdmin())
	}
	group.GET("/protected", func(c *gin.Context) {
		id, _ := utils.GetUserIDFromContext(c.Request.Context())
		c.String(http.StatusOK, id)
	})
	return r
}

func TestAuthenticate(t *testing.T) {
	tm := auth.NewTokenManager("test-secret")
	router := newProtectedRouter(tm, false)

	t.Run("Missing token", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/protected", nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("Invalid token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Bearer invalid-token")
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("Valid token", func(t *testing.T) {
		token, err := tm.Generate("u-1", "c@pantry.test", utils.RoleCustomer)
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "u-1", w.Body.String())
	})
}

func TestRequireAdmin(t *testing.T) {
	tm := auth.NewTokenManager("test-secret")
	router := newProtectedRouter(tm, true)

	t.Run("Customer forbidden", func(t *testing.T) {
		token, _ := tm.Generate("u-1", "c@pantry.test", utils.RoleCustomer)
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("Admin allowed", func(t *testing.T) {
		token, _ := tm.Generate("u-9", "a@pantry.test", utils.RoleAdmin)
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestCORS(t *testing.T) {
	r := gin.New()
	r.Use(CORS("http://localhost:3000"))
	r.GET("/test", func(c *gin.Context) { c.Status(http.StatusOK) })

	t.Run("Preflight", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodOptions, "/test", nil))

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Contains(t, w.Header().Get("Access-Control-Allow-Headers"), "Idempotency-Key")
	})

	t.Run("Normal request", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestRateLimiter(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rl := NewRateLimiter(ctx)
	handler := rl.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	t.Run("Strict tier exhausts after burst", func(t *testing.T) {
		var last int
		for i := 0; i < burstStrict+1; i++ {
			req := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
			req.RemoteAddr = "10.0.0.1:1234"
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)
			last = w.Code
		}
		assert.Equal(t, http.StatusTooManyRequests, last)
	})

	t.Run("Strict tier ignores rotating device ids", func(t *testing.T) {
		var last int
		for i := 0; i < burstStrict+1; i++ {
			req := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
			req.RemoteAddr = "10.0.0.2:1234"
			req.Header.Set("X-Device-ID", fmt.Sprintf("device-%d", i))
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)
			last = w.Code
		}
		assert.Equal(t, http.StatusTooManyRequests, last)
	})

	t.Run("Tiers are separate buckets", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/products", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("Cleanup evicts idle visitors", func(t *testing.T) {
		rl.now = func() time.Time { return time.Now().Add(10 * time.Minute) }
		rl.cleanup()

		rl.mu.Lock()
		defer rl.mu.Unlock()
		assert.Empty(t, rl.visitors)
	})
}

func TestRateIdentity(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/pos/quote", nil)
	req.RemoteAddr = "10.0.0.3:555"
	assert.Equal(t, "ip:10.0.0.3", rateIdentity(req, "terminal"))

	req.Header.Set("X-Device-ID", "till-1")
	assert.Equal(t, "device:till-1", rateIdentity(req, "terminal"))
	assert.Equal(t, "ip:10.0.0.3", rateIdentity(req, "strict"))
}

func TestResolveRateTier(t *testing.T) {
	tests := map[string]string{
		"/api/auth/login":      "strict",
		"/api/payments/verify": "strict",
		"/api/pos/checkout":    "terminal",
		"/api/products":        "general",
	}
	for path, want := range tests {
		_, _, tier := resolveRateTier(httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, want, tier, path)
	}
}

func TestOptionalAuthenticate(t *testing.T) {
	tm := auth.NewTokenManager("test-secret")
	r := gin.New()
	r.GET("/public", OptionalAuthenticate(tm), func(c *gin.Context) {
		id, ok := utils.GetUserIDFromContext(c.Request.Context())
		if !ok {
			id = "anonymous"
		}
		c.String(http.StatusOK, id)
	})

	t.Run("Anonymous", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/public", nil))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "anonymous", w.Body.String())
	})

	t.Run("Bad token is ignored", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/public", nil)
		req.Header.Set("Authorization", "Bearer garbage")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, "anonymous", w.Body.String())
	})

	t.Run("Valid token", func(t *testing.T) {
		token, err := tm.Generate("admin-1", "a@pantry.test", utils.RoleAdmin)
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/public", nil)
		req.AddCookie(&http.Cookie{Name: auth.AccessTokenCookie, Value: token})
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, "admin-1", w.Body.String())
	})
}
