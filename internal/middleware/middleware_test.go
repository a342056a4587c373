package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"paywin/internal/auth"
	"paywin/internal/domain"
	"paywin/internal/repository/memstore"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestRateLimiter_Window(t *testing.T) {
	rl := NewRateLimiter(2, time.Minute)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	assert.True(t, rl.Allow("user:1"))
	assert.True(t, rl.Allow("user:1"))
	assert.False(t, rl.Allow("user:1"))
	assert.True(t, rl.Allow("user:2"))

	now = now.Add(61 * time.Second)
	assert.Equal(t, 2, rl.Sweep())
	assert.True(t, rl.Allow("user:1"))
}

func newRouter(tokens *auth.Tokens, store *memstore.Store, rl *RateLimiter) *gin.Engine {
	r := gin.New()
	authed := r.Group("/", JWTAuthMiddleware(tokens))
	authed.GET("/me", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"id": UserID(c)}) })
	authed.GET("/admin", AdminOnlyMiddleware(store), func(c *gin.Context) { c.Status(http.StatusNoContent) })
	authed.GET("/play", rl.Middleware(), func(c *gin.Context) { c.Status(http.StatusNoContent) })
	return r
}

func do(r http.Handler, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthAndAdmin(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	player := &domain.Profile{Email: "p@paywin.test", Password: "x"}
	admin := &domain.Profile{Email: "a@paywin.test", Password: "x", Role: domain.RoleAdmin}
	require.NoError(t, store.Profiles().Create(ctx, player))
	require.NoError(t, store.Profiles().Create(ctx, admin))

	tokens := auth.NewTokens("secret", time.Hour)
	r := newRouter(tokens, store, NewRateLimiter(1, time.Minute))
	playerToken, err := tokens.Issue(player.ID)
	require.NoError(t, err)
	adminToken, err := tokens.Issue(admin.ID)
	require.NoError(t, err)

	assert.Equal(t, http.StatusUnauthorized, do(r, "/me", "").Code)
	assert.Equal(t, http.StatusUnauthorized, do(r, "/me", "garbage").Code)
	w := do(r, "/me", playerToken)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"id":1}`, w.Body.String())

	assert.Equal(t, http.StatusForbidden, do(r, "/admin", playerToken).Code)
	assert.Equal(t, http.StatusNoContent, do(r, "/admin", adminToken).Code)

	assert.Equal(t, http.StatusNoContent, do(r, "/play", playerToken).Code)
	limited := do(r, "/play", playerToken)
	assert.Equal(t, http.StatusTooManyRequests, limited.Code)
	assert.Equal(t, "60", limited.Header().Get("Retry-After"))
	assert.Equal(t, http.StatusNoContent, do(r, "/play", adminToken).Code)
}
