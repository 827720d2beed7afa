package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/faizi-7/graveyard-back/internal/domain/entity"
	"github.com/faizi-7/graveyard-back/internal/domain/errs"
)

func init() { gin.SetMode(gin.TestMode) }

type stubResolver map[string]entity.Identity

func (s stubResolver) ResolveSession(_ context.Context, token string) (entity.Identity, error) {
	id, ok := s[token]
	if !ok {
		return entity.Identity{}, errs.Unauthorized("invalid token")
	}
	return id, nil
}

func do(r http.Handler, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func authRouter() *gin.Engine {
	r := gin.New()
	sessions := stubResolver{
		"tok-user":    {UserID: "u1", Email: "u1@x.com", Username: "u1", Role: entity.RoleUser},
		"tok-contrib": {UserID: "c1", Email: "c1@x.com", Username: "c1", Role: entity.RoleContributor},
	}
	r.GET("/me", Auth(sessions), func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(CtxUserIDKey)+"|"+c.GetString(CtxUserRoleKey))
	})
	r.POST("/ideas", Auth(sessions), RequireRole(entity.RoleContributor), func(c *gin.Context) {
		c.Status(http.StatusCreated)
	})
	return r
}

func TestAuth(t *testing.T) {
	r := authRouter()

	w := do(r, httptest.NewRequest(http.MethodGet, "/me", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer nope")
	w = do(r, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	var body struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
		Error   struct {
			Kind string `json:"kind"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.False(t, body.Success)
	assert.Equal(t, "invalid token", body.Message)
	assert.Equal(t, "unauthorized", body.Error.Kind)

	req = httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "bearer tok-user")
	w = do(r, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "u1|user", w.Body.String())
}

func TestRequireRole(t *testing.T) {
	r := authRouter()

	req := httptest.NewRequest(http.MethodPost, "/ideas", nil)
	req.Header.Set("Authorization", "Bearer tok-user")
	assert.Equal(t, http.StatusForbidden, do(r, req).Code)

	req = httptest.NewRequest(http.MethodPost, "/ideas", nil)
	req.Header.Set("Authorization", "Bearer tok-contrib")
	assert.Equal(t, http.StatusCreated, do(r, req).Code)
}

func TestRateLimit(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	r := gin.New()
	r.Use(RealIP())
	r.GET("/ping", RateLimit(rdb, 2, time.Minute, KeyByIPAndPath(), nil), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	send := func(ip string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.Header.Set("X-Forwarded-For", ip)
		return do(r, req)
	}

	assert.Equal(t, http.StatusOK, send("203.0.113.7").Code)
	w := send("203.0.113.7")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))

	w = send("203.0.113.7")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
	assert.True(t, strings.Contains(w.Body.String(), "rate_limited"))

	assert.Equal(t, http.StatusOK, send("198.51.100.1").Code, "other clients keep their own budget")

	mr.FastForward(time.Minute + time.Second)
	assert.Equal(t, http.StatusOK, send("203.0.113.7").Code)
}

func TestRateLimit_AllowPrivateAndFailOpen(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	r := gin.New()
	r.Use(RealIP())
	r.GET("/ping", RateLimit(rdb, 1, time.Minute, KeyByIP(), AllowPrivateIP()), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.Header.Set("X-Forwarded-For", "10.0.0.4")
		assert.Equal(t, http.StatusOK, do(r, req).Code)
	}

	mr.Close()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("X-Forwarded-For", "203.0.113.9")
	assert.Equal(t, http.StatusOK, do(r, req).Code, "redis errors do not block traffic")
}

func TestRealIP(t *testing.T) {
	r := gin.New()
	r.Use(RealIP())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, c.GetString("real_ip")) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("CF-Connecting-IP", "198.51.100.2")
	req.Header.Set("X-Forwarded-For", "203.0.113.1, 10.0.0.1")
	assert.Equal(t, "198.51.100.2", do(r, req).Body.String())

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Forwarded-For", "203.0.113.1, 10.0.0.1")
	assert.Equal(t, "203.0.113.1", do(r, req).Body.String())
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestIDMiddleware())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, c.GetString("request_id")) })

	w := do(r, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Len(t, w.Body.String(), 36)
	assert.Equal(t, w.Body.String(), w.Header().Get(HeaderRequestID))

	const incoming = "7f1d8a5e-3f5b-4c1e-9a57-2d1f0c7b9e11"
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderRequestID, incoming)
	assert.Equal(t, incoming, do(r, req).Body.String())

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderRequestID, "not-a-uuid")
	assert.NotEqual(t, "not-a-uuid", do(r, req).Body.String())
}

func TestMetrics(t *testing.T) {
	m := NewMetrics("ideas")
	r := gin.New()
	r.Use(m.Middleware())
	r.GET("/ideas/:id", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	r.GET("/metrics", gin.WrapH(m.Handler()))

	do(r, httptest.NewRequest(http.MethodGet, "/ideas/1", nil))
	do(r, httptest.NewRequest(http.MethodGet, "/ideas/2", nil))

	body := do(r, httptest.NewRequest(http.MethodGet, "/metrics", nil)).Body.String()
	assert.Contains(t, body, `ideas_http_requests_total{method="GET",route="/ideas/:id",status="204"} 2`)
	assert.Contains(t, body, "ideas_http_request_duration_seconds")
}
