// SPDX-FileCopyrightText: 2025 Deutsche Telekom AG
//
// SPDX-License-Identifier: Apache-2.0

package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/telekom/notification-service/pkg/metrics"
	"github.com/telekom/notification-service/pkg/system"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestDefaultConfigs(t *testing.T) {
	mailCfg := DefaultMailConfig()
	apiCfg := DefaultAuthenticatedAPIConfig()

	assert.Equal(t, float64(1), mailCfg.Rate)
	assert.Equal(t, 10, mailCfg.Burst)
	assert.Equal(t, system.UsernameKey, apiCfg.UserIdentityKey)
	assert.Greater(t, apiCfg.Authenticated.Rate, apiCfg.Unauthenticated.Rate)
	assert.Greater(t, apiCfg.Authenticated.Rate, mailCfg.Rate, "sending mail is limited harder than the API")
}

func TestNew(t *testing.T) {
	t.Run("keeps config", func(t *testing.T) {
		rl := New(Config{Rate: 10, Burst: 20, CleanupInterval: time.Second, MaxAge: time.Minute})
		defer rl.Stop()
		assert.Equal(t, float64(10), rl.Config().Rate)
		assert.Equal(t, 20, rl.Config().Burst)
	})

	t.Run("defaults cleanup interval and max age", func(t *testing.T) {
		rl := New(Config{Rate: 10, Burst: 20})
		defer rl.Stop()
		assert.Equal(t, time.Minute, rl.Config().CleanupInterval)
		assert.Equal(t, 5*time.Minute, rl.Config().MaxAge)
	})

	t.Run("stop is idempotent", func(t *testing.T) {
		rl := New(Config{Rate: 1, Burst: 1})
		rl.Stop()
		assert.NotPanics(t, rl.Stop)
	})
}

func TestAllow(t *testing.T) {
	rl := New(Config{Rate: 1, Burst: 3, CleanupInterval: time.Hour, MaxAge: time.Hour})
	defer rl.Stop()

	for i := 0; i < 3; i++ {
		assert.True(t, rl.Allow("alice"), "request %d should be allowed", i)
	}
	assert.False(t, rl.Allow("alice"), "burst exhausted")
	assert.True(t, rl.Allow("bob"), "keys have separate buckets")
	assert.Equal(t, 2, rl.Len())
}

func TestCleanup(t *testing.T) {
	rl := New(Config{Rate: 10, Burst: 10, CleanupInterval: 20 * time.Millisecond, MaxAge: 50 * time.Millisecond})
	defer rl.Stop()

	rl.Allow("alice")
	rl.Allow("bob")
	assert.Equal(t, 2, rl.Len())
	assert.Eventually(t, func() bool { return rl.Len() == 0 }, time.Second, 10*time.Millisecond)
}

func TestConcurrency(t *testing.T) {
	rl := New(Config{Rate: 1, Burst: 50, CleanupInterval: time.Hour, MaxAge: time.Hour})
	defer rl.Stop()

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		allowed int
	)
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if rl.Allow("alice") {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	// A token may refill while the goroutines run.
	assert.GreaterOrEqual(t, allowed, 50)
	assert.LessOrEqual(t, allowed, 52)
}

func newRouter(user string, mw gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(func(c *gin.Context) {
		if user != "" {
			c.Set(system.UsernameKey, user)
		}
		c.Next()
	})
	r.Use(mw)
	r.GET("/api/ping", func(c *gin.Context) { c.Status(http.StatusOK) })
	return r
}

func get(r http.Handler) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/ping", nil)
	req.RemoteAddr = "10.0.0.1:1234"
	r.ServeHTTP(w, req)
	return w
}

func TestUserMiddleware(t *testing.T) {
	rl := New(Config{Rate: 0.001, Burst: 2, CleanupInterval: time.Hour, MaxAge: time.Hour})
	defer rl.Stop()

	before := testutil.ToFloat64(metrics.APIRateLimited.WithLabelValues("mail"))
	r := newRouter("alice", rl.UserMiddleware("mail"))
	assert.Equal(t, http.StatusOK, get(r).Code)
	assert.Equal(t, http.StatusOK, get(r).Code)

	w := get(r)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), "RATE_LIMITED")
	assert.Equal(t, before+1, testutil.ToFloat64(metrics.APIRateLimited.WithLabelValues("mail")))

	// Another user is not affected.
	assert.Equal(t, http.StatusOK, get(newRouter("bob", rl.UserMiddleware("mail"))).Code)
}

func TestAuthenticatedMiddleware(t *testing.T) {
	cfg := AuthenticatedConfig{
		Unauthenticated: Config{Rate: 0.001, Burst: 1, CleanupInterval: time.Hour, MaxAge: time.Hour},
		Authenticated:   Config{Rate: 0.001, Burst: 3, CleanupInterval: time.Hour, MaxAge: time.Hour},
	}

	t.Run("anonymous callers are limited per IP", func(t *testing.T) {
		arl := NewAuthenticated(cfg)
		defer arl.Stop()
		r := newRouter("", arl.Middleware())

		assert.Equal(t, http.StatusOK, get(r).Code)
		w := get(r)
		require.Equal(t, http.StatusTooManyRequests, w.Code)
		assert.Contains(t, w.Body.String(), "Please authenticate for higher limits")
		assert.Equal(t, 1, arl.IPLen())
		assert.Equal(t, 0, arl.UserLen())
	})

	t.Run("authenticated callers get the user bucket", func(t *testing.T) {
		arl := NewAuthenticated(cfg)
		defer arl.Stop()
		r := newRouter("alice", arl.Middleware())

		for i := 0; i < 3; i++ {
			assert.Equal(t, http.StatusOK, get(r).Code)
		}
		assert.Equal(t, http.StatusTooManyRequests, get(r).Code)
		assert.Equal(t, 0, arl.IPLen())
		assert.Equal(t, 1, arl.UserLen())
	})
}
