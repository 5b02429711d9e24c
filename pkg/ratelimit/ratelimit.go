// SPDX-FileCopyrightText: 2025 Deutsche Telekom AG
//
// SPDX-License-Identifier: Apache-2.0

package ratelimit

import (
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/telekom/notification-service/pkg/apiresponses"
	"github.com/telekom/notification-service/pkg/metrics"
	"github.com/telekom/notification-service/pkg/system"
)

// Config of one token bucket family.
type Config struct {
	// Rate is the number of requests allowed per second
	Rate float64
	// Burst is the maximum number of requests allowed in a burst
	Burst int
	// CleanupInterval is how often idle buckets are evicted
	CleanupInterval time.Duration
	// MaxAge is how long a bucket is kept after its last use
	MaxAge time.Duration
}

// AuthenticatedConfig holds separate limits for anonymous and authenticated callers.
type AuthenticatedConfig struct {
	Unauthenticated Config
	Authenticated   Config
	// UserIdentityKey is the gin context key holding the username.
	UserIdentityKey string
}

// DefaultAuthenticatedAPIConfig limits anonymous callers to 10 req/s per IP
// and authenticated callers to 50 req/s per user.
func DefaultAuthenticatedAPIConfig() AuthenticatedConfig {
	return AuthenticatedConfig{
		Unauthenticated: Config{
			Rate:            10,
			Burst:           20,
			CleanupInterval: time.Minute,
			MaxAge:          5 * time.Minute,
		},
		Authenticated: Config{
			Rate:            50,
			Burst:           100,
			CleanupInterval: time.Minute,
			MaxAge:          10 * time.Minute,
		},
		UserIdentityKey: system.UsernameKey,
	}
}

// DefaultMailConfig limits sendMail to 1 req/s per user with a burst of 10.
func DefaultMailConfig() Config {
	return Config{
		Rate:            1,
		Burst:           10,
		CleanupInterval: time.Minute,
		MaxAge:          10 * time.Minute,
	}
}

type entry struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// KeyedLimiter keeps one token bucket per key.
type KeyedLimiter struct {
	mu      sync.RWMutex
	entries map[string]*entry
	config  Config
	done    chan struct{}
	once    sync.Once
}

// New creates a limiter and starts its cleanup goroutine. Stop releases it.
func New(cfg Config) *KeyedLimiter {
	if cfg.CleanupInterval == 0 {
		cfg.CleanupInterval = time.Minute
	}
	if cfg.MaxAge == 0 {
		cfg.MaxAge = 5 * time.Minute
	}

	rl := &KeyedLimiter{
		entries: make(map[string]*entry),
		config:  cfg,
		done:    make(chan struct{}),
	}
	go rl.cleanup()
	return rl
}

// Allow takes a token from key's bucket.
func (rl *KeyedLimiter) Allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	e, exists := rl.entries[key]
	if !exists {
		e = &entry{
			limiter: rate.NewLimiter(rate.Limit(rl.config.Rate), rl.config.Burst),
		}
		rl.entries[key] = e
	}
	e.lastAccess = time.Now()

	return e.limiter.Allow()
}

// UserMiddleware limits per authenticated username, falling back to the
// client IP. kind labels the rejection metric.
func (rl *KeyedLimiter) UserMiddleware(kind string) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetString(system.UsernameKey)
		if key == "" {
			key = c.ClientIP()
		}
		if !rl.Allow(key) {
			metrics.APIRateLimited.WithLabelValues(kind).Inc()
			apiresponses.RespondTooManyRequests(c, "Rate limit exceeded, please try again later")
			c.Abort()
			return
		}
		c.Next()
	}
}

// Stop ends the cleanup goroutine. It is safe to call more than once.
func (rl *KeyedLimiter) Stop() {
	rl.once.Do(func() { close(rl.done) })
}

func (rl *KeyedLimiter) cleanup() {
	ticker := time.NewTicker(rl.config.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-rl.done:
			return
		case <-ticker.C:
			rl.cleanupStaleEntries()
		}
	}
}

func (rl *KeyedLimiter) cleanupStaleEntries() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	for key, e := range rl.entries {
		if now.Sub(e.lastAccess) > rl.config.MaxAge {
			delete(rl.entries, key)
		}
	}
}

// Len returns the number of tracked keys.
func (rl *KeyedLimiter) Len() int {
	rl.mu.RLock()
	defer rl.mu.RUnlock()
	return len(rl.entries)
}

func (rl *KeyedLimiter) Config() Config {
	return rl.config
}

// AuthenticatedRateLimiter applies the per-user limit to authenticated
// requests and the stricter per-IP limit to everything else.
type AuthenticatedRateLimiter struct {
	ipLimiter   *KeyedLimiter
	userLimiter *KeyedLimiter
	userKey     string
}

func NewAuthenticated(cfg AuthenticatedConfig) *AuthenticatedRateLimiter {
	if cfg.UserIdentityKey == "" {
		cfg.UserIdentityKey = system.UsernameKey
	}
	return &AuthenticatedRateLimiter{
		ipLimiter:   New(cfg.Unauthenticated),
		userLimiter: New(cfg.Authenticated),
		userKey:     cfg.UserIdentityKey,
	}
}

// Allow returns (allowed, isAuthenticated).
func (arl *AuthenticatedRateLimiter) Allow(c *gin.Context) (bool, bool) {
	if user := c.GetString(arl.userKey); user != "" {
		return arl.userLimiter.Allow(user), true
	}
	return arl.ipLimiter.Allow(c.ClientIP()), false
}

// Middleware must run after the authentication middleware.
func (arl *AuthenticatedRateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		allowed, isAuthenticated := arl.Allow(c)
		if !allowed {
			msg := "Rate limit exceeded, please try again later"
			kind := "user"
			if !isAuthenticated {
				msg = "Rate limit exceeded. Please authenticate for higher limits."
				kind = "ip"
			}
			metrics.APIRateLimited.WithLabelValues(kind).Inc()
			apiresponses.RespondTooManyRequests(c, msg)
			c.Abort()
			return
		}
		c.Next()
	}
}

func (arl *AuthenticatedRateLimiter) Stop() {
	arl.ipLimiter.Stop()
	arl.userLimiter.Stop()
}

func (arl *AuthenticatedRateLimiter) IPLen() int {
	return arl.ipLimiter.Len()
}

func (arl *AuthenticatedRateLimiter) UserLen() int {
	return arl.userLimiter.Len()
}
