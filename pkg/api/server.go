// SPDX-FileCopyrightText: 2025 Deutsche Telekom AG
//
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gin-contrib/cors"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/telekom/notification-service/pkg/apiresponses"
	"github.com/telekom/notification-service/pkg/config"
	"github.com/telekom/notification-service/pkg/ratelimit"
	"github.com/telekom/notification-service/pkg/version"
)

// APIContextTimeout bounds the store and mail work of a single request.
const APIContextTimeout = 30 * time.Second

type APIController interface {
	BasePath() string
	Register(rg *gin.RouterGroup) error
	Handlers() []gin.HandlerFunc
}

// Pinger reports whether a backend is usable. Satisfied by store.Store.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Server struct {
	gin    *gin.Engine
	config config.Server
	log    *zap.SugaredLogger
	http   *http.Server

	ready   atomic.Bool
	backend Pinger

	rateLimiter *ratelimit.AuthenticatedRateLimiter
}

// NewServer builds the engine with request logging, recovery, the health
// endpoints and /api/version. CORS is only enabled in debug mode.
func NewServer(log *zap.Logger, cfg config.Server, debug bool, backend Pinger) *Server {
	if !debug {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(
		ginzap.Ginzap(log, time.RFC3339, true),
		ginzap.RecoveryWithZap(log, true),
		RequestLogger(log.Sugar()),
	)
	if len(cfg.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.TrustedProxies); err != nil {
			log.Sugar().Warnw("Ignoring invalid trusted proxies", "proxies", cfg.TrustedProxies, "error", err)
		}
	}

	if debug {
		engine.Use(
			cors.New(cors.Config{
				AllowOrigins: []string{"http://localhost:5173", "http://127.0.0.1:8080"},
				AllowMethods: []string{"GET", "PUT", "POST", "DELETE", "OPTIONS"},
				AllowHeaders: []string{"Origin", "Authorization", "Content-Type"},
				MaxAge:       12 * time.Hour,
			}),
		)
	}

	s := &Server{
		gin:         engine,
		config:      cfg,
		log:         log.Sugar().Named("server"),
		backend:     backend,
		rateLimiter: ratelimit.NewAuthenticated(ratelimit.DefaultAuthenticatedAPIConfig()),
	}

	s.http = &http.Server{
		Addr:              cfg.ListenAddress,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       config.ParseDurationOrDefault(cfg.ReadTimeout, 30*time.Second),
		WriteTimeout:      config.ParseDurationOrDefault(cfg.WriteTimeout, 60*time.Second),
		IdleTimeout:       config.ParseDurationOrDefault(cfg.IdleTimeout, 120*time.Second),
	}

	engine.GET("healthz", s.healthz)
	engine.GET("readyz", s.readyz)
	engine.GET("api/version", s.getVersion)
	engine.NoRoute(func(c *gin.Context) {
		apiresponses.RespondNotFound(c, "route", c.Request.URL.Path)
	})

	return s
}

// RegisterAll mounts every controller below /api. The controller handlers
// run first, then the API rate limiter.
func (s *Server) RegisterAll(controllers []APIController) error {
	r := s.gin.Group("api")
	for _, c := range controllers {
		handlers := append(append([]gin.HandlerFunc{}, c.Handlers()...), s.rateLimiter.Middleware())
		if err := c.Register(r.Group(c.BasePath(), handlers...)); err != nil {
			return fmt.Errorf("register %s controller: %w", c.BasePath(), err)
		}
	}
	return nil
}

func (s *Server) Handler() http.Handler {
	return s.gin
}

// SetReady switches /readyz. The service turns ready after the startup purge.
func (s *Server) SetReady(ready bool) {
	s.ready.Store(ready)
}

// ListenAndServe blocks until the server fails or is shut down. TLS is used
// when both certificate and key are configured.
func (s *Server) ListenAndServe() error {
	var err error
	if s.config.TLSCertFile != "" && s.config.TLSKeyFile != "" {
		s.log.Infow("Serving API with TLS", "address", s.config.ListenAddress)
		err = s.http.ListenAndServeTLS(s.config.TLSCertFile, s.config.TLSKeyFile)
	} else {
		s.log.Infow("Serving API", "address", s.config.ListenAddress)
		err = s.http.ListenAndServe()
	}
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown stops accepting requests and waits for running ones.
func (s *Server) Shutdown(ctx context.Context) error {
	s.SetReady(false)
	return s.http.Shutdown(ctx)
}

// Close releases the rate limiter goroutines.
func (s *Server) Close() {
	if s.rateLimiter != nil {
		s.rateLimiter.Stop()
	}
}

func (s *Server) healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) readyz(c *gin.Context) {
	if !s.ready.Load() {
		apiresponses.RespondServiceUnavailable(c, "startup in progress")
		return
	}
	if s.backend != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := s.backend.Ping(ctx); err != nil {
			s.log.Warnw("Readiness check failed", "error", err)
			apiresponses.RespondServiceUnavailable(c, "store")
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}

func (s *Server) getVersion(c *gin.Context) {
	apiresponses.RespondOK(c, version.GetBuildInfo())
}
