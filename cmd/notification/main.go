// SPDX-FileCopyrightText: 2025 Deutsche Telekom AG
//
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"
	stdlog "log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/telekom/notification-service/pkg/api"
	"github.com/telekom/notification-service/pkg/assignee"
	"github.com/telekom/notification-service/pkg/audit"
	"github.com/telekom/notification-service/pkg/cli"
	"github.com/telekom/notification-service/pkg/config"
	"github.com/telekom/notification-service/pkg/dedup"
	"github.com/telekom/notification-service/pkg/identity"
	"github.com/telekom/notification-service/pkg/mail"
	"github.com/telekom/notification-service/pkg/metrics"
	"github.com/telekom/notification-service/pkg/notification"
	"github.com/telekom/notification-service/pkg/ratelimit"
	"github.com/telekom/notification-service/pkg/store"
	"github.com/telekom/notification-service/pkg/system"
	"github.com/telekom/notification-service/pkg/version"
)

const defaultShutdownTimeout = 15 * time.Second

func main() {
	cliConfig := cli.Parse()

	zl, err := system.SetupLogger(cliConfig.Debug)
	if err != nil {
		stdlog.Fatalf("failed to set up logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()
	log := zl.Sugar()
	log.Infow("Starting notification service", "build", version.GetBuildInfo().String())
	cliConfig.Print(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfgManager := config.NewManager(cliConfig.ConfigPath, log)
	if err := cfgManager.Load(); err != nil {
		log.Fatalf("Error loading config: %v", err)
	}
	cfg := cfgManager.Config()
	if cliConfig.WatchConfig {
		go func() {
			if err := cfgManager.Watch(ctx); err != nil {
				log.Warnw("Config hot reload disabled", "error", err)
			}
		}()
	}

	st, err := store.Open(cfg.Store)
	if err != nil {
		log.Fatalf("Error opening store: %v", err)
	}
	defer func() {
		if err := st.Close(); err != nil {
			log.Warnw("Failed to close store", "error", err)
		}
	}()

	recorder, stopAudit := setupAudit(cfg.Audit, zl)

	cache := dedup.NewCache()
	go cache.Run(ctx, cli.ParseDedupSweepInterval(cliConfig.DedupSweepInterval, log))

	dispatcher := mail.NewDispatcher(cache, cfgManager, mail.NewSMTPTransport, recorder, log)

	serviceOpts := []notification.Option{notification.WithRecorder(recorder)}
	var queue *mail.Queue
	if !cliConfig.DisableEmail {
		queue = mail.NewQueue(dispatcher, log, cfg.MailQueue.Size)
		queue.Start()
		serviceOpts = append(serviceOpts, notification.WithMailQueue(queue, cfgManager))
	} else {
		log.Warn("Mail delivery of notifications disabled via --disable-email")
	}
	notifications := notification.NewService(st, log, serviceOpts...)
	groups := assignee.NewManager(st, recorder, log)

	purgeStartup(ctx, notifications, cli.ParsePurgeTimeout(cliConfig.PurgeTimeout, log), log)

	var auth api.Authenticator
	if cliConfig.DisableAuth {
		log.Warn("Authentication disabled via --disable-auth; every request acts as a privileged developer")
		auth = api.StaticAuth{Identity: identity.Identity{
			Username:   "developer",
			Properties: []string{identity.PropertyAlarmsManagement},
		}}
	} else {
		authHandler, err := api.NewAuth(log, cfg)
		if err != nil {
			log.Fatalf("Error setting up authentication: %v", err)
		}
		defer authHandler.Close()
		auth = authHandler
	}

	mailLimiter := ratelimit.New(ratelimit.DefaultMailConfig())
	defer mailLimiter.Stop()

	server := api.NewServer(zl, cfg.Server, cliConfig.Debug, st)
	defer server.Close()
	err = server.RegisterAll([]api.APIController{
		api.NewMailController(log, dispatcher, auth.Middleware(), mailLimiter.UserMiddleware("mail")),
		api.NewAssigneeGroupController(log, groups, auth.Middleware()),
		api.NewUserController(log, groups, auth.Middleware()),
		api.NewNotificationController(log, notifications, auth.Middleware()),
	})
	if err != nil {
		log.Fatalf("Error registering controllers: %v", err)
	}

	var metricsServer *http.Server
	if cliConfig.MetricsEnabled() {
		metricsServer = startMetricsServer(cliConfig.MetricsAddr, log)
	}

	serveErr := make(chan error, 1)
	go func() { serveErr <- server.ListenAndServe() }()
	server.SetReady(true)

	select {
	case <-ctx.Done():
		log.Info("Shutdown signal received")
	case err := <-serveErr:
		if err != nil {
			log.Errorw("API server failed", "error", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(),
		config.ParseDurationOrDefault(cfg.Server.ShutdownTimeout, defaultShutdownTimeout))
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Warnw("API server shutdown incomplete", "error", err)
	}
	if metricsServer != nil {
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			log.Warnw("Metrics server shutdown incomplete", "error", err)
		}
	}
	if queue != nil {
		if err := queue.Stop(shutdownCtx); err != nil {
			log.Warnw("Mail queue did not drain", "error", err)
		}
	}
	stopAudit(shutdownCtx)
	log.Info("Notification service stopped")
}

// purgeStartup removes expired notifications before the service reports
// ready. A failure only delays cleanup, so startup continues.
func purgeStartup(ctx context.Context, svc *notification.Service, timeout time.Duration, log *zap.SugaredLogger) {
	purgeCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	n, err := svc.PurgeExpired(purgeCtx)
	if err != nil {
		log.Warnw("Failed to purge expired notifications at startup", "error", err, "timeout", timeout)
		return
	}
	log.Infow("Purged expired notifications", "count", n)
}

func setupAudit(cfg config.Audit, zl *zap.Logger) (audit.Recorder, func(context.Context)) {
	log := zl.Sugar()
	if !cfg.Enabled {
		return audit.NopRecorder{}, func(context.Context) {}
	}
	sinks := []audit.Sink{audit.NewLogSink(zl)}
	if len(cfg.Kafka.Brokers) > 0 {
		kafkaSink, err := audit.NewKafkaSink(cfg.Kafka, zl)
		if err != nil {
			log.Warnw("Kafka audit sink disabled", "error", err)
		} else {
			sinks = append(sinks, kafkaSink)
		}
	}
	recorder := audit.NewAsyncRecorder(sinks, cfg.BufferSize, zl)
	return recorder, func(ctx context.Context) {
		if err := recorder.Stop(ctx); err != nil {
			log.Warnw("Audit recorder did not flush", "error", err)
		}
	}
}

func startMetricsServer(addr string, log *zap.SugaredLogger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.MetricsHandler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		log.Infow("Serving metrics", "address", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Errorw("Metrics server failed", "error", err)
		}
	}()
	return srv
}
