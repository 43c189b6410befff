package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"taxipark/config"
	"taxipark/pkg/logger"
	"taxipark/pkg/notify"
	"taxipark/pkg/web"
	"taxipark/pkg/web/middleware"
	"taxipark/service"
	"taxipark/storage/backend"
)

const (
	shutdownTimeout = 10 * time.Second
	sessionSweep    = time.Hour
)

func main() {
	cfg := config.Load()

	log := logger.New(cfg.ServiceName, cfg.LoggerLevel)
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("service stopped with error", logger.Error(err))
		os.Exit(1)
	}
	log.Info("service stopped")
}

func run(ctx context.Context, cfg config.Config, log logger.ILogger) error {
	store, err := backend.Open(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer store.Close()

	notifier, err := notify.New(cfg.TelegramBotToken, cfg.AdminChatID, log)
	if err != nil {
		return fmt.Errorf("init notifier: %w", err)
	}

	svc := service.New(store, log, service.Options{
		PageSize:   cfg.PageSize,
		SecretKey:  cfg.SecretKey,
		SessionTTL: cfg.SessionTTL,
		Notifier:   notifier,
	})

	if cfg.LoggerLevel != logger.LevelDebug {
		gin.SetMode(gin.ReleaseMode)
	}
	metrics := middleware.NewMetrics("taxipark")
	router, err := web.NewRouter(svc, log, web.Options{Metrics: metrics})
	if err != nil {
		return fmt.Errorf("build router: %w", err)
	}

	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", metrics.Handler())

	servers := []*http.Server{
		{Addr: fmt.Sprintf(":%d", cfg.HTTPPort), Handler: router, ReadHeaderTimeout: 10 * time.Second},
		{Addr: fmt.Sprintf(":%d", cfg.MetricsPort), Handler: metricsMux, ReadHeaderTimeout: 10 * time.Second},
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, srv := range servers {
		srv := srv
		g.Go(func() error {
			log.Info("listening", logger.String("addr", srv.Addr))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("serve %s: %w", srv.Addr, err)
			}
			return nil
		})
	}

	g.Go(func() error {
		ticker := time.NewTicker(sessionSweep)
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-ticker.C:
				if _, err := svc.Session().DeleteExpired(gctx); err != nil {
					log.Warning("failed to sweep sessions", logger.Error(err))
				}
			}
		}
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		for _, srv := range servers {
			if err := srv.Shutdown(shutdownCtx); err != nil {
				log.Error("shutdown failed", logger.String("addr", srv.Addr), logger.Error(err))
			}
		}
		if t, ok := notifier.(*notify.Telegram); ok {
			t.Wait()
		}
		return nil
	})

	return g.Wait()
}
