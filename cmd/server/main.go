package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"recordgate/internal/platform/config"
	"recordgate/internal/platform/httpserver"
	"recordgate/internal/platform/logger"
	platformmetrics "recordgate/internal/platform/metrics"
	"recordgate/internal/platform/middleware"
	"recordgate/internal/record/gateway"
	"recordgate/internal/record/handler"
	recordmetrics "recordgate/internal/record/metrics"
	"recordgate/pkg/platform/httputil"
)

// main wires configuration, the record store, the gateway and the HTTP
// surface, then blocks until a shutdown signal arrives.
func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}
	log := logger.New(cfg.Server.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, log *slog.Logger) error {
	recMetrics := recordmetrics.New()

	backend, err := buildStore(ctx, cfg, log, recMetrics)
	if err != nil {
		return err
	}
	defer func() {
		if err := backend.close(); err != nil {
			log.Warn("close store", "error", err)
		}
	}()

	svc, err := gateway.New(backend.store,
		gateway.WithLogger(log),
		gateway.WithMetrics(recMetrics),
	)
	if err != nil {
		return fmt.Errorf("build gateway: %w", err)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recovery(log))
	r.Use(middleware.Logger(log))
	r.Use(middleware.Latency(platformmetrics.New()))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if err := backend.health(r.Context()); err != nil {
			httputil.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())
	handler.New(svc, log,
		handler.WithAdminToken(cfg.Server.AdminToken),
		handler.WithTimeout(cfg.Server.RequestTimeout),
	).Register(r)

	srv := httpserver.New(cfg.Server, r)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting recordgate",
			"addr", cfg.Server.Addr,
			"store", cfg.Store.Backend,
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		log.Info("shutting down")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		return nil
	})
	return g.Wait()
}
