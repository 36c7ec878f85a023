// Package main starts the party planner viewer.
//
// @title Party Planner API
// @version 1.0
// @description Read-only viewer over a cohort's parties, guests and RSVPs.
// @BasePath /
// @securityDefinitions.basic BasicAuth
package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"partyplanner/config"
	"partyplanner/internal/adapters/auth"
	"partyplanner/internal/adapters/partyapi"
	deliveryhttp "partyplanner/internal/delivery/http"
	"partyplanner/internal/delivery/http/controllers"
	"partyplanner/internal/delivery/http/middleware"
	"partyplanner/internal/domain"
	"partyplanner/internal/repository/postgres"
	"partyplanner/internal/services"
	"partyplanner/internal/store"
	"partyplanner/internal/view"

	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const shutdownTimeout = 10 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		log.Fatalf("partyplanner: %v", err)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger := config.NewLogger(cfg)

	gateway, closeGateway, err := newGateway(cfg)
	if err != nil {
		return err
	}
	defer closeGateway()

	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	st := store.New()
	coordinator := services.NewCoordinator(gateway, st, logger, services.NewFetchMetrics(registry), cfg.APITimeout)

	dates := view.NewDateFormatter(cfg.Locale, loc)
	target := view.NewTarget()
	live := controllers.NewLiveGateway(logger, target, cfg.AllowedOrigins)
	target.OnReplace(live.Broadcast)
	view.Mount(st, view.NewRenderer(dates), target, logger)

	viewer := controllers.NewViewerController(logger, coordinator, st, target, view.PageOptions{
		Lang:     dates.Locale.String(),
		LivePath: "/live",
	})

	protect, err := newViewerAuth(cfg)
	if err != nil {
		return err
	}
	router := deliveryhttp.NewRouter(deliveryhttp.Routes{
		Viewer:  viewer,
		Live:    live,
		Metrics: promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		Protect: protect,
	})
	handler := middleware.Logging(logger, middleware.CORS(cfg.AllowedOrigins, router))

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := coordinator.Startup(ctx); err != nil {
			logger.Warn("startup fetch incomplete", "err", err)
		}
	}()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", srv.Addr, "source", cfg.Source, "env", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("listen: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errCh:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	logger.Info("server stopped")
	return nil
}

// newGateway selects the party data source. The returned func releases it.
func newGateway(cfg *config.Config) (domain.PartyGateway, func(), error) {
	if cfg.Source == config.SourcePostgres {
		db, err := sql.Open("postgres", cfg.DBUrl)
		if err != nil {
			return nil, nil, fmt.Errorf("open database: %w", err)
		}
		return postgres.NewPartySource(db), func() { _ = db.Close() }, nil
	}

	var tokens partyapi.TokenSource
	if cfg.APISigningKey != "" {
		tokens = auth.NewServiceTokenIssuer(cfg.APISigningKey, "partyplanner", cfg.APITokenTTL)
	}
	return partyapi.NewClient(cfg.APIURL(), &http.Client{}, tokens), func() {}, nil
}

// newViewerAuth returns the basic-auth wrapper, or nil when no viewer
// credentials are configured.
func newViewerAuth(cfg *config.Config) (func(http.Handler) http.Handler, error) {
	if !cfg.ViewerAuthEnabled() {
		return nil, nil
	}
	verifier, err := auth.NewPasswordVerifier(cfg.ViewerUser, cfg.ViewerPasswordHash)
	if err != nil {
		return nil, fmt.Errorf("viewer credentials: %w", err)
	}
	return middleware.RequireViewer(verifier), nil
}
