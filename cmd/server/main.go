package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"carddemo/internal/platform/config"
	"carddemo/internal/platform/logger"
	"carddemo/internal/platform/metrics"
	"carddemo/internal/seeder"
	"carddemo/internal/server/admin"
	"carddemo/internal/server/auth"
	"carddemo/internal/server/auth/store/refreshtoken"
	"carddemo/internal/server/auth/store/user"
	"carddemo/internal/server/auth/workers/cleanup"
	"carddemo/internal/server/cards"
	cardstore "carddemo/internal/server/cards/store"
	jwttoken "carddemo/internal/server/jwt"
	httptransport "carddemo/internal/transport/http"
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal services packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	log.Info("initializing carddemo server",
		"addr", cfg.Addr,
		"token_ttl", cfg.TokenTTL,
		"refresh_ttl", cfg.RefreshTTL,
	)

	registry := prometheus.NewRegistry()
	m := metrics.New(registry)

	users := user.NewMemoryStore()
	tokens := refreshtoken.NewMemoryStore()
	cardData := cardstore.NewMemoryStore()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := seeder.Seed(ctx, users, cardData, log); err != nil {
		log.Error("seeding demo data failed", "error", err)
		os.Exit(1)
	}

	jwtSvc := jwttoken.NewService(cfg.JWTSigningKey, cfg.TokenTTL)
	authSvc := auth.NewService(users, tokens, jwtSvc,
		auth.WithLogger(log),
		auth.WithMetrics(m),
		auth.WithRefreshTTL(cfg.RefreshTTL),
	)
	cardSvc := cards.NewService(cardData, cards.WithLogger(log))
	adminSvc := admin.NewService(users, admin.WithLogger(log))

	router := httptransport.NewRouter(httptransport.RouterConfig{
		Auth:        authSvc,
		Cards:       cardSvc,
		Admin:       adminSvc,
		Validator:   jwtSvc,
		Registry:    registry,
		Metrics:     m,
		CORSOrigins: cfg.CORSOrigins,
		Logger:      log,
	})

	sweeper, err := cleanup.New(tokens, cleanup.WithLogger(log))
	if err != nil {
		log.Error("cleanup worker init failed", "error", err)
		os.Exit(1)
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting http server", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		if err := sweeper.Start(gctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down server gracefully")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("server error", "error", err)
		os.Exit(1)
	}

	log.Info("server stopped")
}
