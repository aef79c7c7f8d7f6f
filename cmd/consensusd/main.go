// Command consensusd serves the multi-agent consensus engine over HTTP.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"dev.helix.consensus/internal/config"
	"dev.helix.consensus/internal/consensus/engine"
	"dev.helix.consensus/internal/consensus/history"
	"dev.helix.consensus/internal/handlers"
	"dev.helix.consensus/internal/observability"
)

func main() {
	cfg := config.Load()

	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})
	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(level)
	}

	store, cleanup, err := buildStore(cfg, log)
	if err != nil {
		log.WithError(err).Fatal("Failed to initialize deliberation history store")
	}
	defer cleanup()

	eng := engine.New(engine.Config{
		DeliberationTimeout: cfg.Engine.DeliberationTimeout,
		AnalyticsWindow:     cfg.Engine.AnalyticsWindow,
	}, nil, store, nil, log)
	eng.SetObserver(observability.NewMetrics())

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	handlers.NewConsensusHandler(eng, log).RegisterRoutes(router)
	handlers.NewVotingHandler(log).RegisterRoutes(router)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{Addr: addr, Handler: router}

	go func() {
		log.WithField("addr", addr).Info("Consensus service listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("HTTP server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down consensus service")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.WithError(err).Error("Forced shutdown")
	}
}

// buildStore selects the history backend: PostgreSQL when configured, an
// in-memory store otherwise.
func buildStore(cfg *config.Config, log *logrus.Logger) (history.Store, func(), error) {
	if !cfg.Database.Enabled || cfg.Database.URL == "" {
		log.Info("Using in-memory deliberation history")
		return history.NewMemoryStore(), func() {}, nil
	}

	pool, err := pgxpool.New(context.Background(), cfg.Database.URL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	store := history.NewPostgresStore(pool, log)
	if err := store.CreateTable(context.Background()); err != nil {
		pool.Close()
		return nil, nil, err
	}

	log.Info("Using PostgreSQL deliberation history")
	return store, pool.Close, nil
}
