package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/hninyuwai/boutiquepos-backend/api/routes"
	"github.com/hninyuwai/boutiquepos-backend/internal/catalog"
	"github.com/hninyuwai/boutiquepos-backend/internal/customers"
	"github.com/hninyuwai/boutiquepos-backend/internal/distribution"
	"github.com/hninyuwai/boutiquepos-backend/internal/holds"
	"github.com/hninyuwai/boutiquepos-backend/internal/ledger"
	"github.com/hninyuwai/boutiquepos-backend/internal/movements"
	possvc "github.com/hninyuwai/boutiquepos-backend/internal/pos"
	"github.com/hninyuwai/boutiquepos-backend/internal/reports"
	"github.com/hninyuwai/boutiquepos-backend/internal/shifts"
	"github.com/hninyuwai/boutiquepos-backend/internal/transactions"
	"github.com/hninyuwai/boutiquepos-backend/pkg/config"
	"github.com/hninyuwai/boutiquepos-backend/pkg/db"
	"github.com/hninyuwai/boutiquepos-backend/pkg/logger"
	"github.com/hninyuwai/boutiquepos-backend/pkg/metrics"
	"github.com/hninyuwai/boutiquepos-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	// Holds live in redis when an endpoint is configured; a single-node
	// deployment can run on the in-process store.
	var holdStore holds.Store
	pingers := []db.Pinger{dbClient}
	if cfg.Redis.Enabled() {
		redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
		if err != nil {
			logg.Error(context.Background(), "failed to bootstrap redis", err)
			os.Exit(1)
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				logg.Error(context.Background(), "error closing redis", err)
			}
		}()
		holdStore = holds.NewRedisStore(redisClient)
		pingers = append(pingers, redisClient)
	} else {
		logg.Warn(context.Background(), "redis not configured, holds are process-local")
		holdStore = holds.NewMemoryStore()
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	met := metrics.NewLedgerMetrics(registry)

	conn := dbClient.DB()
	catalogRepo := catalog.NewRepository(conn)
	movementRepo := movements.NewRepository(conn)
	transactionRepo := transactions.NewRepository(conn)
	customerRepo := customers.NewRepository(conn)

	catalogSvc, err := catalog.NewService(dbClient, catalogRepo, logg, met)
	requireResource(logg, "catalog service", err)

	ledgerSvc, err := ledger.NewService(dbClient, holdStore)
	requireResource(logg, "ledger service", err)

	posSvc, err := possvc.NewService(dbClient, catalogRepo, ledgerSvc, cfg.Loyalty, logg, met)
	requireResource(logg, "pos service", err)

	distSvc, err := distribution.NewService(dbClient, catalogRepo, ledgerSvc, holdStore, cfg.Ledger, logg, met)
	requireResource(logg, "distribution service", err)

	shiftSvc, err := shifts.NewService(dbClient, logg)
	requireResource(logg, "shift service", err)

	reportSvc, err := reports.NewService(dbClient, movementRepo, holdStore)
	requireResource(logg, "report service", err)

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg, logg, registry,
			catalogSvc, posSvc, distSvc, shiftSvc, reportSvc,
			movementRepo, transactionRepo, customerRepo,
			pingers...,
		),
		ReadHeaderTimeout: 10 * time.Second,
	}

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-runCtx.Done():
		logg.Info(ctx, "shutting down api server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
		}
	}
}

func requireResource(logg *logger.Logger, resource string, err error) {
	if err == nil {
		return
	}
	logg.Error(context.Background(), "resource not working: "+resource, err)
	os.Exit(1)
}
