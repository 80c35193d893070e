package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/multierr"

	"github.com/angelmondragon/listdist/api/routes"
	"github.com/angelmondragon/listdist/internal/agents"
	"github.com/angelmondragon/listdist/internal/distribution"
	"github.com/angelmondragon/listdist/internal/lists"
	"github.com/angelmondragon/listdist/pkg/auth"
	"github.com/angelmondragon/listdist/pkg/auth/session"
	"github.com/angelmondragon/listdist/pkg/config"
	"github.com/angelmondragon/listdist/pkg/db"
	"github.com/angelmondragon/listdist/pkg/logger"
	"github.com/angelmondragon/listdist/pkg/metrics"
	"github.com/angelmondragon/listdist/pkg/migrate"
	"github.com/angelmondragon/listdist/pkg/redis"
)

const shutdownTimeout = 15 * time.Second

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

	if err := run(cfg, logg); err != nil {
		logg.Error(context.Background(), "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logg *logger.Logger) (err error) {
	bootCtx := context.Background()

	dbClient, err := db.New(bootCtx, cfg.DB, cfg.FeatureFlags, logg)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, dbClient.Close())
	}()

	if err := migrate.MaybeRunDev(bootCtx, cfg, logg, dbClient); err != nil {
		return err
	}

	var (
		redisClient    *redis.Client
		sessionChecker session.AccessSessionChecker = session.AllowAll{}
		batchIDs       lists.BatchIDGenerator
	)
	if cfg.Redis.Enabled() {
		redisClient, err = redis.New(bootCtx, cfg.Redis, logg)
		if err != nil {
			return err
		}
		defer func() {
			err = multierr.Append(err, redisClient.Close())
		}()

		manager, err := session.NewManager(redisClient, auth.TTL(cfg.JWT))
		if err != nil {
			return err
		}
		sessionChecker = manager

		reserved, err := lists.NewReservedBatchIDs(redisClient, cfg.BatchID.ReservationTTL, cfg.BatchID.MaxAttempts, logg)
		if err != nil {
			return err
		}
		batchIDs = reserved
	} else {
		logg.Warn(bootCtx, "redis not configured: sessions unchecked, idempotency and batch id reservation disabled")
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	agentRepo := agents.NewRepository(dbClient.DB())
	listRepo := lists.NewRepository(dbClient.DB())

	agentsService, err := agents.NewService(agents.ServiceParams{
		Repo:     agentRepo,
		Items:    listRepo,
		Password: cfg.Password,
	})
	if err != nil {
		return err
	}

	selector, err := distribution.NewSelector(agentRepo)
	if err != nil {
		return err
	}

	listsService, err := lists.NewService(lists.ServiceParams{
		Repo:          listRepo,
		Agents:        agentRepo,
		Selector:      selector,
		Tx:            dbClient,
		BatchIDs:      batchIDs,
		Metrics:       metrics.NewDistributionMetrics(registry),
		Logger:        logg,
		UploadTimeout: cfg.Upload.Timeout,
	})
	if err != nil {
		return err
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			dbClient,
			redisClient,
			sessionChecker,
			listsService,
			agentsService,
			registry,
			metrics.NewHTTPMetrics(registry),
		),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})

	serveErr := make(chan error, 1)
	go func() {
		logg.Info(ctx, "starting api server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}

	logg.Info(ctx, "api server shutting down gracefully")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
