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
	"golang.org/x/sync/errgroup"

	"github.com/procurehub/portal/api/routes"
	"github.com/procurehub/portal/internal/auth"
	"github.com/procurehub/portal/internal/orders"
	"github.com/procurehub/portal/internal/quotations"
	"github.com/procurehub/portal/internal/users"
	"github.com/procurehub/portal/internal/vendors"
	"github.com/procurehub/portal/pkg/auth/session"
	"github.com/procurehub/portal/pkg/config"
	"github.com/procurehub/portal/pkg/db"
	"github.com/procurehub/portal/pkg/logger"
	"github.com/procurehub/portal/pkg/metrics"
	"github.com/procurehub/portal/pkg/migrate"
	"github.com/procurehub/portal/pkg/redis"
	"github.com/procurehub/portal/pkg/security"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "portal-api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "portal-api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
		Fields:      map[string]any{"env": cfg.App.Env},
	})

	if err := run(cfg, logg); err != nil {
		logg.Error(context.Background(), "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logg *logger.Logger) (err error) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbClient, err := db.New(ctx, cfg.DB, db.Options{UseSQLite: cfg.FeatureFlags.UseSQLite}, logg)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, dbClient.Close())
	}()

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		return err
	}

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, redisClient.Close())
	}()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		return err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	workflowMetrics := metrics.NewWorkflowMetrics(registry)

	hasher := security.NewHasher(cfg.Password)
	usersRepo := users.NewRepository(dbClient.DB())
	ordersRepo := orders.NewRepository(dbClient.DB())
	quotationsRepo := quotations.NewRepository(dbClient.DB())

	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:       usersRepo,
		Passwords:      hasher,
		SessionManager: sessionManager,
		JWTConfig:      cfg.JWT,
	})
	if err != nil {
		return err
	}

	registerService, err := auth.NewRegisterService(auth.RegisterServiceParams{
		DB:     dbClient,
		Users:  auth.UsersRepoFactory,
		Hasher: hasher,
	})
	if err != nil {
		return err
	}

	usersService, err := users.NewService(usersRepo, hasher)
	if err != nil {
		return err
	}

	ordersService, err := orders.NewService(orders.ServiceParams{
		Repo:    ordersRepo,
		Tx:      dbClient,
		Bids:    quotations.NewBids(quotationsRepo),
		Users:   usersRepo,
		Metrics: workflowMetrics,
		Logger:  logg,
	})
	if err != nil {
		return err
	}

	quotationsService, err := quotations.NewService(quotations.ServiceParams{
		Repo:    quotationsRepo,
		Orders:  ordersRepo,
		Tx:      dbClient,
		Metrics: workflowMetrics,
	})
	if err != nil {
		return err
	}

	vendorsService, err := vendors.NewService(usersRepo, quotationsRepo)
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
		Handler: routes.NewRouter(routes.Deps{
			Config:     cfg,
			Logger:     logg,
			DB:         dbClient,
			Redis:      redisClient,
			Sessions:   sessionManager,
			Gatherer:   registry,
			Metrics:    metrics.NewHTTPMetrics(registry),
			Auth:       authService,
			Register:   registerService,
			Users:      usersService,
			Orders:     ordersService,
			Quotations: quotationsService,
			Vendors:    vendorsService,
		}),
		ReadTimeout:  cfg.App.ReadTimeout,
		WriteTimeout: cfg.App.WriteTimeout,
		IdleTimeout:  cfg.App.IdleTimeout,
	}

	logCtx := logg.WithFields(ctx, map[string]any{
		"addr":    addr,
		"dialect": dbClient.Dialect(),
	})
	logg.Info(logCtx, "starting api server")

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logg.Info(logCtx, "shutting down api server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
