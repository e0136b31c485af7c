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

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/multierr"

	"github.com/angelmondragon/hangout-backend/api/controllers"
	"github.com/angelmondragon/hangout-backend/api/routes"
	"github.com/angelmondragon/hangout-backend/internal/accounts"
	"github.com/angelmondragon/hangout-backend/internal/businesses"
	"github.com/angelmondragon/hangout-backend/internal/events"
	"github.com/angelmondragon/hangout-backend/internal/ledger"
	"github.com/angelmondragon/hangout-backend/internal/media"
	"github.com/angelmondragon/hangout-backend/internal/vouchers"
	"github.com/angelmondragon/hangout-backend/pkg/auth/session"
	"github.com/angelmondragon/hangout-backend/pkg/config"
	"github.com/angelmondragon/hangout-backend/pkg/db"
	"github.com/angelmondragon/hangout-backend/pkg/logger"
	"github.com/angelmondragon/hangout-backend/pkg/metrics"
	"github.com/angelmondragon/hangout-backend/pkg/migrate"
	"github.com/angelmondragon/hangout-backend/pkg/outbox"
	"github.com/angelmondragon/hangout-backend/pkg/redis"
	"github.com/angelmondragon/hangout-backend/pkg/storage/gcs"
)

const shutdownTimeout = 10 * time.Second

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

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logg); err != nil {
		logg.Error(context.Background(), "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

// closer is released in reverse order on shutdown.
type closer struct {
	name  string
	close func() error
}

func closeAll(closers []closer) error {
	var err error
	for i := len(closers) - 1; i >= 0; i-- {
		if cerr := closers[i].close(); cerr != nil {
			err = multierr.Append(err, fmt.Errorf("closing %s: %w", closers[i].name, cerr))
		}
	}
	return err
}

func run(ctx context.Context, cfg *config.Config, logg *logger.Logger) (err error) {
	var closers []closer
	defer func() {
		err = multierr.Append(err, closeAll(closers))
	}()

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		return fmt.Errorf("bootstrap database: %w", err)
	}
	closers = append(closers, closer{"database", dbClient.Close})

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		return fmt.Errorf("dev migrations: %w", err)
	}

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	if err != nil {
		return fmt.Errorf("bootstrap redis: %w", err)
	}
	closers = append(closers, closer{"redis", redisClient.Close})

	sessions, err := session.NewManager(redisClient)
	if err != nil {
		return fmt.Errorf("session manager: %w", err)
	}

	gcsClient, err := gcs.NewClient(ctx, cfg.GCS, cfg.GCP, logg)
	if err != nil {
		return fmt.Errorf("bootstrap gcs: %w", err)
	}
	closers = append(closers, closer{"gcs", gcsClient.Close})

	uploader, err := media.NewUploader(gcsClient, media.UploaderOptions{
		Prefix:   cfg.Media.EventsPrefix,
		MaxBytes: cfg.Media.MaxUploadBytes(),
		Logger:   logg,
	})
	if err != nil {
		return fmt.Errorf("media uploader: %w", err)
	}

	eventCache, err := events.NewDetailCache(ctx, cfg.Cache.EventDetailTTL)
	if err != nil {
		return fmt.Errorf("event cache: %w", err)
	}
	closers = append(closers, closer{"event cache", eventCache.Close})

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	outboxService := outbox.NewService(outbox.NewRepository(dbClient.DB()), logg)

	businessService, err := businesses.NewService(businesses.NewRepository(dbClient.DB()))
	if err != nil {
		return fmt.Errorf("business service: %w", err)
	}
	accountService, err := accounts.NewService(accounts.NewRepository(dbClient.DB()))
	if err != nil {
		return fmt.Errorf("account service: %w", err)
	}
	voucherService, err := vouchers.NewService(vouchers.NewRepository(dbClient.DB()), businessService)
	if err != nil {
		return fmt.Errorf("voucher service: %w", err)
	}
	ledgerService, err := ledger.NewService(ledger.ServiceParams{
		Tx:         dbClient,
		Repo:       ledger.NewRepository(dbClient.DB()),
		Outbox:     outboxService,
		Businesses: businessService,
		Accounts:   accountService,
		Metrics:    metrics.NewLedgerMetrics(registry),
		Logger:     logg,
	})
	if err != nil {
		return fmt.Errorf("ledger service: %w", err)
	}
	eventService, err := events.NewService(events.ServiceParams{
		Tx:         dbClient,
		Repo:       events.NewRepository(dbClient.DB()),
		Businesses: businessService,
		Uploader:   uploader,
		Outbox:     outboxService,
		Cache:      eventCache,
		Logger:     logg,
	})
	if err != nil {
		return fmt.Errorf("event service: %w", err)
	}

	handler := routes.NewRouter(routes.Dependencies{
		Config:   cfg,
		Logger:   logg,
		Store:    redisClient,
		Sessions: sessions,
		Readiness: []controllers.ReadinessCheck{
			{Name: "db", Target: dbClient},
			{Name: "redis", Target: redisClient},
			{Name: "gcs", Target: gcsClient},
		},
		Metrics:    metrics.NewHTTPMetrics(registry),
		Gatherer:   registry,
		Businesses: businessService,
		Vouchers:   voucherService,
		Ledger:     ledgerService,
		Events:     eventService,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	logCtx := logg.WithFields(ctx, map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})

	server := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logg.Info(logCtx, "starting api server")
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logg.Info(logCtx, "api server shutting down gracefully")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
