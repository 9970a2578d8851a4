package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/mmattyV/scentra-backend/api/routes"
	"github.com/mmattyV/scentra-backend/internal/cart"
	checkoutsvc "github.com/mmattyV/scentra-backend/internal/checkout"
	"github.com/mmattyV/scentra-backend/internal/fragrances"
	"github.com/mmattyV/scentra-backend/internal/listings"
	"github.com/mmattyV/scentra-backend/internal/media"
	"github.com/mmattyV/scentra-backend/internal/orders"
	"github.com/mmattyV/scentra-backend/internal/statussync"
	"github.com/mmattyV/scentra-backend/pkg/config"
	"github.com/mmattyV/scentra-backend/pkg/db"
	"github.com/mmattyV/scentra-backend/pkg/instance"
	"github.com/mmattyV/scentra-backend/pkg/logger"
	"github.com/mmattyV/scentra-backend/pkg/metrics"
	"github.com/mmattyV/scentra-backend/pkg/migrate"
	"github.com/mmattyV/scentra-backend/pkg/outbox"
	"github.com/mmattyV/scentra-backend/pkg/redis"
	"github.com/mmattyV/scentra-backend/pkg/storage/gcs"
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

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

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

	gcsClient, err := gcs.NewClient(context.Background(), cfg.GCS, cfg.GCP, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap gcs", err)
		os.Exit(1)
	}
	defer func() {
		if err := gcsClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing gcs", err)
		}
	}()

	registry := prometheus.NewRegistry()
	checkoutMetrics := metrics.NewCheckoutMetrics(registry)
	statusSyncMetrics := metrics.NewStatusSyncMetrics(registry)

	outboxService := outbox.NewService(outbox.NewRepository(dbClient.DB()), logg)

	fragranceRepo := fragrances.NewRepository(dbClient.DB())
	listingRepo := listings.NewRepository(dbClient.DB())
	orderRepo := orders.NewRepository(dbClient.DB())

	fragranceService, err := fragrances.NewService(fragranceRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create fragrance service", err)
		os.Exit(1)
	}

	listingService, err := listings.NewService(listingRepo, fragranceRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create listing service", err)
		os.Exit(1)
	}

	statusSync, err := statussync.NewService(dbClient, listingRepo, orderRepo, outboxService, statusSyncMetrics, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create status sync service", err)
		os.Exit(1)
	}

	cartStore, err := cart.NewRedisStore(redisClient, cfg.Cart.TTL)
	if err != nil {
		logg.Error(context.Background(), "failed to create cart store", err)
		os.Exit(1)
	}

	cartService, err := cart.NewService(cartStore, listingService, cfg.Cart, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create cart service", err)
		os.Exit(1)
	}

	checkoutService, err := checkoutsvc.NewService(cartStore, listingRepo, orderRepo, statusSync, dbClient, outboxService, checkoutMetrics, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create checkout service", err)
		os.Exit(1)
	}

	orderService, err := orders.NewService(orderRepo, dbClient, statusSync, outboxService, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create order service", err)
		os.Exit(1)
	}

	mediaService, err := media.NewService(gcsClient, cfg.GCS)
	if err != nil {
		logg.Error(context.Background(), "failed to create media service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": instance.GetID(),
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			dbClient,
			redisClient,
			gcsClient,
			registry,
			fragranceService,
			listingService,
			statusSync,
			cartService,
			checkoutService,
			orderService,
			mediaService,
		),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
