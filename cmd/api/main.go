package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/tmoreno/bulkbridge-backend/api/routes"
	"github.com/tmoreno/bulkbridge-backend/internal/bulkorders"
	"github.com/tmoreno/bulkbridge-backend/internal/negotiation"
	"github.com/tmoreno/bulkbridge-backend/internal/notifications"
	"github.com/tmoreno/bulkbridge-backend/internal/rfq"
	"github.com/tmoreno/bulkbridge-backend/internal/sellers"
	"github.com/tmoreno/bulkbridge-backend/pkg/config"
	"github.com/tmoreno/bulkbridge-backend/pkg/db"
	"github.com/tmoreno/bulkbridge-backend/pkg/logger"
	"github.com/tmoreno/bulkbridge-backend/pkg/migrate"
	"github.com/tmoreno/bulkbridge-backend/pkg/outbox"
	"github.com/tmoreno/bulkbridge-backend/pkg/payment"
	"github.com/tmoreno/bulkbridge-backend/pkg/redis"
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

	outboxService := outbox.NewService(outbox.NewRepository(dbClient.DB()), logg)

	sellersService, err := sellers.NewService(sellers.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to create sellers service", err)
		os.Exit(1)
	}

	requestsService, err := bulkorders.NewService(
		bulkorders.NewRepository(dbClient.DB()),
		sellersService,
		dbClient,
		outboxService,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create requests service", err)
		os.Exit(1)
	}

	offersRepo := rfq.NewRepository(dbClient.DB())
	offersService, err := rfq.NewService(offersRepo, sellersService, dbClient, outboxService)
	if err != nil {
		logg.Error(context.Background(), "failed to create offers service", err)
		os.Exit(1)
	}

	paymentClient, err := payment.NewClient(cfg.Payment)
	if err != nil {
		logg.Error(context.Background(), "failed to create payment client", err)
		os.Exit(1)
	}

	acceptance, err := rfq.NewCoordinator(offersRepo, paymentClient, dbClient, outboxService)
	if err != nil {
		logg.Error(context.Background(), "failed to create acceptance coordinator", err)
		os.Exit(1)
	}

	negotiationService, err := negotiation.NewService(requestsService, offersService, acceptance)
	if err != nil {
		logg.Error(context.Background(), "failed to create negotiation service", err)
		os.Exit(1)
	}

	notificationsService, err := notifications.NewService(notifications.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to create notifications service", err)
		os.Exit(1)
	}

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
			cfg,
			logg,
			redisClient,
			negotiationService,
			notificationsService,
			dbClient,
			redisClient,
		),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
