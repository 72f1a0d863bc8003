package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/angelmondragon/storefront-engine/api/middleware"
	"github.com/angelmondragon/storefront-engine/api/routes"
	cartstore "github.com/angelmondragon/storefront-engine/internal/cart"
	checkoutsvc "github.com/angelmondragon/storefront-engine/internal/checkout"
	"github.com/angelmondragon/storefront-engine/pkg/authority"
	"github.com/angelmondragon/storefront-engine/pkg/config"
	"github.com/angelmondragon/storefront-engine/pkg/logger"
	"github.com/angelmondragon/storefront-engine/pkg/persistence"
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
	})

	redisClient, err := persistence.NewRedisClient(context.Background(), cfg.Redis)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	authorityClient, err := authority.NewClient(cfg.Authority)
	if err != nil {
		logg.Error(context.Background(), "failed to create authority client", err)
		os.Exit(1)
	}

	cartPersist, err := persistence.NewFile[cartstore.Snapshot](cfg.Cart.SnapshotPath)
	if err != nil {
		logg.Error(context.Background(), "failed to open cart snapshot store", err)
		os.Exit(1)
	}

	cart, err := cartstore.NewStore(cartstore.Params{
		Authority: authorityClient,
		Persist:   cartPersist,
		Logger:    logg,
		Config:    cfg.Cart,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create cart store", err)
		os.Exit(1)
	}
	if err := cart.Restore(context.Background()); err != nil {
		logg.Error(context.Background(), "failed to restore cart snapshot", err)
		os.Exit(1)
	}

	sessionPersist, err := persistence.NewRedis[checkoutsvc.State](redisClient, "checkout", cfg.Checkout.SessionTTL)
	if err != nil {
		logg.Error(context.Background(), "failed to open checkout session store", err)
		os.Exit(1)
	}

	checkout, err := checkoutsvc.NewMachine(checkoutsvc.Params{
		Persist:   sessionPersist,
		Addresses: authorityClient,
		Logger:    logg,
		Config:    cfg.Checkout,
		Promo:     cfg.Promo,
		Guest: func(ctx context.Context) bool {
			return middleware.UserIDFromContext(ctx) == ""
		},
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create checkout machine", err)
		os.Exit(1)
	}
	if err := checkout.Restore(context.Background()); err != nil {
		logg.Error(context.Background(), "failed to restore checkout session", err)
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
		Addr:    addr,
		Handler: routes.NewRouter(cfg, logg, cart, checkout, redisPinger{redisClient}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

type redisPinger struct {
	client *redis.Client
}

func (p redisPinger) Ping(ctx context.Context) error {
	return p.client.Ping(ctx).Err()
}
