package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/fjod/kirana_cart/internal/client"
	"github.com/fjod/kirana_cart/internal/config"
	"github.com/fjod/kirana_cart/internal/localstore"
	"github.com/fjod/kirana_cart/internal/syncer"
	"github.com/fjod/kirana_cart/pkg/circuitbreaker"
	"github.com/fjod/kirana_cart/pkg/logger"
	"github.com/redis/go-redis/v9"
)

// cart-sync pushes the locally cached owner and customer records to the
// remote API once. It exits non-zero when none of the requested syncs went
// through; a device usually holds either an owner or a customer profile.
func main() {
	owner := flag.Bool("owner", true, "sync owner shop and products")
	customer := flag.Bool("customer", true, "sync customer profile and cart")
	flag.Parse()

	cfg, err := config.LoadSync()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	log := logger.New(logger.Options{
		Service: "cart-sync",
		Env:     cfg.AppEnv,
		Level:   cfg.LogLevel,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.LocalRedisAddr,
		Password: cfg.LocalRedisPassword,
		DB:       cfg.LocalRedisDB,
	})
	defer redisClient.Close()

	remote := client.New(client.Options{
		BaseURL: cfg.APIURL,
		Timeout: cfg.ClientTimeout,
		Breaker: circuitbreaker.Settings{
			Name:                "cart-api",
			ConsecutiveFailures: cfg.BreakerFailures,
			OpenTimeout:         cfg.BreakerOpenTimeout,
		},
		Logger: log,
	})
	sync := syncer.New(localstore.New(redisClient, log), remote, log)

	ok := false
	if *owner {
		synced := sync.SyncOwnerData(ctx)
		log.Info("owner sync finished", slog.Bool("synced", synced))
		ok = ok || synced
	}
	if *customer {
		synced := sync.SyncCustomerData(ctx)
		log.Info("customer sync finished", slog.Bool("synced", synced))
		ok = ok || synced
	}
	if !ok {
		_ = redisClient.Close()
		stop()
		os.Exit(1)
	}
}
