package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	c "github.com/fjod/kirana_cart/internal/cache"
	"github.com/fjod/kirana_cart/internal/config"
	carthttp "github.com/fjod/kirana_cart/internal/http"
	"github.com/fjod/kirana_cart/internal/poller"
	"github.com/fjod/kirana_cart/internal/repository"
	s "github.com/fjod/kirana_cart/internal/service"
	"github.com/fjod/kirana_cart/pkg/logger"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"golang.org/x/sync/errgroup"
)

func main() {
	if err := run(); err != nil {
		slog.Error("cart service failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadServer()
	if err != nil {
		return err
	}
	log := logger.New(logger.Options{
		Service:   "cart-service",
		Env:       cfg.AppEnv,
		Level:     cfg.LogLevel,
		AddSource: true,
	})
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tp := sdktrace.NewTracerProvider()
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})
	defer func() {
		if err := tp.Shutdown(context.Background()); err != nil {
			log.Error("tracer provider shutdown failed", "error", err)
		}
	}()

	policy, err := s.ParseMergePolicy(cfg.MergePolicy)
	if err != nil {
		return err
	}

	repo, closeRepo, err := openRepository(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeRepo()

	var cache c.CartCache = c.Nop{}
	if cfg.CacheEnabled {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		defer redisClient.Close()
		if err := redisClient.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis connection failed: %w", err)
		}
		log.Info("redis ping succeeded", "addr", cfg.RedisAddr)
		cache = c.NewRedisCache(redisClient, cfg.CacheTTL, cfg.CacheJitter)
	}

	service := s.NewCartService(repo, cache, s.WithMergePolicy(policy), s.WithLogger(log))

	srv := &http.Server{
		Addr: ":" + cfg.HTTPPort,
		Handler: carthttp.NewRouter(service, carthttp.RouterOptions{
			RequestTimeout:     cfg.RequestTimeout,
			MaxRequestBodySize: cfg.MaxRequestBodySize,
			Logger:             log,
		}),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("cart service starting", "addr", srv.Addr, "merge_policy", string(policy))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	if len(cfg.KafkaBrokers) > 0 {
		p := poller.NewPoller(service, poller.Config{
			Brokers: cfg.KafkaBrokers,
			Topic:   cfg.OrderTopic,
			GroupID: cfg.ConsumerGroup,
		}, log)
		defer p.Close()
		g.Go(func() error {
			log.Info("order consumer starting", "topic", cfg.OrderTopic, "brokers", cfg.KafkaBrokers)
			p.Run(gctx)
			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down cart service")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	log.Info("cart service stopped")
	return nil
}

func openRepository(ctx context.Context, cfg config.Server, log *slog.Logger) (repository.CartRepository, func(), error) {
	if cfg.CartStore == config.StoreMemory {
		log.Warn("using in-memory cart store, carts are lost on restart")
		return repository.NewMemoryRepository(), func() {}, nil
	}

	db, err := repository.ConnectMongoDB(ctx, cfg.MongoURI, cfg.MongoDBName)
	if err != nil {
		return nil, nil, err
	}
	repo := repository.NewMongoRepository(db)
	if err := repo.CreateIndexes(ctx); err != nil {
		_ = db.Client().Disconnect(context.Background())
		return nil, nil, err
	}
	log.Info("connected to MongoDB", "database", cfg.MongoDBName)

	return repo, func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := db.Client().Disconnect(disconnectCtx); err != nil {
			log.Error("mongo disconnect failed", "error", err)
		}
	}, nil
}
