package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

const (
	StoreMongo  = "mongo"
	StoreMemory = "memory"
)

// Server configures cmd/cart-service.
type Server struct {
	AppEnv   string `env:"APP_ENV" envDefault:"development"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	HTTPPort           string        `env:"HTTP_PORT" envDefault:"5000"`
	RequestTimeout     time.Duration `env:"REQUEST_TIMEOUT" envDefault:"5s"`
	ShutdownTimeout    time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
	MaxRequestBodySize int64         `env:"MAX_REQUEST_BODY_SIZE" envDefault:"1048576"`

	// CartStore selects the cart store driver: mongo or memory.
	CartStore   string `env:"CART_STORE" envDefault:"mongo"`
	MongoURI    string `env:"MONGO_URI" envDefault:"mongodb://localhost:27017"`
	MongoDBName string `env:"MONGO_DB_NAME" envDefault:"cartdb"`

	MergePolicy string `env:"CART_MERGE_POLICY" envDefault:"last-write-wins"`

	CacheEnabled  bool          `env:"CART_CACHE_ENABLED" envDefault:"true"`
	RedisAddr     string        `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string        `env:"REDIS_PASSWORD"`
	CacheTTL      time.Duration `env:"CART_CACHE_TTL" envDefault:"15m"`
	CacheJitter   time.Duration `env:"CART_CACHE_JITTER" envDefault:"5m"`

	// KafkaBrokers empty disables the order consumer.
	KafkaBrokers  []string `env:"KAFKA_BROKERS" envSeparator:","`
	OrderTopic    string   `env:"ORDER_TOPIC" envDefault:"order-placed"`
	ConsumerGroup string   `env:"CONSUMER_GROUP" envDefault:"cart-service-consumer"`
}

// Sync configures cmd/cart-sync.
type Sync struct {
	AppEnv   string `env:"APP_ENV" envDefault:"development"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	APIURL        string        `env:"CART_API_URL" envDefault:"http://localhost:5000/api"`
	ClientTimeout time.Duration `env:"CLIENT_TIMEOUT" envDefault:"10s"`

	BreakerFailures    uint32        `env:"BREAKER_CONSECUTIVE_FAILURES" envDefault:"5"`
	BreakerOpenTimeout time.Duration `env:"BREAKER_OPEN_TIMEOUT" envDefault:"30s"`

	LocalRedisAddr     string `env:"LOCAL_REDIS_ADDR" envDefault:"localhost:6379"`
	LocalRedisPassword string `env:"LOCAL_REDIS_PASSWORD"`
	LocalRedisDB       int    `env:"LOCAL_REDIS_DB" envDefault:"0"`
}

func LoadServer() (Server, error) {
	var cfg Server
	if err := env.Parse(&cfg); err != nil {
		return Server{}, fmt.Errorf("parse env: %w", err)
	}
	if cfg.CartStore != StoreMongo && cfg.CartStore != StoreMemory {
		return Server{}, fmt.Errorf("CART_STORE must be %q or %q, got %q", StoreMongo, StoreMemory, cfg.CartStore)
	}
	return cfg, nil
}

func LoadSync() (Sync, error) {
	var cfg Sync
	if err := env.Parse(&cfg); err != nil {
		return Sync{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}
