package localstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/fjod/kirana_cart/internal/domain"
	"github.com/redis/go-redis/v9"
)

const (
	KeyOwner    = "kc_owner"
	KeyShop     = "kc_shop"
	KeyProducts = "kc_products"
	KeyCustomer = "kc_customer"
	KeyCart     = "kc_cart"
)

// Store holds the device-local records as JSON strings in Redis. Readers
// never fail: a missing, unreadable or malformed entry reads as absent.
type Store struct {
	client redis.UniversalClient
	log    *slog.Logger
}

func New(client redis.UniversalClient, log *slog.Logger) *Store {
	if log == nil {
		log = slog.Default()
	}
	return &Store{client: client, log: log}
}

func (s *Store) Owner(ctx context.Context) *domain.OwnerProfile {
	return load[*domain.OwnerProfile](ctx, s, KeyOwner, nil)
}

func (s *Store) Shop(ctx context.Context) *domain.Shop {
	return load[*domain.Shop](ctx, s, KeyShop, nil)
}

func (s *Store) Products(ctx context.Context) []domain.Product {
	return load(ctx, s, KeyProducts, []domain.Product{})
}

func (s *Store) Customer(ctx context.Context) *domain.CustomerProfile {
	return load[*domain.CustomerProfile](ctx, s, KeyCustomer, nil)
}

func (s *Store) Cart(ctx context.Context) []domain.LocalCartEntry {
	return load(ctx, s, KeyCart, []domain.LocalCartEntry{})
}

func (s *Store) SetOwner(ctx context.Context, owner domain.OwnerProfile) error {
	return s.store(ctx, KeyOwner, owner)
}

func (s *Store) SetShop(ctx context.Context, shop domain.Shop) error {
	return s.store(ctx, KeyShop, shop)
}

func (s *Store) SetProducts(ctx context.Context, products []domain.Product) error {
	if products == nil {
		products = []domain.Product{}
	}
	return s.store(ctx, KeyProducts, products)
}

func (s *Store) SetCustomer(ctx context.Context, customer domain.CustomerProfile) error {
	return s.store(ctx, KeyCustomer, customer)
}

func (s *Store) SetCart(ctx context.Context, entries []domain.LocalCartEntry) error {
	if entries == nil {
		entries = []domain.LocalCartEntry{}
	}
	return s.store(ctx, KeyCart, entries)
}

func (s *Store) ClearCart(ctx context.Context) error {
	return s.SetCart(ctx, nil)
}

func load[T any](ctx context.Context, s *Store, key string, fallback T) T {
	data, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return fallback
	}
	if err != nil {
		s.log.WarnContext(ctx, "local read failed", "key", key, "error", err)
		return fallback
	}

	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		s.log.WarnContext(ctx, "local entry is malformed", "key", key, "error", err)
		return fallback
	}
	return v
}

func (s *Store) store(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s failed: %w", key, err)
	}
	if err := s.client.Set(ctx, key, data, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s failed: %w", key, err)
	}
	return nil
}
