package cache

import (
	"context"
	"errors"

	"github.com/fjod/kirana_cart/internal/domain"
)

// CartCache is a read-through cache in front of the cart store. It is never
// the source of truth.
type CartCache interface {
	Get(ctx context.Context, userID string) (*domain.Cart, error)
	// Set must not replace a cached cart that has a higher Version; it
	// returns ErrStaleVersion instead.
	Set(ctx context.Context, userID string, cart *domain.Cart) error
	Delete(ctx context.Context, userID string) error
}

var (
	ErrCacheMiss    = errors.New("cache miss")
	ErrStaleVersion = errors.New("cached cart is newer")
)

// Nop is used when no Redis is configured; every Get misses.
type Nop struct{}

func (Nop) Get(context.Context, string) (*domain.Cart, error) { return nil, ErrCacheMiss }
func (Nop) Set(context.Context, string, *domain.Cart) error { return nil }
func (Nop) Delete(context.Context, string) error { return nil }
