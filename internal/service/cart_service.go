package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/fjod/kirana_cart/internal/cache"
	"github.com/fjod/kirana_cart/internal/domain"
	"github.com/fjod/kirana_cart/internal/repository"
	"golang.org/x/sync/singleflight"
)

// MergePolicy decides how a load-modify-save cycle deals with a concurrent
// writer to the same cart.
type MergePolicy string

const (
	// PolicyLastWriteWins saves unconditionally. Two concurrent merges can
	// both start from the same state and the later save drops the earlier
	// delta.
	PolicyLastWriteWins MergePolicy = "last-write-wins"
	// PolicyOptimistic saves only if the cart version is unchanged since the
	// load and otherwise reloads and re-applies the mutation.
	PolicyOptimistic MergePolicy = "optimistic"
)

const (
	maxOptimisticAttempts = 3
	cacheWriteTimeout     = time.Second
)

func ParseMergePolicy(s string) (MergePolicy, error) {
	switch p := MergePolicy(s); p {
	case PolicyLastWriteWins, PolicyOptimistic:
		return p, nil
	case "":
		return PolicyLastWriteWins, nil
	default:
		return "", fmt.Errorf("unknown merge policy %q", s)
	}
}

type CartService struct {
	repo   repository.CartRepository
	cache  cache.CartCache
	policy MergePolicy
	log    *slog.Logger
	now    func() time.Time
	sfg    singleflight.Group // Prevents cache stampede
}

type Option func(*CartService)

func WithMergePolicy(p MergePolicy) Option {
	return func(s *CartService) { s.policy = p }
}

func WithLogger(log *slog.Logger) Option {
	return func(s *CartService) { s.log = log }
}

func WithClock(now func() time.Time) Option {
	return func(s *CartService) { s.now = now }
}

func NewCartService(repo repository.CartRepository, c cache.CartCache, opts ...Option) *CartService {
	s := &CartService{
		repo:   repo,
		cache:  c,
		policy: PolicyLastWriteWins,
		log:    slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.cache == nil {
		s.cache = cache.Nop{}
	}
	return s
}

// GetOrCreate returns the user's cart, persisting an empty one the first time
// the user is seen.
func (s *CartService) GetOrCreate(ctx context.Context, userID string) (*domain.Cart, error) {
	v, err, _ := s.sfg.Do(userID, func() (any, error) {
		cart, err := s.cache.Get(ctx, userID)
		if err == nil {
			return cart, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			s.log.WarnContext(ctx, "cache get failed", "user_id", userID, "error", err)
		}

		cart, err = s.repo.GetCart(ctx, userID)
		switch {
		case errors.Is(err, repository.ErrCartNotFound):
			cart, err = s.create(ctx, userID)
			if err != nil {
				return nil, err
			}
		case err != nil:
			return nil, fmt.Errorf("%w: %w", ErrCartLoad, err)
		}

		s.cacheSet(ctx, cart)
		return cart, nil
	})
	if err != nil {
		return nil, err
	}

	// singleflight hands the same pointer to every waiter
	return v.(*domain.Cart).Clone(), nil
}

// ReplaceItems overwrites the whole item list. Items are shape-checked but
// passed through otherwise, duplicates included.
func (s *CartService) ReplaceItems(ctx context.Context, userID string, items []domain.CartItem) (*domain.Cart, error) {
	for _, item := range items {
		if err := item.Validate(); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidCart, err)
		}
	}

	return s.mutate(ctx, userID, true, func(c *domain.Cart) error {
		c.Replace(items, s.now())
		return nil
	})
}

// MergeItem adds delta to the product's quantity, see domain.Cart.Merge.
// Replaying a call with a non-zero delta applies it twice.
func (s *CartService) MergeItem(ctx context.Context, userID string, product domain.ProductRef, delta int) (*domain.Cart, error) {
	if product.ID == "" {
		return nil, fmt.Errorf("%w: product id is required", ErrInvalidCart)
	}

	return s.mutate(ctx, userID, true, func(c *domain.Cart) error {
		if err := c.Merge(product, delta, s.now()); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidCart, err)
		}
		return nil
	})
}

// Clear empties an existing cart. A user without a cart is left without one.
func (s *CartService) Clear(ctx context.Context, userID string) error {
	_, err := s.mutate(ctx, userID, false, func(c *domain.Cart) error {
		c.Empty(s.now())
		return nil
	})
	return err
}

func (s *CartService) Policy() MergePolicy {
	return s.policy
}

// mutate loads the cart (building an unsaved one when create is set), applies
// fn and persists the result under the configured policy. The saved cart then
// replaces the cached copy. It returns a nil cart and no error when the cart
// is missing and create is unset; an fn error aborts without saving.
func (s *CartService) mutate(ctx context.Context, userID string, create bool, fn func(*domain.Cart) error) (*domain.Cart, error) {
	attempts := 1
	if s.policy == PolicyOptimistic {
		attempts = maxOptimisticAttempts
	}

	for attempt := 1; ; attempt++ {
		cart, err := s.repo.GetCart(ctx, userID)
		switch {
		case errors.Is(err, repository.ErrCartNotFound):
			if !create {
				return nil, nil
			}
			cart = domain.NewCart(userID, s.now())
		case err != nil:
			return nil, fmt.Errorf("%w: %w", ErrCartLoad, err)
		}

		loaded := cart.Version
		if err := fn(cart); err != nil {
			return nil, err
		}

		err = s.save(ctx, cart, loaded)
		if err == nil {
			s.cacheSet(ctx, cart.Clone())
			return cart, nil
		}
		if !errors.Is(err, repository.ErrVersionConflict) {
			return nil, fmt.Errorf("%w: %w", ErrCartSave, err)
		}
		if attempt >= attempts {
			return nil, fmt.Errorf("%w: %d attempts: %w", ErrCartConflict, attempt, err)
		}
		s.log.DebugContext(ctx, "cart version conflict, retrying", "user_id", userID, "attempt", attempt, "version", loaded)
	}
}

func (s *CartService) save(ctx context.Context, cart *domain.Cart, loaded int64) error {
	if s.policy == PolicyOptimistic {
		return s.repo.SaveIfVersion(ctx, cart, loaded)
	}
	return s.repo.Save(ctx, cart)
}

// create inserts an empty cart unless someone else created one first, in
// which case theirs is returned.
func (s *CartService) create(ctx context.Context, userID string) (*domain.Cart, error) {
	cart := domain.NewCart(userID, s.now())

	err := s.repo.SaveIfVersion(ctx, cart, 0)
	if errors.Is(err, repository.ErrVersionConflict) {
		existing, errGet := s.repo.GetCart(ctx, userID)
		if errGet != nil {
			return nil, fmt.Errorf("%w: %w", ErrCartLoad, errGet)
		}
		return existing, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCartSave, err)
	}
	return cart, nil
}

// cacheSet writes cart to the cache. The cache keeps whichever copy has the
// higher version, so a reader that loaded before a concurrent save cannot put
// the older cart back. When the write fails the entry is dropped instead.
func (s *CartService) cacheSet(ctx context.Context, cart *domain.Cart) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cacheWriteTimeout)
	defer cancel()

	err := s.cache.Set(ctx, cart.UserID, cart)
	switch {
	case err == nil:
		return
	case errors.Is(err, cache.ErrStaleVersion):
		s.log.DebugContext(ctx, "newer cart already cached", "user_id", cart.UserID, "version", cart.Version)
		return
	}
	s.log.WarnContext(ctx, "cache set failed", "user_id", cart.UserID, "error", err)

	if err := s.cache.Delete(ctx, cart.UserID); err != nil {
		s.log.WarnContext(ctx, "cache invalidate failed", "user_id", cart.UserID, "error", err)
	}
}
