package repository

import (
	"context"
	"sync"

	"github.com/fjod/kirana_cart/internal/domain"
)

// MemoryRepository implements CartRepository with in-memory storage. Every
// read and write copies the cart so callers never share state with the
// store, the same as a round trip to a document database.
type MemoryRepository struct {
	mu    sync.RWMutex
	carts map[string]*domain.Cart // userID -> cart
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		carts: make(map[string]*domain.Cart),
	}
}

func (r *MemoryRepository) GetCart(ctx context.Context, userID string) (*domain.Cart, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	cart, ok := r.carts[userID]
	if !ok {
		return nil, ErrCartNotFound
	}
	return cart.Clone(), nil
}

func (r *MemoryRepository) Save(ctx context.Context, cart *domain.Cart) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.store(cart)
	return nil
}

func (r *MemoryRepository) SaveIfVersion(ctx context.Context, cart *domain.Cart, expected int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	var current int64
	if existing, ok := r.carts[cart.UserID]; ok {
		current = existing.Version
	}
	if current != expected {
		return ErrVersionConflict
	}

	r.store(cart)
	return nil
}

// Len reports how many carts are stored.
func (r *MemoryRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.carts)
}

func (r *MemoryRepository) store(cart *domain.Cart) {
	var version int64
	id := cart.UserID
	if existing, ok := r.carts[cart.UserID]; ok {
		version = existing.Version
		id = existing.ID
	}

	saved := cart.Clone()
	saved.ID = id
	saved.Version = version + 1
	if saved.Items == nil {
		saved.Items = []domain.CartItem{}
	}
	r.carts[cart.UserID] = saved

	*cart = *saved.Clone()
}
