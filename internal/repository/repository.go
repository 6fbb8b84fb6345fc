package repository

import (
	"context"
	"errors"

	"github.com/fjod/kirana_cart/internal/domain"
)

var (
	ErrCartNotFound    = errors.New("cart not found")
	ErrVersionConflict = errors.New("cart was modified concurrently")
)

// CartRepository stores one cart document per user.
//
// Save is an unconditional upsert keyed by user id. SaveIfVersion only
// writes when the stored version still equals expected (zero meaning "no
// document yet") and returns ErrVersionConflict otherwise. Both bump the
// version and refresh the passed cart from the persisted document.
type CartRepository interface {
	GetCart(ctx context.Context, userID string) (*domain.Cart, error)
	Save(ctx context.Context, cart *domain.Cart) error
	SaveIfVersion(ctx context.Context, cart *domain.Cart, expected int64) error
}
