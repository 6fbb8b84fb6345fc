package service

import "errors"

var (
	// ErrInvalidCart marks payloads rejected before touching the store.
	ErrInvalidCart = errors.New("invalid cart")
	// ErrCartLoad wraps store failures while reading the current cart.
	ErrCartLoad = errors.New("failed to load cart")
	// ErrCartSave wraps store failures while persisting a cart.
	ErrCartSave = errors.New("failed to save cart")
	// ErrCartConflict is returned by the optimistic policy once every
	// attempt lost a race with a concurrent writer.
	ErrCartConflict = errors.New("cart update conflicted with concurrent writes")
)
