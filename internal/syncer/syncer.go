package syncer

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/fjod/kirana_cart/internal/domain"
)

// LocalStore is the read side of the device-local cache.
type LocalStore interface {
	Owner(ctx context.Context) *domain.OwnerProfile
	Shop(ctx context.Context) *domain.Shop
	Products(ctx context.Context) []domain.Product
	Customer(ctx context.Context) *domain.CustomerProfile
	Cart(ctx context.Context) []domain.LocalCartEntry
}

// Remote is the subset of the API client the sync run calls.
type Remote interface {
	CreateStore(ctx context.Context, shop domain.Shop) (json.RawMessage, error)
	BulkSaveProducts(ctx context.Context, products []domain.Product) (json.RawMessage, error)
	SaveCustomerProfile(ctx context.Context, profile domain.ProfileUpdate) (json.RawMessage, error)
	UpdateCart(ctx context.Context, userID string, items []domain.CartItem) (*domain.Cart, error)
}

// Syncer pushes local records upstream one way. Steps run in order and the
// first failure stops the run; nothing already sent is undone.
type Syncer struct {
	local  LocalStore
	remote Remote
	log    *slog.Logger
}

func New(local LocalStore, remote Remote, log *slog.Logger) *Syncer {
	if log == nil {
		log = slog.Default()
	}
	return &Syncer{local: local, remote: remote, log: log}
}

// SyncOwnerData sends the shop and the product list of the local owner.
// It reports false without logging when there is no owner with a mobile.
func (s *Syncer) SyncOwnerData(ctx context.Context) bool {
	owner := s.local.Owner(ctx)
	if owner == nil || owner.Mobile == "" {
		return false
	}
	shop := s.local.Shop(ctx)
	products := s.local.Products(ctx)

	if shop != nil {
		if _, err := s.remote.CreateStore(ctx, *shop); err != nil {
			s.log.ErrorContext(ctx, "owner sync failed", "step", "store", "owner_id", owner.ID, "error", err)
			return false
		}
		s.log.InfoContext(ctx, "store synced", "owner_id", owner.ID)
	}

	if len(products) > 0 {
		owned := make([]domain.Product, len(products))
		for i, p := range products {
			p.ShopOwnerID = owner.ID
			owned[i] = p
		}
		if _, err := s.remote.BulkSaveProducts(ctx, owned); err != nil {
			s.log.ErrorContext(ctx, "owner sync failed", "step", "products", "owner_id", owner.ID, "error", err)
			return false
		}
		s.log.InfoContext(ctx, "products synced", "owner_id", owner.ID, "count", len(owned))
	}

	return true
}

// SyncCustomerData sends the customer profile and then overwrites the remote
// cart with the local one. An empty local cart is still sent, as [].
func (s *Syncer) SyncCustomerData(ctx context.Context) bool {
	customer := s.local.Customer(ctx)
	if customer == nil || customer.ID == "" {
		s.log.InfoContext(ctx, "no customer profile found, skipping sync")
		return false
	}
	entries := s.local.Cart(ctx)

	if _, err := s.remote.SaveCustomerProfile(ctx, customer.Update()); err != nil {
		s.log.ErrorContext(ctx, "customer sync failed", "step", "profile", "customer_id", customer.ID, "error", err)
		return false
	}
	s.log.InfoContext(ctx, "customer profile synced", "customer_id", customer.ID)

	items := make([]domain.CartItem, 0, len(entries))
	for _, e := range entries {
		items = append(items, e.CartItem())
	}
	if _, err := s.remote.UpdateCart(ctx, customer.ID, items); err != nil {
		s.log.ErrorContext(ctx, "customer sync failed", "step", "cart", "customer_id", customer.ID, "error", err)
		return false
	}
	s.log.InfoContext(ctx, "cart synced", "customer_id", customer.ID, "items", len(items))

	return true
}
