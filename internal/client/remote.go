package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/fjod/kirana_cart/internal/domain"
)

// Messages are shown to users verbatim.
var (
	ErrSaveStore    = errors.New("Failed to save store")
	ErrBulkProducts = errors.New("Failed to bulk save products")
	ErrSaveProfile  = errors.New("Failed to save profile")
)

type bulkProductsRequest struct {
	Products []domain.Product `json:"products"`
}

// CreateStore upserts the owner's shop and returns the response body as sent.
func (c *Client) CreateStore(ctx context.Context, shop domain.Shop) (json.RawMessage, error) {
	return c.call(ctx, http.MethodPost, "/stores", shop, ErrSaveStore)
}

func (c *Client) BulkSaveProducts(ctx context.Context, products []domain.Product) (json.RawMessage, error) {
	if products == nil {
		products = []domain.Product{}
	}
	return c.call(ctx, http.MethodPost, "/products/bulk", bulkProductsRequest{Products: products}, ErrBulkProducts)
}

func (c *Client) SaveCustomerProfile(ctx context.Context, profile domain.ProfileUpdate) (json.RawMessage, error) {
	return c.call(ctx, http.MethodPost, "/customer/profile", profile, ErrSaveProfile)
}
