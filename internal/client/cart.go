package client

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"github.com/fjod/kirana_cart/internal/domain"
)

// Messages are shown to users verbatim.
var (
	ErrFetchCart  = errors.New("Failed to fetch cart")
	ErrUpdateCart = errors.New("Failed to update cart")
	ErrAddToCart  = errors.New("Failed to add item to cart")
	ErrClearCart  = errors.New("Failed to clear cart")
)

type AddItemRequest struct {
	Product  domain.ProductRef `json:"product"`
	Quantity int               `json:"quantity"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type updateRequest struct {
	Items []domain.CartItem `json:"items"`
}

func cartPath(userID string) string {
	return "/cart/" + url.PathEscape(userID)
}

func (c *Client) GetCart(ctx context.Context, userID string) (*domain.Cart, error) {
	data, err := c.call(ctx, http.MethodGet, cartPath(userID), nil, ErrFetchCart)
	if err != nil {
		return nil, err
	}
	var cart domain.Cart
	if err := c.decode(ctx, data, &cart, ErrFetchCart); err != nil {
		return nil, err
	}
	return &cart, nil
}

// UpdateCart replaces the whole item list. A nil slice is sent as [].
func (c *Client) UpdateCart(ctx context.Context, userID string, items []domain.CartItem) (*domain.Cart, error) {
	if items == nil {
		items = []domain.CartItem{}
	}
	data, err := c.call(ctx, http.MethodPost, cartPath(userID), updateRequest{Items: items}, ErrUpdateCart)
	if err != nil {
		return nil, err
	}
	var cart domain.Cart
	if err := c.decode(ctx, data, &cart, ErrUpdateCart); err != nil {
		return nil, err
	}
	return &cart, nil
}

func (c *Client) AddToCart(ctx context.Context, userID string, req AddItemRequest) (*domain.Cart, error) {
	data, err := c.call(ctx, http.MethodPost, cartPath(userID)+"/item", req, ErrAddToCart)
	if err != nil {
		return nil, err
	}
	var cart domain.Cart
	if err := c.decode(ctx, data, &cart, ErrAddToCart); err != nil {
		return nil, err
	}
	return &cart, nil
}

func (c *Client) ClearCart(ctx context.Context, userID string) (MessageResponse, error) {
	data, err := c.call(ctx, http.MethodDelete, cartPath(userID), nil, ErrClearCart)
	if err != nil {
		return MessageResponse{}, err
	}
	var resp MessageResponse
	if err := c.decode(ctx, data, &resp, ErrClearCart); err != nil {
		return MessageResponse{}, err
	}
	return resp, nil
}
