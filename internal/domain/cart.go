package domain

import (
	"errors"
	"fmt"
	"math"
	"time"
)

var (
	ErrInvalidItem      = errors.New("invalid cart item")
	ErrQuantityOverflow = errors.New("quantity out of range")
)

type Cart struct {
	ID        string     `bson:"_id,omitempty" json:"id,omitempty"`
	UserID    string     `bson:"user_id" json:"userId"`
	Items     []CartItem `bson:"items" json:"items"`
	UpdatedAt time.Time  `bson:"updated_at" json:"updatedAt"`
	Version   int64      `bson:"version" json:"version"`
}

type CartItem struct {
	ProductID   string `bson:"product_id" json:"productId"`
	Quantity    int    `bson:"quantity" json:"quantity"`
	Name        string `bson:"name" json:"name"`
	Price       Price  `bson:"price" json:"price"`
	ShopOwnerID string `bson:"shop_owner_id" json:"shopOwnerId"`
}

// ProductRef is the product snapshot a client sends when adding a single item.
type ProductRef struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Price       Price  `json:"price"`
	ShopOwnerID string `json:"shopOwnerId"`
}

func NewCart(userID string, now time.Time) *Cart {
	return &Cart{
		UserID:    userID,
		Items:     []CartItem{},
		UpdatedAt: now,
	}
}

// Validate checks the persisted shape of an item: a product id and a
// positive quantity. Prices may be zero but not negative.
func (i CartItem) Validate() error {
	if i.ProductID == "" {
		return fmt.Errorf("%w: productId is required", ErrInvalidItem)
	}
	if i.Quantity < 1 {
		return fmt.Errorf("%w: quantity for product %s must be at least 1, got %d", ErrInvalidItem, i.ProductID, i.Quantity)
	}
	if i.Price.IsNegative() {
		return fmt.Errorf("%w: price for product %s must not be negative", ErrInvalidItem, i.ProductID)
	}
	return nil
}

func (c *Cart) Replace(items []CartItem, now time.Time) {
	c.Items = append(make([]CartItem, 0, len(items)), items...)
	c.UpdatedAt = now
}

// Merge applies a quantity delta for one product. An existing line is
// removed once its quantity drops to zero or below; a missing line is only
// created for a positive delta. A delta the quantity cannot absorb leaves
// the cart untouched and returns ErrQuantityOverflow.
func (c *Cart) Merge(product ProductRef, delta int, now time.Time) error {
	idx := c.indexOf(product.ID)
	if idx >= 0 {
		q := c.Items[idx].Quantity
		if (delta > 0 && q > math.MaxInt-delta) || (delta < 0 && q < math.MinInt-delta) {
			return fmt.Errorf("%w: product %s has %d, cannot add %d", ErrQuantityOverflow, product.ID, q, delta)
		}
	}
	switch {
	case idx >= 0:
		c.Items[idx].Quantity += delta
		if c.Items[idx].Quantity <= 0 {
			c.Items = append(c.Items[:idx], c.Items[idx+1:]...)
		}
	case delta > 0:
		c.Items = append(c.Items, CartItem{
			ProductID:   product.ID,
			Quantity:    delta,
			Name:        product.Name,
			Price:       product.Price,
			ShopOwnerID: product.ShopOwnerID,
		})
	}
	c.UpdatedAt = now
	return nil
}

func (c *Cart) Empty(now time.Time) {
	c.Items = []CartItem{}
	c.UpdatedAt = now
}

func (c *Cart) Quantity(productID string) int {
	if idx := c.indexOf(productID); idx >= 0 {
		return c.Items[idx].Quantity
	}
	return 0
}

func (c *Cart) Clone() *Cart {
	if c == nil {
		return nil
	}
	cp := *c
	cp.Items = append(make([]CartItem, 0, len(c.Items)), c.Items...)
	return &cp
}

func (c *Cart) indexOf(productID string) int {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			return i
		}
	}
	return -1
}
