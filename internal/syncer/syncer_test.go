package syncer

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/fjod/kirana_cart/internal/domain"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var priceComparer = cmp.Comparer(func(a, b domain.Price) bool { return a.Equal(b) })

type fakeLocal struct {
	owner    *domain.OwnerProfile
	shop     *domain.Shop
	products []domain.Product
	customer *domain.CustomerProfile
	cart     []domain.LocalCartEntry
}

func (f *fakeLocal) Owner(context.Context) *domain.OwnerProfile { return f.owner }
func (f *fakeLocal) Shop(context.Context) *domain.Shop { return f.shop }
func (f *fakeLocal) Products(context.Context) []domain.Product { return f.products }
func (f *fakeLocal) Customer(context.Context) *domain.CustomerProfile { return f.customer }
func (f *fakeLocal) Cart(context.Context) []domain.LocalCartEntry { return f.cart }

type cartUpdate struct {
	userID string
	items  []domain.CartItem
}

type fakeRemote struct {
	calls    []string
	shops    []domain.Shop
	products [][]domain.Product
	profiles []domain.ProfileUpdate
	updates  []cartUpdate

	failOn string
}

func (f *fakeRemote) record(step string) error {
	f.calls = append(f.calls, step)
	if f.failOn == step {
		return errors.New(step + " failed")
	}
	return nil
}

func (f *fakeRemote) CreateStore(_ context.Context, shop domain.Shop) (json.RawMessage, error) {
	f.shops = append(f.shops, shop)
	return json.RawMessage(`{}`), f.record("store")
}

func (f *fakeRemote) BulkSaveProducts(_ context.Context, products []domain.Product) (json.RawMessage, error) {
	f.products = append(f.products, products)
	return json.RawMessage(`{}`), f.record("products")
}

func (f *fakeRemote) SaveCustomerProfile(_ context.Context, profile domain.ProfileUpdate) (json.RawMessage, error) {
	f.profiles = append(f.profiles, profile)
	return json.RawMessage(`{}`), f.record("profile")
}

func (f *fakeRemote) UpdateCart(_ context.Context, userID string, items []domain.CartItem) (*domain.Cart, error) {
	f.updates = append(f.updates, cartUpdate{userID: userID, items: items})
	if err := f.record("cart"); err != nil {
		return nil, err
	}
	return &domain.Cart{UserID: userID, Items: items}, nil
}

func newTestSyncer(local *fakeLocal, remote *fakeRemote) *Syncer {
	return New(local, remote, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

var (
	owner = &domain.OwnerProfile{ID: "o1", FullName: "Ravi", Mobile: "9000000001"}
	shop  = &domain.Shop{OwnerID: "o1", ShopName: "Ravi Kirana"}
	rice  = domain.Product{ID: "p1", ShopOwnerID: "stale", Name: "Rice", Price: domain.NewPrice(60), Available: true}
	oil   = domain.Product{ID: "p2", Name: "Oil", Price: domain.NewPrice(145.5)}
)

func TestSyncOwnerData(t *testing.T) {
	tests := []struct {
		name      string
		local     *fakeLocal
		failOn    string
		want      bool
		wantCalls []string
	}{
		{
			name:      "no owner",
			local:     &fakeLocal{shop: shop, products: []domain.Product{rice}},
			want:      false,
			wantCalls: nil,
		},
		{
			name:      "owner without mobile",
			local:     &fakeLocal{owner: &domain.OwnerProfile{ID: "o1"}, shop: shop},
			want:      false,
			wantCalls: nil,
		},
		{
			name:      "nothing to send",
			local:     &fakeLocal{owner: owner},
			want:      true,
			wantCalls: nil,
		},
		{
			name:      "shop only",
			local:     &fakeLocal{owner: owner, shop: shop},
			want:      true,
			wantCalls: []string{"store"},
		},
		{
			name:      "products only",
			local:     &fakeLocal{owner: owner, products: []domain.Product{rice}},
			want:      true,
			wantCalls: []string{"products"},
		},
		{
			name:      "shop and products",
			local:     &fakeLocal{owner: owner, shop: shop, products: []domain.Product{rice, oil}},
			want:      true,
			wantCalls: []string{"store", "products"},
		},
		{
			name:      "store failure stops the run",
			local:     &fakeLocal{owner: owner, shop: shop, products: []domain.Product{rice}},
			failOn:    "store",
			want:      false,
			wantCalls: []string{"store"},
		},
		{
			name:      "products failure",
			local:     &fakeLocal{owner: owner, shop: shop, products: []domain.Product{rice}},
			failOn:    "products",
			want:      false,
			wantCalls: []string{"store", "products"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			remote := &fakeRemote{failOn: tt.failOn}

			got := newTestSyncer(tt.local, remote).SyncOwnerData(context.Background())

			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantCalls, remote.calls)
		})
	}
}

func TestSyncOwnerData_RewritesShopOwnerID(t *testing.T) {
	local := &fakeLocal{owner: owner, products: []domain.Product{rice, oil}}
	remote := &fakeRemote{}

	require.True(t, newTestSyncer(local, remote).SyncOwnerData(context.Background()))

	require.Len(t, remote.products, 1)
	want := []domain.Product{rice, oil}
	want[0].ShopOwnerID = "o1"
	want[1].ShopOwnerID = "o1"
	if diff := cmp.Diff(want, remote.products[0], priceComparer); diff != "" {
		t.Errorf("products mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, "stale", local.products[0].ShopOwnerID, "local records are not modified")
}

func TestSyncCustomerData(t *testing.T) {
	customer := &domain.CustomerProfile{ID: "c1", Mobile: "9000000002", Name: "Asha", Email: "asha@example.com"}
	entries := []domain.LocalCartEntry{
		{Product: domain.Product{ID: "p1", ShopOwnerID: "o1", Name: "Rice", Price: domain.NewPrice(60), Category: "Grains"}, Quantity: 2},
		{Product: domain.Product{ID: "p2", ShopOwnerID: "o2", Name: "Oil", Price: domain.NewPrice(145.5)}, Quantity: 1},
	}

	t.Run("sends profile then translated cart", func(t *testing.T) {
		remote := &fakeRemote{}

		got := newTestSyncer(&fakeLocal{customer: customer, cart: entries}, remote).SyncCustomerData(context.Background())

		require.True(t, got)
		assert.Equal(t, []string{"profile", "cart"}, remote.calls)
		assert.Equal(t, []domain.ProfileUpdate{{UserID: "c1", Mobile: "9000000002", Name: "Asha", Email: "asha@example.com"}}, remote.profiles)
		require.Len(t, remote.updates, 1)
		assert.Equal(t, "c1", remote.updates[0].userID)
		want := []domain.CartItem{
			{ProductID: "p1", Quantity: 2, Name: "Rice", Price: domain.NewPrice(60), ShopOwnerID: "o1"},
			{ProductID: "p2", Quantity: 1, Name: "Oil", Price: domain.NewPrice(145.5), ShopOwnerID: "o2"},
		}
		if diff := cmp.Diff(want, remote.updates[0].items, priceComparer); diff != "" {
			t.Errorf("items mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("empty local cart is sent as an empty array", func(t *testing.T) {
		remote := &fakeRemote{}

		got := newTestSyncer(&fakeLocal{customer: customer}, remote).SyncCustomerData(context.Background())

		require.True(t, got)
		require.Len(t, remote.updates, 1)
		items := remote.updates[0].items
		require.NotNil(t, items)
		data, err := json.Marshal(map[string]any{"items": items})
		require.NoError(t, err)
		assert.JSONEq(t, `{"items":[]}`, string(data))
	})

	t.Run("no customer", func(t *testing.T) {
		remote := &fakeRemote{}

		got := newTestSyncer(&fakeLocal{cart: entries}, remote).SyncCustomerData(context.Background())

		assert.False(t, got)
		assert.Empty(t, remote.calls)
	})

	t.Run("customer without id", func(t *testing.T) {
		remote := &fakeRemote{}

		got := newTestSyncer(&fakeLocal{customer: &domain.CustomerProfile{Name: "Asha"}}, remote).SyncCustomerData(context.Background())

		assert.False(t, got)
		assert.Empty(t, remote.calls)
	})

	t.Run("profile failure skips the cart", func(t *testing.T) {
		remote := &fakeRemote{failOn: "profile"}

		got := newTestSyncer(&fakeLocal{customer: customer, cart: entries}, remote).SyncCustomerData(context.Background())

		assert.False(t, got)
		assert.Equal(t, []string{"profile"}, remote.calls)
	})

	t.Run("cart failure", func(t *testing.T) {
		remote := &fakeRemote{failOn: "cart"}

		got := newTestSyncer(&fakeLocal{customer: customer, cart: entries}, remote).SyncCustomerData(context.Background())

		assert.False(t, got)
		assert.Equal(t, []string{"profile", "cart"}, remote.calls)
	})
}
