package cart_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"go-parts-gateway/internal/cart"
	carterrors "go-parts-gateway/internal/cart/errors"
	mock "go-parts-gateway/internal/mock/cart"
	"go-parts-gateway/internal/pkg/upstream"
	"go-parts-gateway/internal/querycache"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

const (
	userID     = "u-1"
	summaryKey = querycache.Key("cart-summary:u-1")
	activeKey  = querycache.Key("cart:u-1:active")
	lockedKey  = querycache.Key("cart:u-1:locked")
)

func intPtr(v int) *int { return &v }

func dec(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func setupCartService(t *testing.T) (cart.Service, *mock.MockRepository, *querycache.Client) {
	t.Helper()
	ctrl := gomock.NewController(t)
	repo := mock.NewMockRepository(ctrl)
	cache := querycache.NewClient(querycache.NewMemoryStore(), querycache.Options{})

	svc := cart.NewService(cart.Deps{Repo: repo, Cache: cache})
	return svc, repo, cache
}

func item(id string, qty int, unit int64) cart.CartItem {
	return cart.CartItem{
		ID:         id,
		Quantity:   qty,
		Status:     cart.ItemStatusActive,
		UnitPrice:  dec(unit),
		TotalPrice: dec(unit * int64(qty)),
		Product:    cart.Product{ID: "p-" + id, Title: "Part " + id, Price: dec(unit), AllowCart: true},
	}
}

func buildCart(items ...cart.CartItem) cart.Cart {
	c := cart.Cart{ID: "c-1", UserID: userID, Items: items, UniqueItems: len(items), TotalAmount: decimal.Zero}
	for _, it := range items {
		c.TotalItems += it.Quantity
		c.TotalAmount = c.TotalAmount.Add(it.TotalPrice)
	}
	return c
}

// seed writes the three cart views. The locked view carries an extra locked line.
func seed(t *testing.T, cache *querycache.Client, active cart.Cart) cart.Cart {
	t.Helper()
	ctx := context.Background()

	lockedLine := item("locked-1", 1, 50)
	lockedLine.Status = cart.ItemStatusLocked
	locked := buildCart(append(append([]cart.CartItem{}, active.Items...), lockedLine)...)

	require.NoError(t, querycache.WriteJSON(ctx, cache, summaryKey, cart.Summary{
		TotalItems:  active.TotalItems,
		TotalAmount: active.TotalAmount,
	}))
	require.NoError(t, querycache.WriteJSON(ctx, cache, activeKey, active))
	require.NoError(t, querycache.WriteJSON(ctx, cache, lockedKey, locked))
	return locked
}

func readSummary(t *testing.T, cache *querycache.Client) cart.Summary {
	t.Helper()
	s, ok, err := querycache.ReadJSON[cart.Summary](context.Background(), cache, summaryKey)
	require.NoError(t, err)
	require.True(t, ok)
	return s
}

func readCart(t *testing.T, cache *querycache.Client, key querycache.Key) cart.Cart {
	t.Helper()
	c, ok, err := querycache.ReadJSON[cart.Cart](context.Background(), cache, key)
	require.NoError(t, err)
	require.True(t, ok)
	return c
}

func rawEntries(t *testing.T, cache *querycache.Client) map[querycache.Key][]byte {
	t.Helper()
	out := make(map[querycache.Key][]byte)
	for _, k := range []querycache.Key{summaryKey, activeKey, lockedKey} {
		e, ok, err := cache.Read(context.Background(), k)
		require.NoError(t, err)
		if ok {
			out[k] = e.Data
		}
	}
	return out
}

func assertAllStale(t *testing.T, cache *querycache.Client) {
	t.Helper()
	for _, k := range []querycache.Key{summaryKey, activeKey, lockedKey} {
		e, ok, err := cache.Read(context.Background(), k)
		require.NoError(t, err)
		if ok {
			assert.True(t, e.Stale, "key %s should be stale", k)
		}
	}
}

func TestService_Reads(t *testing.T) {
	ctx := context.Background()

	t.Run("detail_is_fetched_once_then_cached", func(t *testing.T) {
		svc, repo, _ := setupCartService(t)
		want := buildCart(item("i-1", 2, 100))

		repo.EXPECT().GetCart(gomock.Any(), false).Return(want, nil).Times(1)

		got, err := svc.Detail(ctx, userID, false)
		require.NoError(t, err)
		assert.Equal(t, 2, got.TotalItems)

		got, err = svc.Detail(ctx, userID, false)
		require.NoError(t, err)
		assert.Len(t, got.Items, 1)
	})

	t.Run("locked_view_uses_its_own_key", func(t *testing.T) {
		svc, repo, _ := setupCartService(t)

		repo.EXPECT().GetCart(gomock.Any(), false).Return(buildCart(item("i-1", 1, 10)), nil)
		repo.EXPECT().GetCart(gomock.Any(), true).Return(buildCart(item("i-1", 1, 10), item("i-2", 1, 10)), nil)

		active, err := svc.Detail(ctx, userID, false)
		require.NoError(t, err)
		locked, err := svc.Detail(ctx, userID, true)
		require.NoError(t, err)

		assert.Len(t, active.Items, 1)
		assert.Len(t, locked.Items, 2)
	})

	t.Run("summary_refetched_after_invalidate", func(t *testing.T) {
		svc, repo, _ := setupCartService(t)

		gomock.InOrder(
			repo.EXPECT().GetSummary(gomock.Any()).Return(cart.Summary{TotalItems: 1, TotalAmount: dec(10)}, nil),
			repo.EXPECT().GetSummary(gomock.Any()).Return(cart.Summary{TotalItems: 3, TotalAmount: dec(30)}, nil),
		)

		s, err := svc.Summary(ctx, userID)
		require.NoError(t, err)
		assert.Equal(t, 1, s.TotalItems)

		require.NoError(t, svc.Invalidate(ctx, userID))

		s, err = svc.Summary(ctx, userID)
		require.NoError(t, err)
		assert.Equal(t, 3, s.TotalItems)
	})

	t.Run("missing_user", func(t *testing.T) {
		svc, _, _ := setupCartService(t)

		_, err := svc.Summary(ctx, "")
		assert.ErrorIs(t, err, carterrors.ErrMissingUser)
	})
}

func TestService_UpdateQty(t *testing.T) {
	ctx := context.Background()

	t.Run("patch_is_visible_before_upstream_call", func(t *testing.T) {
		svc, repo, cache := setupCartService(t)
		seed(t, cache, buildCart(item("i-1", 2, 100), item("i-2", 1, 40)))

		repo.EXPECT().UpdateItem(gomock.Any(), "i-1", 5).
			DoAndReturn(func(ctx context.Context, itemID string, qty int) error {
				s := readSummary(t, cache)
				assert.Equal(t, 6, s.TotalItems)
				assert.True(t, s.TotalAmount.Equal(dec(540)), "got %s", s.TotalAmount)

				a := readCart(t, cache, activeKey)
				assert.Equal(t, 5, a.Items[0].Quantity)
				assert.True(t, a.Items[0].TotalPrice.Equal(dec(500)))
				return nil
			})

		err := svc.UpdateQty(ctx, userID, "i-1", cart.UpdateQtyRequest{Quantity: intPtr(5)})
		require.NoError(t, err)

		s := readSummary(t, cache)
		assert.Equal(t, 6, s.TotalItems)
		assert.True(t, s.TotalAmount.Equal(dec(540)))
		assertAllStale(t, cache)
	})

	t.Run("views_stay_consistent_after_success", func(t *testing.T) {
		svc, repo, cache := setupCartService(t)
		seed(t, cache, buildCart(item("i-1", 2, 100), item("i-2", 3, 40)))

		repo.EXPECT().UpdateItem(gomock.Any(), "i-2", 1).Return(nil)

		require.NoError(t, svc.UpdateQty(ctx, userID, "i-2", cart.UpdateQtyRequest{Quantity: intPtr(1)}))

		for _, k := range []querycache.Key{activeKey, lockedKey} {
			c := readCart(t, cache, k)
			total := decimal.Zero
			qty := 0
			for _, it := range c.Items {
				total = total.Add(it.TotalPrice)
				qty += it.Quantity
			}
			assert.Equal(t, qty, c.TotalItems, "key %s", k)
			assert.True(t, total.Equal(c.TotalAmount), "key %s", k)
			assert.Equal(t, len(c.Items), c.UniqueItems, "key %s", k)
		}

		s := readSummary(t, cache)
		assert.Equal(t, 3, s.TotalItems)
		assert.True(t, s.TotalAmount.Equal(dec(240)))
	})

	t.Run("zero_quantity_drops_line", func(t *testing.T) {
		svc, repo, cache := setupCartService(t)
		seed(t, cache, buildCart(item("i-1", 2, 100), item("i-2", 1, 40)))

		repo.EXPECT().UpdateItem(gomock.Any(), "i-1", 0).Return(nil)

		require.NoError(t, svc.UpdateQty(ctx, userID, "i-1", cart.UpdateQtyRequest{Quantity: intPtr(0)}))

		a := readCart(t, cache, activeKey)
		assert.Equal(t, 1, a.UniqueItems)
		assert.Equal(t, "i-2", a.Items[0].ID)

		l := readCart(t, cache, lockedKey)
		assert.Equal(t, 2, l.UniqueItems)

		s := readSummary(t, cache)
		assert.Equal(t, 1, s.TotalItems)
		assert.True(t, s.TotalAmount.Equal(dec(40)))
	})

	t.Run("locked_only_item_patches_locked_view", func(t *testing.T) {
		svc, repo, cache := setupCartService(t)
		seed(t, cache, buildCart(item("i-1", 2, 100)))

		repo.EXPECT().UpdateItem(gomock.Any(), "locked-1", 3).Return(nil)

		require.NoError(t, svc.UpdateQty(ctx, userID, "locked-1", cart.UpdateQtyRequest{Quantity: intPtr(3)}))

		a := readCart(t, cache, activeKey)
		assert.Equal(t, 2, a.TotalItems)

		l := readCart(t, cache, lockedKey)
		idx := -1
		for i, it := range l.Items {
			if it.ID == "locked-1" {
				idx = i
			}
		}
		require.NotEqual(t, -1, idx)
		assert.Equal(t, 3, l.Items[idx].Quantity)

		s := readSummary(t, cache)
		assert.Equal(t, 4, s.TotalItems)
		assert.True(t, s.TotalAmount.Equal(dec(300)))
	})

	t.Run("rejection_restores_exact_bytes", func(t *testing.T) {
		svc, repo, cache := setupCartService(t)
		seed(t, cache, buildCart(item("i-1", 2, 100)))
		before := rawEntries(t, cache)

		upErr := &upstream.Error{Method: http.MethodPut, Path: "/cart/items/i-1", Status: http.StatusUnprocessableEntity}
		repo.EXPECT().UpdateItem(gomock.Any(), "i-1", 9).Return(upErr)

		err := svc.UpdateQty(ctx, userID, "i-1", cart.UpdateQtyRequest{Quantity: intPtr(9)})
		require.ErrorIs(t, err, upErr)

		assert.Equal(t, before, rawEntries(t, cache))
		assertAllStale(t, cache)
	})

	t.Run("rejection_with_empty_cache_leaves_it_empty", func(t *testing.T) {
		svc, repo, cache := setupCartService(t)

		repo.EXPECT().UpdateItem(gomock.Any(), "i-1", 2).Return(errors.New("boom"))

		err := svc.UpdateQty(ctx, userID, "i-1", cart.UpdateQtyRequest{Quantity: intPtr(2)})
		require.Error(t, err)
		assert.Empty(t, rawEntries(t, cache))
	})

	t.Run("summary_clamps_at_zero", func(t *testing.T) {
		svc, repo, cache := setupCartService(t)
		seed(t, cache, buildCart(item("i-1", 2, 100)))
		require.NoError(t, querycache.WriteJSON(ctx, cache, summaryKey, cart.Summary{TotalItems: 1, TotalAmount: dec(50)}))

		repo.EXPECT().UpdateItem(gomock.Any(), "i-1", 0).Return(nil)

		require.NoError(t, svc.UpdateQty(ctx, userID, "i-1", cart.UpdateQtyRequest{Quantity: intPtr(0)}))

		s := readSummary(t, cache)
		assert.Equal(t, 0, s.TotalItems)
		assert.True(t, s.TotalAmount.IsZero())
	})

	t.Run("unknown_item_leaves_cache_untouched", func(t *testing.T) {
		svc, repo, cache := setupCartService(t)
		seed(t, cache, buildCart(item("i-1", 2, 100)))
		before := rawEntries(t, cache)

		repo.EXPECT().UpdateItem(gomock.Any(), "nope", 4).Return(nil)

		require.NoError(t, svc.UpdateQty(ctx, userID, "nope", cart.UpdateQtyRequest{Quantity: intPtr(4)}))
		assert.Equal(t, before, rawEntries(t, cache))
		assertAllStale(t, cache)
	})

	t.Run("invalid_quantity", func(t *testing.T) {
		svc, _, _ := setupCartService(t)

		err := svc.UpdateQty(ctx, userID, "i-1", cart.UpdateQtyRequest{Quantity: intPtr(1000)})
		assert.ErrorIs(t, err, carterrors.ErrInvalidQty)

		err = svc.UpdateQty(ctx, userID, "i-1", cart.UpdateQtyRequest{})
		assert.ErrorIs(t, err, carterrors.ErrInvalidQty)
	})

	t.Run("missing_item_id", func(t *testing.T) {
		svc, _, _ := setupCartService(t)

		err := svc.UpdateQty(ctx, userID, "", cart.UpdateQtyRequest{Quantity: intPtr(1)})
		assert.ErrorIs(t, err, carterrors.ErrInvalidItemID)
	})
}

func TestService_RemoveItem(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		svc, repo, cache := setupCartService(t)
		seed(t, cache, buildCart(item("i-1", 2, 100), item("i-2", 1, 40)))

		repo.EXPECT().RemoveItem(gomock.Any(), "i-2").Return(nil)

		require.NoError(t, svc.RemoveItem(ctx, userID, "i-2"))

		a := readCart(t, cache, activeKey)
		assert.Len(t, a.Items, 1)
		assert.True(t, a.TotalAmount.Equal(dec(200)))

		s := readSummary(t, cache)
		assert.Equal(t, 2, s.TotalItems)
		assert.True(t, s.TotalAmount.Equal(dec(200)))
		assertAllStale(t, cache)
	})

	t.Run("rejection_rolls_back", func(t *testing.T) {
		svc, repo, cache := setupCartService(t)
		seed(t, cache, buildCart(item("i-1", 2, 100)))
		before := rawEntries(t, cache)

		repo.EXPECT().RemoveItem(gomock.Any(), "i-1").Return(upstream.ErrUnavailable)

		err := svc.RemoveItem(ctx, userID, "i-1")
		require.ErrorIs(t, err, upstream.ErrUnavailable)
		assert.Equal(t, before, rawEntries(t, cache))
	})
}

func TestService_Clear(t *testing.T) {
	ctx := context.Background()

	t.Run("success_empties_every_view", func(t *testing.T) {
		svc, repo, cache := setupCartService(t)
		seed(t, cache, buildCart(item("i-1", 2, 100)))

		repo.EXPECT().Clear(gomock.Any()).Return(nil)

		require.NoError(t, svc.Clear(ctx, userID))

		s := readSummary(t, cache)
		assert.Equal(t, 0, s.TotalItems)
		assert.True(t, s.TotalAmount.IsZero())
		for _, k := range []querycache.Key{activeKey, lockedKey} {
			c := readCart(t, cache, k)
			assert.Empty(t, c.Items)
			assert.Equal(t, 0, c.UniqueItems)
		}
		assertAllStale(t, cache)
	})

	t.Run("rejection_restores_all_three_keys", func(t *testing.T) {
		svc, repo, cache := setupCartService(t)
		seed(t, cache, buildCart(item("i-1", 2, 100), item("i-2", 1, 40)))
		before := rawEntries(t, cache)
		require.Len(t, before, 3)

		repo.EXPECT().Clear(gomock.Any()).Return(errors.New("backend down"))

		require.Error(t, svc.Clear(ctx, userID))
		assert.Equal(t, before, rawEntries(t, cache))
	})
}

func TestService_AddItem(t *testing.T) {
	ctx := context.Background()

	t.Run("success_marks_views_stale_without_patch", func(t *testing.T) {
		svc, repo, cache := setupCartService(t)
		seed(t, cache, buildCart(item("i-1", 2, 100)))
		before := rawEntries(t, cache)

		repo.EXPECT().AddItem(gomock.Any(), "p-9", 2).Return(nil)

		require.NoError(t, svc.AddItem(ctx, userID, cart.AddItemRequest{ProductID: "p-9", Quantity: 2}))
		assert.Equal(t, before, rawEntries(t, cache))
		assertAllStale(t, cache)
	})

	t.Run("rejection_keeps_cache_fresh", func(t *testing.T) {
		svc, repo, cache := setupCartService(t)
		seed(t, cache, buildCart(item("i-1", 2, 100)))

		repo.EXPECT().AddItem(gomock.Any(), "p-9", 1).Return(errors.New("out of stock"))

		require.Error(t, svc.AddItem(ctx, userID, cart.AddItemRequest{ProductID: "p-9", Quantity: 1}))

		e, ok, err := cache.Read(ctx, activeKey)
		require.NoError(t, err)
		require.True(t, ok)
		assert.False(t, e.Stale)
	})

	t.Run("validation", func(t *testing.T) {
		svc, _, _ := setupCartService(t)

		err := svc.AddItem(ctx, userID, cart.AddItemRequest{Quantity: 1})
		assert.ErrorIs(t, err, carterrors.ErrInvalidProductID)

		err = svc.AddItem(ctx, userID, cart.AddItemRequest{ProductID: "p-1", Quantity: 0})
		assert.ErrorIs(t, err, carterrors.ErrInvalidQty)
	})
}
