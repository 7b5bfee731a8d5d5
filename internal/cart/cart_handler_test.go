package cart_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go-parts-gateway/internal/cart"
	carterrors "go-parts-gateway/internal/cart/errors"
	"go-parts-gateway/internal/pkg/upstream"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

// ==================== FAKE SERVICE ====================

type fakeCartService struct {
	summaryFunc    func(ctx context.Context, userID string) (cart.Summary, error)
	detailFunc     func(ctx context.Context, userID string, includeLocked bool) (cart.Cart, error)
	addItemFunc    func(ctx context.Context, userID string, req cart.AddItemRequest) error
	updateQtyFunc  func(ctx context.Context, userID, itemID string, req cart.UpdateQtyRequest) error
	removeItemFunc func(ctx context.Context, userID, itemID string) error
	clearFunc      func(ctx context.Context, userID string) error
}

func (f *fakeCartService) Summary(ctx context.Context, userID string) (cart.Summary, error) {
	if f.summaryFunc != nil {
		return f.summaryFunc(ctx, userID)
	}
	return cart.Summary{}, nil
}
func (f *fakeCartService) Detail(ctx context.Context, userID string, includeLocked bool) (cart.Cart, error) {
	if f.detailFunc != nil {
		return f.detailFunc(ctx, userID, includeLocked)
	}
	return cart.Cart{}, nil
}
func (f *fakeCartService) AddItem(ctx context.Context, userID string, req cart.AddItemRequest) error {
	if f.addItemFunc != nil {
		return f.addItemFunc(ctx, userID, req)
	}
	return nil
}
func (f *fakeCartService) UpdateQty(ctx context.Context, userID, itemID string, req cart.UpdateQtyRequest) error {
	if f.updateQtyFunc != nil {
		return f.updateQtyFunc(ctx, userID, itemID, req)
	}
	return nil
}
func (f *fakeCartService) RemoveItem(ctx context.Context, userID, itemID string) error {
	if f.removeItemFunc != nil {
		return f.removeItemFunc(ctx, userID, itemID)
	}
	return nil
}
func (f *fakeCartService) Clear(ctx context.Context, userID string) error {
	if f.clearFunc != nil {
		return f.clearFunc(ctx, userID)
	}
	return nil
}
func (f *fakeCartService) Invalidate(ctx context.Context, userID string) error { return nil }

// ==================== HELPERS ====================

func setupCartRouter(svc cart.Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := cart.NewHandler(svc)

	r.Use(func(c *gin.Context) {
		c.Set("user_id_validated", "u-1")
		c.Next()
	})
	r.GET("/cart", h.Detail)
	r.GET("/cart/summary", h.Summary)
	r.POST("/cart/items", h.AddItem)
	r.PUT("/cart/items/:itemId", h.UpdateQty)
	r.DELETE("/cart/items/:itemId", h.RemoveItem)
	r.DELETE("/cart", h.Clear)
	return r
}

func doRequest(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// ==================== TESTS ====================

func TestHandler_Detail(t *testing.T) {
	t.Run("include_locked_is_forwarded", func(t *testing.T) {
		var gotLocked bool
		svc := &fakeCartService{
			detailFunc: func(ctx context.Context, userID string, includeLocked bool) (cart.Cart, error) {
				gotLocked = includeLocked
				return cart.Cart{ID: "c-1", UserID: userID}, nil
			},
		}

		w := doRequest(setupCartRouter(svc), http.MethodGet, "/cart?include_locked=true", "")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.True(t, gotLocked)
		assert.Contains(t, w.Body.String(), `"userId":"u-1"`)
	})

	t.Run("upstream_unavailable", func(t *testing.T) {
		svc := &fakeCartService{
			detailFunc: func(ctx context.Context, userID string, includeLocked bool) (cart.Cart, error) {
				return cart.Cart{}, upstream.ErrUnavailable
			},
		}

		w := doRequest(setupCartRouter(svc), http.MethodGet, "/cart", "")

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.Contains(t, w.Body.String(), "SERVICE_UNAVAILABLE")
	})
}

func TestHandler_Summary(t *testing.T) {
	svc := &fakeCartService{
		summaryFunc: func(ctx context.Context, userID string) (cart.Summary, error) {
			return cart.Summary{TotalItems: 4}, nil
		},
	}

	w := doRequest(setupCartRouter(svc), http.MethodGet, "/cart/summary", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"totalItems":4`)
}

func TestHandler_AddItem(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		var got cart.AddItemRequest
		svc := &fakeCartService{
			addItemFunc: func(ctx context.Context, userID string, req cart.AddItemRequest) error {
				got = req
				return nil
			},
		}

		w := doRequest(setupCartRouter(svc), http.MethodPost, "/cart/items", `{"productId":"p-1","quantity":2}`)

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Equal(t, "p-1", got.ProductID)
		assert.Equal(t, 2, got.Quantity)
	})

	t.Run("malformed_body", func(t *testing.T) {
		w := doRequest(setupCartRouter(&fakeCartService{}), http.MethodPost, "/cart/items", `{"productId":`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "INVALID_INPUT")
	})

	t.Run("validation_error", func(t *testing.T) {
		svc := &fakeCartService{
			addItemFunc: func(ctx context.Context, userID string, req cart.AddItemRequest) error {
				return carterrors.ErrInvalidQty
			},
		}

		w := doRequest(setupCartRouter(svc), http.MethodPost, "/cart/items", `{"productId":"p-1","quantity":0}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "Quantity must be between 0 and 999")
	})
}

func TestHandler_UpdateQty(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		var gotItem string
		var gotQty int
		svc := &fakeCartService{
			updateQtyFunc: func(ctx context.Context, userID, itemID string, req cart.UpdateQtyRequest) error {
				gotItem = itemID
				gotQty = *req.Quantity
				return nil
			},
		}

		w := doRequest(setupCartRouter(svc), http.MethodPut, "/cart/items/i-1", `{"quantity":0}`)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "i-1", gotItem)
		assert.Equal(t, 0, gotQty)
	})

	t.Run("upstream_rejection_is_passed_through", func(t *testing.T) {
		svc := &fakeCartService{
			updateQtyFunc: func(ctx context.Context, userID, itemID string, req cart.UpdateQtyRequest) error {
				return &upstream.Error{Method: http.MethodPut, Path: "/cart/items/i-1", Status: http.StatusUnprocessableEntity, Body: "not enough stock"}
			},
		}

		w := doRequest(setupCartRouter(svc), http.MethodPut, "/cart/items/i-1", `{"quantity":50}`)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Contains(t, w.Body.String(), "INVALID_INPUT")
	})

	t.Run("upstream_server_error", func(t *testing.T) {
		svc := &fakeCartService{
			updateQtyFunc: func(ctx context.Context, userID, itemID string, req cart.UpdateQtyRequest) error {
				return &upstream.Error{Method: http.MethodPut, Path: "/cart/items/i-1", Status: http.StatusInternalServerError}
			},
		}

		w := doRequest(setupCartRouter(svc), http.MethodPut, "/cart/items/i-1", `{"quantity":2}`)

		assert.Equal(t, http.StatusBadGateway, w.Code)
	})
}

func TestHandler_RemoveAndClear(t *testing.T) {
	t.Run("remove_item", func(t *testing.T) {
		var gotItem string
		svc := &fakeCartService{
			removeItemFunc: func(ctx context.Context, userID, itemID string) error {
				gotItem = itemID
				return nil
			},
		}

		w := doRequest(setupCartRouter(svc), http.MethodDelete, "/cart/items/i-7", "")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "i-7", gotItem)
	})

	t.Run("clear", func(t *testing.T) {
		called := false
		svc := &fakeCartService{
			clearFunc: func(ctx context.Context, userID string) error {
				called = true
				return nil
			},
		}

		w := doRequest(setupCartRouter(svc), http.MethodDelete, "/cart", "")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.True(t, called)
	})
}
