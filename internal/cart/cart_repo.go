package cart

import (
	"context"
	"net/url"

	"go-parts-gateway/internal/pkg/upstream"
)

//go:generate mockgen -source=cart_repo.go -destination=../mock/cart/cart_repo_mock.go -package=mock
type Repository interface {
	GetCart(ctx context.Context, includeLocked bool) (Cart, error)
	GetSummary(ctx context.Context) (Summary, error)

	AddItem(ctx context.Context, productID string, qty int) error
	UpdateItem(ctx context.Context, itemID string, qty int) error
	RemoveItem(ctx context.Context, itemID string) error
	Clear(ctx context.Context) error
}

// repository reads and writes the cart owned by the marketplace backend. The
// caller's identity travels in ctx as the forwarded bearer token.
type repository struct {
	client *upstream.Client
}

func NewRepository(c *upstream.Client) Repository {
	return &repository{client: c}
}

func (r *repository) GetCart(ctx context.Context, includeLocked bool) (Cart, error) {
	var q url.Values
	if includeLocked {
		q = url.Values{"include_locked": {"true"}}
	}

	var dto cartDTO
	if err := r.client.Get(ctx, "/cart/", q, &dto); err != nil {
		return Cart{}, err
	}
	return dto.toCart(), nil
}

func (r *repository) GetSummary(ctx context.Context) (Summary, error) {
	var dto summaryDTO
	if err := r.client.Get(ctx, "/cart/summary", nil, &dto); err != nil {
		return Summary{}, err
	}
	return dto.toSummary(), nil
}

func (r *repository) AddItem(ctx context.Context, productID string, qty int) error {
	return r.client.Post(ctx, "/cart/items/", addItemBody{ProductID: productID, Quantity: qty}, nil)
}

func (r *repository) UpdateItem(ctx context.Context, itemID string, qty int) error {
	return r.client.Put(ctx, "/cart/items/"+itemID, updateItemBody{Quantity: qty}, nil)
}

func (r *repository) RemoveItem(ctx context.Context, itemID string) error {
	return r.client.Delete(ctx, "/cart/items/"+itemID, nil)
}

func (r *repository) Clear(ctx context.Context) error {
	return r.client.Delete(ctx, "/cart/", nil)
}
