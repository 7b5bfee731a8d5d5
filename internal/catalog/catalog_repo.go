package catalog

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"

	catalogerrors "go-parts-gateway/internal/catalog/errors"
	"go-parts-gateway/internal/pkg/upstream"
)

//go:generate mockgen -source=catalog_repo.go -destination=../mock/catalog/catalog_repo_mock.go -package=mock
type Repository interface {
	Feed(ctx context.Context, cursor string, limit int) (Page, error)
	GetByID(ctx context.Context, id string) (Product, error)
}

type repository struct {
	client *upstream.Client
}

func NewRepository(c *upstream.Client) Repository {
	return &repository{client: c}
}

func (r *repository) Feed(ctx context.Context, cursor string, limit int) (Page, error) {
	q := url.Values{}
	q.Set("limit", strconv.Itoa(limit))
	if cursor != "" {
		q.Set("cursor", cursor)
	}

	var dto pageDTO
	if err := r.client.Get(ctx, "/products/feed", q, &dto); err != nil {
		return Page{}, err
	}
	return toPage(dto), nil
}

func (r *repository) GetByID(ctx context.Context, id string) (Product, error) {
	var dto productDTO
	if err := r.client.Get(ctx, "/products/"+id, nil, &dto); err != nil {
		var upErr *upstream.Error
		if errors.As(err, &upErr) && upErr.Status == http.StatusNotFound {
			return Product{}, catalogerrors.ErrProductNotFound
		}
		return Product{}, err
	}
	return toProduct(dto), nil
}
