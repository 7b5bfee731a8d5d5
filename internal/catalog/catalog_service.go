package catalog

import (
	"context"
	"errors"
	"sync"

	catalogerrors "go-parts-gateway/internal/catalog/errors"
	"go-parts-gateway/internal/querycache"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const lookupConcurrency = 8

//go:generate mockgen -source=catalog_service.go -destination=../mock/catalog/catalog_service_mock.go -package=mock
type Service interface {
	Feed(ctx context.Context, cursor string, limit int) (Page, error)
	// Lookup resolves products by id. Products the backend no longer knows are
	// left out of the result rather than reported as an error.
	Lookup(ctx context.Context, ids []string) (map[string]Product, error)
}

type Deps struct {
	Repo   Repository
	Cache  *querycache.Client
	Logger *zap.Logger
}

type service struct {
	repo   Repository
	cache  *querycache.Client
	logger *zap.Logger
}

func NewService(deps Deps) Service {
	if deps.Repo == nil {
		panic("catalog repository cannot be nil")
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	return &service{
		repo:   deps.Repo,
		cache:  deps.Cache,
		logger: deps.Logger.Named("catalog"),
	}
}

func (s *service) Feed(ctx context.Context, cursor string, limit int) (Page, error) {
	return s.repo.Feed(ctx, cursor, clampLimit(limit))
}

func (s *service) Lookup(ctx context.Context, ids []string) (map[string]Product, error) {
	out := make(map[string]Product, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(lookupConcurrency)

	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}

		g.Go(func() error {
			p, err := s.product(gctx, id)
			if errors.Is(err, catalogerrors.ErrProductNotFound) {
				s.logger.Debug("product vanished upstream, skipping", zap.String("product_id", id))
				return nil
			}
			if err != nil {
				return err
			}

			mu.Lock()
			out[id] = p
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *service) product(ctx context.Context, id string) (Product, error) {
	if s.cache == nil {
		return s.repo.GetByID(ctx, id)
	}
	return querycache.FetchJSON(ctx, s.cache, productKey(id), func(ctx context.Context) (Product, error) {
		return s.repo.GetByID(ctx, id)
	})
}

func productKey(id string) querycache.Key {
	return querycache.Key("product:" + id)
}
