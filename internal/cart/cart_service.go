package cart

import (
	"context"
	"errors"

	carterrors "go-parts-gateway/internal/cart/errors"
	"go-parts-gateway/internal/querycache"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

//go:generate mockgen -source=cart_service.go -destination=../mock/cart/cart_service_mock.go -package=mock
type Service interface {
	Summary(ctx context.Context, userID string) (Summary, error)
	Detail(ctx context.Context, userID string, includeLocked bool) (Cart, error)

	AddItem(ctx context.Context, userID string, req AddItemRequest) error
	UpdateQty(ctx context.Context, userID, itemID string, req UpdateQtyRequest) error
	RemoveItem(ctx context.Context, userID, itemID string) error
	Clear(ctx context.Context, userID string) error

	// Invalidate marks every cached view of the user's cart stale.
	Invalidate(ctx context.Context, userID string) error
}

type Deps struct {
	Repo   Repository
	Cache  *querycache.Client
	Logger *zap.Logger
}

type service struct {
	repo     Repository
	cache    *querycache.Client
	validate *validator.Validate
	logger   *zap.Logger
}

func NewService(deps Deps) Service {
	if deps.Repo == nil {
		panic("cart repository cannot be nil")
	}
	if deps.Cache == nil {
		panic("query cache cannot be nil")
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}

	return &service{
		repo:     deps.Repo,
		cache:    deps.Cache,
		validate: validator.New(),
		logger:   deps.Logger.Named("cart"),
	}
}

// ========================
// cache keys
// ========================

type cartKeys struct {
	summary querycache.Key
	active  querycache.Key
	locked  querycache.Key
}

func keysFor(userID string) cartKeys {
	return cartKeys{
		summary: querycache.Key("cart-summary:" + userID),
		active:  querycache.Key("cart:" + userID + ":active"),
		locked:  querycache.Key("cart:" + userID + ":locked"),
	}
}

func (k cartKeys) view(includeLocked bool) querycache.Key {
	if includeLocked {
		return k.locked
	}
	return k.active
}

func (k cartKeys) all() []querycache.Key {
	return []querycache.Key{k.summary, k.active, k.locked}
}

// ========================
// reads
// ========================

func (s *service) Summary(ctx context.Context, userID string) (Summary, error) {
	if userID == "" {
		return Summary{}, carterrors.ErrMissingUser
	}
	return readThrough(ctx, s.cache, keysFor(userID).summary, s.repo.GetSummary)
}

func (s *service) Detail(ctx context.Context, userID string, includeLocked bool) (Cart, error) {
	if userID == "" {
		return Cart{}, carterrors.ErrMissingUser
	}
	return readThrough(ctx, s.cache, keysFor(userID).view(includeLocked), func(ctx context.Context) (Cart, error) {
		return s.repo.GetCart(ctx, includeLocked)
	})
}

// readThrough fetches key through the cache. A fetch superseded by a mutation
// answers with whatever the mutation left in the cache.
func readThrough[T any](ctx context.Context, c *querycache.Client, key querycache.Key, fn func(ctx context.Context) (T, error)) (T, error) {
	v, err := querycache.FetchJSON(ctx, c, key, fn)
	if !errors.Is(err, querycache.ErrFetchCanceled) {
		return v, err
	}

	cached, ok, rerr := querycache.ReadJSON[T](ctx, c, key)
	if rerr != nil {
		return v, rerr
	}
	if !ok {
		return fn(ctx)
	}
	return cached, nil
}

// ========================
// mutations
// ========================

func (s *service) AddItem(ctx context.Context, userID string, req AddItemRequest) error {
	if err := s.validate.Struct(req); err != nil {
		return carterrors.MapValidationError(err)
	}
	if userID == "" {
		return carterrors.ErrMissingUser
	}

	// The new line's id and price are only known upstream, so nothing is patched.
	if err := s.repo.AddItem(ctx, req.ProductID, req.Quantity); err != nil {
		s.logger.Warn("add to cart rejected",
			zap.String("user_id", userID),
			zap.String("product_id", req.ProductID),
			zap.Error(err),
		)
		return err
	}

	return s.Invalidate(ctx, userID)
}

func (s *service) UpdateQty(ctx context.Context, userID, itemID string, req UpdateQtyRequest) error {
	if err := s.validate.Struct(req); err != nil {
		return carterrors.MapValidationError(err)
	}
	if userID == "" {
		return carterrors.ErrMissingUser
	}
	if itemID == "" {
		return carterrors.ErrInvalidItemID
	}
	qty := *req.Quantity

	keys := keysFor(userID)
	logger := s.logger.With(zap.String("user_id", userID), zap.String("item_id", itemID), zap.Int("quantity", qty))

	m := newMutation(s.cache, logger, keys.all()...)
	s.optimistic(ctx, m, logger, func(ctx context.Context) error {
		return s.patchItem(ctx, m, keys, itemID, qty, false)
	})

	err := m.settle(ctx, s.repo.UpdateItem(ctx, itemID, qty))
	if err != nil {
		logger.Warn("cart update rejected, optimistic patch rolled back", zap.Error(err))
		return err
	}
	return nil
}

func (s *service) RemoveItem(ctx context.Context, userID, itemID string) error {
	if userID == "" {
		return carterrors.ErrMissingUser
	}
	if itemID == "" {
		return carterrors.ErrInvalidItemID
	}

	keys := keysFor(userID)
	logger := s.logger.With(zap.String("user_id", userID), zap.String("item_id", itemID))

	m := newMutation(s.cache, logger, keys.all()...)
	s.optimistic(ctx, m, logger, func(ctx context.Context) error {
		return s.patchItem(ctx, m, keys, itemID, 0, true)
	})

	err := m.settle(ctx, s.repo.RemoveItem(ctx, itemID))
	if err != nil {
		logger.Warn("cart item removal rejected, optimistic patch rolled back", zap.Error(err))
		return err
	}
	return nil
}

func (s *service) Clear(ctx context.Context, userID string) error {
	if userID == "" {
		return carterrors.ErrMissingUser
	}

	keys := keysFor(userID)
	logger := s.logger.With(zap.String("user_id", userID))

	m := newMutation(s.cache, logger, keys.all()...)
	s.optimistic(ctx, m, logger, func(ctx context.Context) error {
		return s.patchClear(ctx, m, keys)
	})

	err := m.settle(ctx, s.repo.Clear(ctx))
	if err != nil {
		logger.Warn("cart clear rejected, optimistic patch rolled back", zap.Error(err))
		return err
	}
	return nil
}

func (s *service) Invalidate(ctx context.Context, userID string) error {
	if userID == "" {
		return carterrors.ErrMissingUser
	}

	var errs []error
	for _, k := range keysFor(userID).all() {
		errs = append(errs, s.cache.Invalidate(ctx, k))
	}
	return errors.Join(errs...)
}

// optimistic captures the snapshots and applies fn. When the snapshot cannot be
// read the patch is skipped: the upstream call still happens and the stale marks
// set on settle bring the views back.
func (s *service) optimistic(ctx context.Context, m *mutation, logger *zap.Logger, fn func(ctx context.Context) error) {
	if err := m.prepare(ctx); err != nil {
		logger.Warn("cart snapshot failed, skipping optimistic patch", zap.Error(err))
		return
	}
	if err := m.patch(ctx, fn); err != nil {
		logger.Warn("optimistic cart patch incomplete", zap.Error(err))
	}
}

func (s *service) patchItem(ctx context.Context, m *mutation, keys cartKeys, itemID string, qty int, removal bool) error {
	var (
		sum            Summary
		active, locked Cart
	)
	hasSum, err := m.view(keys.summary, &sum)
	if err != nil {
		return err
	}
	hasActive, err := m.view(keys.active, &active)
	if err != nil {
		return err
	}
	hasLocked, err := m.view(keys.locked, &locked)
	if err != nil {
		return err
	}

	var views []*Cart
	if hasActive {
		views = append(views, &active)
	}
	if hasLocked {
		views = append(views, &locked)
	}

	var errs []error
	if item, found := locateItem(itemID, views...); found && hasSum {
		var next Summary
		if removal {
			next = sum.shift(-item.Quantity, item.TotalPrice.Neg())
		} else {
			deltaQty := qty - item.Quantity
			next = sum.shift(deltaQty, item.UnitPrice.Mul(decimal.NewFromInt(int64(deltaQty))))
		}
		errs = append(errs, querycache.WriteJSON(ctx, s.cache, keys.summary, next))
	}

	if hasActive {
		if next, ok := active.withQuantity(itemID, qty); ok {
			errs = append(errs, querycache.WriteJSON(ctx, s.cache, keys.active, next))
		}
	}
	if hasLocked {
		if next, ok := locked.withQuantity(itemID, qty); ok {
			errs = append(errs, querycache.WriteJSON(ctx, s.cache, keys.locked, next))
		}
	}
	return errors.Join(errs...)
}

func (s *service) patchClear(ctx context.Context, m *mutation, keys cartKeys) error {
	var errs []error

	var sum Summary
	if ok, err := m.view(keys.summary, &sum); err != nil {
		errs = append(errs, err)
	} else if ok {
		errs = append(errs, querycache.WriteJSON(ctx, s.cache, keys.summary, Summary{TotalAmount: decimal.Zero}))
	}

	for _, k := range []querycache.Key{keys.active, keys.locked} {
		var c Cart
		ok, err := m.view(k, &c)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if ok {
			errs = append(errs, querycache.WriteJSON(ctx, s.cache, k, c.emptied()))
		}
	}
	return errors.Join(errs...)
}
