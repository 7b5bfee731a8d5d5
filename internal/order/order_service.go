package order

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"go-parts-gateway/internal/cart"
	"go-parts-gateway/internal/catalog"
	ordererrors "go-parts-gateway/internal/order/errors"
	"go-parts-gateway/internal/outbox"
	"go-parts-gateway/internal/shared/database"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

//go:generate mockgen -source=order_service.go -destination=../mock/order/order_service_mock.go -package=mock
type Service interface {
	Checkout(ctx context.Context, userID string) ([]Order, error)
	List(ctx context.Context, userID string) ([]Order, error)
	Detail(ctx context.Context, userID, orderID string) (Order, error)
	PostMessage(ctx context.Context, userID, orderID, author string, req PostMessageRequest) (ChatMessage, error)
}

type Deps struct {
	DB         *sql.DB
	Repo       Repository
	OutboxRepo outbox.Repository
	CartSvc    cart.Service
	CatalogSvc catalog.Service
	Logger     *zap.Logger
	Now        func() time.Time
}

type service struct {
	db         *sql.DB
	repo       Repository
	outboxRepo outbox.Repository
	cartSvc    cart.Service
	catalogSvc catalog.Service
	validate   *validator.Validate
	logger     *zap.Logger
	now        func() time.Time
}

func NewService(deps Deps) Service {
	if deps.DB == nil {
		panic("db cannot be nil")
	}
	if deps.Repo == nil {
		panic("order repository cannot be nil")
	}
	if deps.OutboxRepo == nil {
		panic("outbox repository cannot be nil")
	}
	if deps.CartSvc == nil {
		panic("cart service cannot be nil")
	}
	if deps.CatalogSvc == nil {
		panic("catalog service cannot be nil")
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}

	return &service{
		db:         deps.DB,
		repo:       deps.Repo,
		outboxRepo: deps.OutboxRepo,
		cartSvc:    deps.CartSvc,
		catalogSvc: deps.CatalogSvc,
		validate:   validator.New(),
		logger:     deps.Logger.Named("order"),
		now:        deps.Now,
	}
}

// Checkout turns the active cart into one order shell per supplier, persists
// them with their seed chat messages and an outbox event, then takes the ordered
// lines out of the cart. Lines that went into no shell stay in the cart.
func (s *service) Checkout(ctx context.Context, userID string) ([]Order, error) {
	if userID == "" {
		return nil, ordererrors.ErrMissingUser
	}
	logger := s.logger.With(zap.String("user_id", userID))

	// 1. Active cart
	cartData, err := s.cartSvc.Detail(ctx, userID, false)
	if err != nil {
		logger.Error("failed to fetch cart", zap.Error(err))
		return nil, err
	}
	if len(cartData.Items) == 0 {
		return nil, ordererrors.ErrCartEmpty
	}

	lines := make([]Line, 0, len(cartData.Items))
	ids := make([]string, 0, len(cartData.Items))
	for _, it := range cartData.Items {
		lines = append(lines, Line{ProductID: it.Product.ID, Qty: it.Quantity})
		ids = append(ids, it.Product.ID)
	}

	// 2. Fresh product records
	products, err := s.catalogSvc.Lookup(ctx, ids)
	if err != nil {
		logger.Error("product lookup failed", zap.Error(err))
		return nil, err
	}

	// 3. Split per supplier
	orders := Split(lines, toProductInfo(products), s.now().UTC())
	if len(orders) == 0 {
		logger.Warn("no cart line could be resolved", zap.Int("lines", len(lines)))
		return nil, ordererrors.ErrNothingToOrder
	}

	// 4. Persist shells, seed messages and outbox event atomically
	err = database.WithinTx(ctx, s.db, func(tx *sql.Tx) error {
		return s.persist(ctx, tx, userID, orders)
	})
	if err != nil {
		logger.Error("checkout transaction failed", zap.Error(err))
		if errors.Is(err, ordererrors.ErrCheckoutConflict) {
			return nil, err
		}
		return nil, ordererrors.ErrOrderFailed
	}

	// 5. The shells are committed; a cart that fails to shrink is only reported.
	s.releaseOrdered(ctx, logger, userID, cartData.Items, orders)

	logger.Info("checkout success", zap.Int("orders", len(orders)))
	return orders, nil
}

func (s *service) releaseOrdered(ctx context.Context, logger *zap.Logger, userID string, items []cart.CartItem, orders []Order) {
	ordered := make(map[string]bool)
	for _, o := range orders {
		for _, l := range o.Items {
			ordered[l.ProductID] = true
		}
	}

	var kept []cart.CartItem
	for _, it := range items {
		if !ordered[it.Product.ID] {
			kept = append(kept, it)
		}
	}

	if len(kept) == 0 {
		if err := s.cartSvc.Clear(ctx, userID); err != nil {
			logger.Warn("cart clear after checkout failed", zap.Error(err))
		}
		return
	}

	logger.Warn("cart lines left out of checkout", zap.Int("kept", len(kept)))
	for _, it := range items {
		if !ordered[it.Product.ID] {
			continue
		}
		if err := s.cartSvc.RemoveItem(ctx, userID, it.ID); err != nil {
			logger.Warn("cart item removal after checkout failed",
				zap.String("item_id", it.ID),
				zap.Error(err),
			)
		}
	}
}

func (s *service) persist(ctx context.Context, tx *sql.Tx, userID string, orders []Order) error {
	qtx := s.repo.WithTx(tx)

	orderIDs := make([]string, 0, len(orders))
	for _, o := range orders {
		if err := qtx.CreateShell(ctx, userID, o); err != nil {
			return err
		}
		for i, l := range o.Items {
			if err := qtx.CreateLine(ctx, userID, o.ID, i, l); err != nil {
				return err
			}
		}
		for _, m := range o.Chat {
			if err := qtx.CreateMessage(ctx, userID, o.ID, m); err != nil {
				return err
			}
		}
		orderIDs = append(orderIDs, o.ID)
	}

	payload, err := json.Marshal(ShellsCreatedPayload{UserID: userID, OrderIDs: orderIDs})
	if err != nil {
		return err
	}

	return s.outboxRepo.WithTx(tx).CreateOutboxEvent(ctx, outbox.Event{
		ID:            uuid.New(),
		AggregateType: AggregateShell,
		AggregateID:   userID,
		EventType:     EventShellsCreated,
		Payload:       payload,
	})
}

func (s *service) List(ctx context.Context, userID string) ([]Order, error) {
	if userID == "" {
		return nil, ordererrors.ErrMissingUser
	}
	return s.repo.List(ctx, userID)
}

func (s *service) Detail(ctx context.Context, userID, orderID string) (Order, error) {
	if userID == "" {
		return Order{}, ordererrors.ErrMissingUser
	}
	if orderID == "" {
		return Order{}, ordererrors.ErrInvalidOrderID
	}

	o, err := s.repo.GetByID(ctx, userID, orderID)
	if err != nil {
		return Order{}, err
	}

	chat, err := s.repo.ListMessages(ctx, userID, orderID)
	if err != nil {
		return Order{}, err
	}
	o.Chat = chat
	return o, nil
}

// PostMessage appends a chat line. The author comes from the caller's identity,
// never from the request body.
func (s *service) PostMessage(ctx context.Context, userID, orderID, author string, req PostMessageRequest) (ChatMessage, error) {
	if author != AuthorBuyer && author != AuthorSeller {
		return ChatMessage{}, ordererrors.ErrInvalidAuthor
	}
	if err := s.validate.Struct(req); err != nil {
		return ChatMessage{}, ordererrors.ErrInvalidMessage
	}
	if userID == "" {
		return ChatMessage{}, ordererrors.ErrMissingUser
	}
	if orderID == "" {
		return ChatMessage{}, ordererrors.ErrInvalidOrderID
	}

	if _, err := s.repo.GetByID(ctx, userID, orderID); err != nil {
		return ChatMessage{}, err
	}

	msg := ChatMessage{
		ID:        uuid.NewString(),
		Author:    author,
		Text:      req.Text,
		Timestamp: s.now().UTC(),
	}
	if err := s.repo.CreateMessage(ctx, userID, orderID, msg); err != nil {
		s.logger.Error("failed to store chat message",
			zap.String("user_id", userID),
			zap.String("order_id", orderID),
			zap.Error(err),
		)
		return ChatMessage{}, err
	}
	return msg, nil
}

// toProductInfo maps catalog products for the splitter. Products without an
// organization share the default supplier shell.
func toProductInfo(products map[string]catalog.Product) map[string]ProductInfo {
	out := make(map[string]ProductInfo, len(products))
	for id, p := range products {
		info := ProductInfo{
			SupplierID:   DefaultSupplierID,
			SupplierName: DefaultSupplierName,
			Price:        p.Price,
			Title:        p.Title,
		}
		if org := p.Organization; org != nil && org.ID != "" {
			info.SupplierID = org.ID
			if org.Name != "" {
				info.SupplierName = org.Name
			}
		}
		out[id] = info
	}
	return out
}
