package order

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	ordererrors "go-parts-gateway/internal/order/errors"
	"go-parts-gateway/internal/shared/database"
	"go-parts-gateway/internal/shared/database/helper"
)

//go:generate mockgen -source=order_repo.go -destination=../mock/order/order_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx database.DBTX) Repository
	CreateShell(ctx context.Context, userID string, o Order) error
	CreateLine(ctx context.Context, userID, orderID string, position int, l OrderLine) error
	CreateMessage(ctx context.Context, userID, orderID string, m ChatMessage) error
	List(ctx context.Context, userID string) ([]Order, error)
	GetByID(ctx context.Context, userID, orderID string) (Order, error)
	ListMessages(ctx context.Context, userID, orderID string) ([]ChatMessage, error)
}

type repository struct {
	db database.DBTX
}

func NewRepository(db database.DBTX) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx database.DBTX) Repository {
	return &repository{db: tx}
}

const createShell = `INSERT INTO order_shells (user_id, id, supplier_id, supplier_name, status, created_at)
VALUES ($1, $2, $3, $4, $5, $6)`

func (r *repository) CreateShell(ctx context.Context, userID string, o Order) error {
	_, err := r.db.ExecContext(ctx, createShell,
		userID,
		o.ID,
		o.SupplierID,
		helper.RawStringToNull(o.SupplierName),
		o.Status,
		o.CreatedAt,
	)
	if err != nil {
		if helper.IsUniqueViolation(err) {
			return ordererrors.ErrCheckoutConflict
		}
		return fmt.Errorf("insert order shell: %w", err)
	}
	return nil
}

const createLine = `INSERT INTO order_shell_lines (user_id, order_id, position, product_id, qty, price, title)
VALUES ($1, $2, $3, $4, $5, $6, $7)`

func (r *repository) CreateLine(ctx context.Context, userID, orderID string, position int, l OrderLine) error {
	_, err := r.db.ExecContext(ctx, createLine,
		userID,
		orderID,
		position,
		l.ProductID,
		l.Qty,
		l.Price,
		l.Title,
	)
	if err != nil {
		return fmt.Errorf("insert order line: %w", err)
	}
	return nil
}

const createMessage = `INSERT INTO chat_messages (id, user_id, order_id, author, text, created_at)
VALUES ($1, $2, $3, $4, $5, $6)`

func (r *repository) CreateMessage(ctx context.Context, userID, orderID string, m ChatMessage) error {
	_, err := r.db.ExecContext(ctx, createMessage,
		m.ID,
		userID,
		orderID,
		m.Author,
		m.Text,
		m.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("insert chat message: %w", err)
	}
	return nil
}

const listShells = `SELECT id, supplier_id, supplier_name, status, created_at
FROM order_shells
WHERE user_id = $1
ORDER BY created_at DESC, id`

const listLinesByUser = `SELECT order_id, product_id, qty, price, title
FROM order_shell_lines
WHERE user_id = $1
ORDER BY order_id, position`

func (r *repository) List(ctx context.Context, userID string) ([]Order, error) {
	rows, err := r.db.QueryContext(ctx, listShells, userID)
	if err != nil {
		return nil, fmt.Errorf("list order shells: %w", err)
	}
	defer rows.Close()

	orders := make([]Order, 0)
	index := make(map[string]int)
	for rows.Next() {
		o, err := scanShell(rows)
		if err != nil {
			return nil, err
		}
		index[o.ID] = len(orders)
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return orders, nil
	}

	lineRows, err := r.db.QueryContext(ctx, listLinesByUser, userID)
	if err != nil {
		return nil, fmt.Errorf("list order lines: %w", err)
	}
	defer lineRows.Close()

	for lineRows.Next() {
		var orderID string
		var l OrderLine
		if err := lineRows.Scan(&orderID, &l.ProductID, &l.Qty, &l.Price, &l.Title); err != nil {
			return nil, fmt.Errorf("scan order line: %w", err)
		}
		if i, ok := index[orderID]; ok {
			orders[i].Items = append(orders[i].Items, l)
		}
	}
	return orders, lineRows.Err()
}

const getShell = `SELECT id, supplier_id, supplier_name, status, created_at
FROM order_shells
WHERE user_id = $1 AND id = $2`

const listLinesByOrder = `SELECT product_id, qty, price, title
FROM order_shell_lines
WHERE user_id = $1 AND order_id = $2
ORDER BY position`

func (r *repository) GetByID(ctx context.Context, userID, orderID string) (Order, error) {
	o, err := scanShell(r.db.QueryRowContext(ctx, getShell, userID, orderID))
	if errors.Is(err, sql.ErrNoRows) {
		return Order{}, ordererrors.ErrOrderNotFound
	}
	if err != nil {
		return Order{}, err
	}

	rows, err := r.db.QueryContext(ctx, listLinesByOrder, userID, orderID)
	if err != nil {
		return Order{}, fmt.Errorf("list order lines: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var l OrderLine
		if err := rows.Scan(&l.ProductID, &l.Qty, &l.Price, &l.Title); err != nil {
			return Order{}, fmt.Errorf("scan order line: %w", err)
		}
		o.Items = append(o.Items, l)
	}
	return o, rows.Err()
}

const listMessages = `SELECT id, author, text, created_at
FROM chat_messages
WHERE user_id = $1 AND order_id = $2
ORDER BY created_at, id`

func (r *repository) ListMessages(ctx context.Context, userID, orderID string) ([]ChatMessage, error) {
	rows, err := r.db.QueryContext(ctx, listMessages, userID, orderID)
	if err != nil {
		return nil, fmt.Errorf("list chat messages: %w", err)
	}
	defer rows.Close()

	msgs := make([]ChatMessage, 0)
	for rows.Next() {
		var m ChatMessage
		if err := rows.Scan(&m.ID, &m.Author, &m.Text, &m.Timestamp); err != nil {
			return nil, fmt.Errorf("scan chat message: %w", err)
		}
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanShell(row rowScanner) (Order, error) {
	var (
		o    Order
		name sql.NullString
	)
	if err := row.Scan(&o.ID, &o.SupplierID, &name, &o.Status, &o.CreatedAt); err != nil {
		return Order{}, err
	}
	o.SupplierName = helper.NullStringValue(name)
	o.Items = make([]OrderLine, 0)
	o.Chat = make([]ChatMessage, 0)
	return o, nil
}
