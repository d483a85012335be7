package postgres

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/backoffice/internal/domain/order"
	"github.com/xenking/backoffice/pkg/listing"
)

var _ order.Repository = (*OrderRepository)(nil)

// OrderRepository implements order.Repository backed by PostgreSQL.
type OrderRepository struct {
	pool *pgxpool.Pool
}

// NewOrderRepository returns an OrderRepository that uses the given pool.
func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// Create persists an order in one transaction: the customer is verified,
// every product row is locked while its stock is checked and decremented,
// unit prices are snapshotted from the current product prices, the total is
// computed from the snapshots, and the idempotency key (when present) is
// claimed. Losing the key claim returns order.ErrKeyClaimed.
func (r *OrderRepository) Create(ctx context.Context, req order.CreateRequest) (*order.Order, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "begin transaction")
	}
	defer tx.Rollback(ctx) //nolint:errcheck // no-op after commit

	var exists bool
	if err := tx.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM customers WHERE id = $1)`, req.CustomerID,
	).Scan(&exists); err != nil {
		return nil, errors.Wrap(err, "checking customer")
	}
	if !exists {
		return nil, &order.CustomerNotFoundError{CustomerID: req.CustomerID}
	}

	o := &order.Order{
		CustomerID: req.CustomerID,
		Status:     order.StatusCreated,
		Items:      make([]order.OrderItem, 0, len(req.Items)),
	}

	for _, item := range req.Items {
		var (
			name     string
			stockQty int
			isActive bool
			oi       order.OrderItem
		)
		err := tx.QueryRow(ctx,
			`SELECT name, price, stock_qty, is_active FROM products WHERE id = $1 FOR UPDATE`,
			item.ProductID,
		).Scan(&name, &oi.UnitPrice, &stockQty, &isActive)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, &order.ProductNotFoundError{ProductID: item.ProductID}
			}
			return nil, errors.Wrapf(err, "locking product %d", item.ProductID)
		}
		if !isActive || stockQty < item.Quantity {
			return nil, &order.InsufficientStockError{
				ProductName: name,
				Available:   stockQty,
				Requested:   item.Quantity,
			}
		}

		if _, err := tx.Exec(ctx,
			`UPDATE products SET stock_qty = stock_qty - $2 WHERE id = $1`,
			item.ProductID, item.Quantity,
		); err != nil {
			return nil, errors.Wrapf(err, "decrementing stock of product %d", item.ProductID)
		}

		oi.ProductID = item.ProductID
		oi.Quantity = item.Quantity
		o.Items = append(o.Items, oi)
	}

	o.TotalAmount = o.ComputeTotal()

	err = tx.QueryRow(ctx,
		`INSERT INTO orders (customer_id, status, total_amount) VALUES ($1, $2, $3)
		RETURNING id, created_at`,
		o.CustomerID, o.Status, o.TotalAmount,
	).Scan(&o.ID, &o.CreatedAt)
	if err != nil {
		return nil, errors.Wrap(err, "inserting order")
	}

	for i := range o.Items {
		item := &o.Items[i]
		item.OrderID = o.ID
		err := tx.QueryRow(ctx,
			`INSERT INTO order_items (order_id, product_id, unit_price, quantity)
			VALUES ($1, $2, $3, $4)
			RETURNING id`,
			item.OrderID, item.ProductID, item.UnitPrice, item.Quantity,
		).Scan(&item.ID)
		if err != nil {
			return nil, errors.Wrap(err, "inserting order item")
		}
	}

	if req.IdempotencyKey != "" {
		tag, err := tx.Exec(ctx,
			`INSERT INTO idempotency_keys (key, order_id) VALUES ($1, $2)
			ON CONFLICT (key) DO NOTHING`,
			req.IdempotencyKey, o.ID,
		)
		if err != nil {
			return nil, errors.Wrap(err, "claiming idempotency key")
		}
		if tag.RowsAffected() == 0 {
			return nil, order.ErrKeyClaimed
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, errors.Wrap(err, "commit transaction")
	}
	return o, nil
}

const orderColumns = `id, customer_id, status, total_amount, created_at`

// GetByID returns an order with its items, or order.ErrNotFound.
func (r *OrderRepository) GetByID(ctx context.Context, id int64) (*order.Order, error) {
	var o order.Order
	err := r.pool.QueryRow(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE id = $1`, id,
	).Scan(&o.ID, &o.CustomerID, &o.Status, &o.TotalAmount, &o.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, order.ErrNotFound
		}
		return nil, errors.Wrapf(err, "getting order %d", id)
	}

	items, err := r.loadItems(ctx, []int64{id})
	if err != nil {
		return nil, err
	}
	o.Items = items[id]
	return &o, nil
}

// List returns one page of orders, each with its items, optionally filtered
// by status.
func (r *OrderRepository) List(ctx context.Context, q listing.Query) ([]order.Order, int, error) {
	q = q.Normalize()
	col, err := listing.OrderColumns.Column(q.OrderBy)
	if err != nil {
		return nil, 0, err
	}

	sql := fmt.Sprintf(`SELECT %s, count(*) OVER() AS total
		FROM orders
		WHERE ($1 = '' OR status = $1)
		ORDER BY %s %s
		OFFSET $2 LIMIT $3`, orderColumns, col, q.Dir)

	rows, err := r.pool.Query(ctx, sql, q.Status, q.Skip, q.Limit)
	if err != nil {
		return nil, 0, errors.Wrap(err, "listing orders")
	}
	defer rows.Close()

	var (
		orders []order.Order
		ids    []int64
		total  int
	)
	for rows.Next() {
		var o order.Order
		if err := rows.Scan(&o.ID, &o.CustomerID, &o.Status, &o.TotalAmount, &o.CreatedAt, &total); err != nil {
			return nil, 0, errors.Wrap(err, "scanning order")
		}
		orders = append(orders, o)
		ids = append(ids, o.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, errors.Wrap(err, "iterating orders")
	}

	if len(ids) > 0 {
		items, err := r.loadItems(ctx, ids)
		if err != nil {
			return nil, 0, err
		}
		for i := range orders {
			orders[i].Items = items[orders[i].ID]
		}
	}
	return orders, total, nil
}

// Transition sets the status only when the stored value still equals from.
func (r *OrderRepository) Transition(ctx context.Context, id int64, from, to order.Status) (*order.Order, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE orders SET status = $3 WHERE id = $1 AND status = $2`,
		id, from, to,
	)
	if err != nil {
		return nil, errors.Wrapf(err, "transitioning order %d", id)
	}
	if tag.RowsAffected() == 0 {
		return nil, order.ErrStaleStatus
	}
	return r.GetByID(ctx, id)
}

// Delete removes an order; its items follow via ON DELETE CASCADE.
func (r *OrderRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM orders WHERE id = $1`, id)
	if err != nil {
		return errors.Wrapf(err, "deleting order %d", id)
	}
	if tag.RowsAffected() == 0 {
		return order.ErrNotFound
	}
	return nil
}

// loadItems fetches the items of the given orders, keyed by order id.
func (r *OrderRepository) loadItems(ctx context.Context, orderIDs []int64) (map[int64][]order.OrderItem, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, order_id, product_id, unit_price, quantity
		FROM order_items
		WHERE order_id = ANY($1)
		ORDER BY id ASC`,
		orderIDs,
	)
	if err != nil {
		return nil, errors.Wrap(err, "loading order items")
	}
	defer rows.Close()

	items := make(map[int64][]order.OrderItem, len(orderIDs))
	for rows.Next() {
		var item order.OrderItem
		if err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.UnitPrice, &item.Quantity); err != nil {
			return nil, errors.Wrap(err, "scanning order item")
		}
		items[item.OrderID] = append(items[item.OrderID], item)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterating order items")
	}
	return items, nil
}
