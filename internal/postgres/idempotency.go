package postgres

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/backoffice/internal/domain/order"
)

var _ order.IdempotencyIndex = (*IdempotencyRepository)(nil)

// IdempotencyRepository resolves idempotency keys to the order each one
// created. Claiming a key happens inside the order creation transaction, so
// this repository only ever reads.
type IdempotencyRepository struct {
	pool *pgxpool.Pool
}

// NewIdempotencyRepository returns an IdempotencyRepository that uses the
// given pool.
func NewIdempotencyRepository(pool *pgxpool.Pool) *IdempotencyRepository {
	return &IdempotencyRepository{pool: pool}
}

// Find returns the order id claimed under key, if any.
func (r *IdempotencyRepository) Find(ctx context.Context, key string) (int64, bool, error) {
	var orderID int64
	err := r.pool.QueryRow(ctx,
		`SELECT order_id FROM idempotency_keys WHERE key = $1`, key,
	).Scan(&orderID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, errors.Wrap(err, "finding idempotency key")
	}
	return orderID, true, nil
}
