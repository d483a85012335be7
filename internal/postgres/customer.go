package postgres

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/backoffice/internal/domain/customer"
	"github.com/xenking/backoffice/pkg/listing"
)

var _ customer.Repository = (*CustomerRepository)(nil)

// CustomerRepository implements customer.Repository backed by PostgreSQL.
type CustomerRepository struct {
	pool *pgxpool.Pool
}

// NewCustomerRepository returns a CustomerRepository that uses the given pool.
func NewCustomerRepository(pool *pgxpool.Pool) *CustomerRepository {
	return &CustomerRepository{pool: pool}
}

const customerColumns = `id, name, email, document, created_at`

// List returns one page of customers. Search matches name, email and
// document.
func (r *CustomerRepository) List(ctx context.Context, q listing.Query) ([]customer.Customer, int, error) {
	q = q.Normalize()
	col, err := listing.CustomerColumns.Column(q.OrderBy)
	if err != nil {
		return nil, 0, err
	}

	sql := fmt.Sprintf(`SELECT %s, count(*) OVER() AS total
		FROM customers
		WHERE ($1 = '' OR name ILIKE $2 OR email ILIKE $2 OR document ILIKE $2)
		ORDER BY %s %s
		OFFSET $3 LIMIT $4`, customerColumns, col, q.Dir)

	rows, err := r.pool.Query(ctx, sql, q.Search, "%"+q.Search+"%", q.Skip, q.Limit)
	if err != nil {
		return nil, 0, errors.Wrap(err, "listing customers")
	}
	defer rows.Close()

	var (
		customers []customer.Customer
		total     int
	)
	for rows.Next() {
		var c customer.Customer
		if err := rows.Scan(&c.ID, &c.Name, &c.Email, &c.Document, &c.CreatedAt, &total); err != nil {
			return nil, 0, errors.Wrap(err, "scanning customer")
		}
		customers = append(customers, c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, errors.Wrap(err, "iterating customers")
	}
	return customers, total, nil
}

// GetByID returns a single customer, or customer.ErrNotFound.
func (r *CustomerRepository) GetByID(ctx context.Context, id int64) (*customer.Customer, error) {
	sql := `SELECT ` + customerColumns + ` FROM customers WHERE id = $1`

	var c customer.Customer
	err := r.pool.QueryRow(ctx, sql, id).
		Scan(&c.ID, &c.Name, &c.Email, &c.Document, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, customer.ErrNotFound
		}
		return nil, errors.Wrapf(err, "getting customer %d", id)
	}
	return &c, nil
}

// Create inserts a customer and fills in its assigned id and timestamp.
func (r *CustomerRepository) Create(ctx context.Context, c *customer.Customer) error {
	sql := `INSERT INTO customers (name, email, document)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`

	err := r.pool.QueryRow(ctx, sql, c.Name, c.Email, c.Document).Scan(&c.ID, &c.CreatedAt)
	if err != nil {
		if isUniqueViolation(err, "customers_email_key") {
			return &customer.EmailTakenError{Email: c.Email}
		}
		return errors.Wrap(err, "creating customer")
	}
	return nil
}

// Update replaces the mutable fields of a customer.
func (r *CustomerRepository) Update(ctx context.Context, c *customer.Customer) error {
	sql := `UPDATE customers
		SET name = $2, email = $3, document = $4
		WHERE id = $1
		RETURNING created_at`

	err := r.pool.QueryRow(ctx, sql, c.ID, c.Name, c.Email, c.Document).Scan(&c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return customer.ErrNotFound
		}
		if isUniqueViolation(err, "customers_email_key") {
			return &customer.EmailTakenError{Email: c.Email}
		}
		return errors.Wrapf(err, "updating customer %d", c.ID)
	}
	return nil
}

// Delete removes a customer.
func (r *CustomerRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM customers WHERE id = $1`, id)
	if err != nil {
		return errors.Wrapf(err, "deleting customer %d", id)
	}
	if tag.RowsAffected() == 0 {
		return customer.ErrNotFound
	}
	return nil
}
