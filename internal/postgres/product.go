package postgres

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/backoffice/internal/domain/product"
	"github.com/xenking/backoffice/pkg/listing"
)

var _ product.Repository = (*ProductRepository)(nil)

// ProductRepository implements product.Repository backed by PostgreSQL.
type ProductRepository struct {
	pool *pgxpool.Pool
}

// NewProductRepository returns a ProductRepository that uses the given pool.
func NewProductRepository(pool *pgxpool.Pool) *ProductRepository {
	return &ProductRepository{pool: pool}
}

const productColumns = `id, name, sku, price, stock_qty, is_active, created_at`

// List returns one page of products. Search matches name and sku.
func (r *ProductRepository) List(ctx context.Context, q listing.Query) ([]product.Product, int, error) {
	q = q.Normalize()
	col, err := listing.ProductColumns.Column(q.OrderBy)
	if err != nil {
		return nil, 0, err
	}

	// col and q.Dir come from allow-lists, never from raw input.
	sql := fmt.Sprintf(`SELECT %s, count(*) OVER() AS total
		FROM products
		WHERE ($1 = '' OR name ILIKE $2 OR sku ILIKE $2)
		ORDER BY %s %s
		OFFSET $3 LIMIT $4`, productColumns, col, q.Dir)

	rows, err := r.pool.Query(ctx, sql, q.Search, "%"+q.Search+"%", q.Skip, q.Limit)
	if err != nil {
		return nil, 0, errors.Wrap(err, "listing products")
	}
	defer rows.Close()

	var (
		products []product.Product
		total    int
	)
	for rows.Next() {
		var p product.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.SKU, &p.Price, &p.StockQty, &p.IsActive, &p.CreatedAt, &total); err != nil {
			return nil, 0, errors.Wrap(err, "scanning product")
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, errors.Wrap(err, "iterating products")
	}
	return products, total, nil
}

// GetByID returns a single product, or product.ErrNotFound.
func (r *ProductRepository) GetByID(ctx context.Context, id int64) (*product.Product, error) {
	sql := `SELECT ` + productColumns + ` FROM products WHERE id = $1`

	var p product.Product
	err := r.pool.QueryRow(ctx, sql, id).
		Scan(&p.ID, &p.Name, &p.SKU, &p.Price, &p.StockQty, &p.IsActive, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, product.ErrNotFound
		}
		return nil, errors.Wrapf(err, "getting product %d", id)
	}
	return &p, nil
}

// Create inserts a product and fills in its assigned id and timestamp.
func (r *ProductRepository) Create(ctx context.Context, p *product.Product) error {
	sql := `INSERT INTO products (name, sku, price, stock_qty, is_active)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`

	err := r.pool.QueryRow(ctx, sql, p.Name, p.SKU, p.Price, p.StockQty, p.IsActive).
		Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		if isUniqueViolation(err, "products_sku_key") {
			return &product.SKUTakenError{SKU: p.SKU}
		}
		return errors.Wrap(err, "creating product")
	}
	return nil
}

// Update replaces the mutable fields of a product.
func (r *ProductRepository) Update(ctx context.Context, p *product.Product) error {
	sql := `UPDATE products
		SET name = $2, sku = $3, price = $4, stock_qty = $5, is_active = $6
		WHERE id = $1
		RETURNING created_at`

	err := r.pool.QueryRow(ctx, sql, p.ID, p.Name, p.SKU, p.Price, p.StockQty, p.IsActive).
		Scan(&p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return product.ErrNotFound
		}
		if isUniqueViolation(err, "products_sku_key") {
			return &product.SKUTakenError{SKU: p.SKU}
		}
		return errors.Wrapf(err, "updating product %d", p.ID)
	}
	return nil
}

// Delete removes a product.
func (r *ProductRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return errors.Wrapf(err, "deleting product %d", id)
	}
	if tag.RowsAffected() == 0 {
		return product.ErrNotFound
	}
	return nil
}

// Search returns active products matching the query by name or sku, capped
// at limit.
func (r *ProductRepository) Search(ctx context.Context, query string, limit int) ([]product.Product, error) {
	sql := `SELECT ` + productColumns + `
		FROM products
		WHERE is_active AND (name ILIKE $1 OR sku ILIKE $1)
		ORDER BY name ASC
		LIMIT $2`

	rows, err := r.pool.Query(ctx, sql, "%"+query+"%", limit)
	if err != nil {
		return nil, errors.Wrap(err, "searching products")
	}
	defer rows.Close()

	var products []product.Product
	for rows.Next() {
		var p product.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.SKU, &p.Price, &p.StockQty, &p.IsActive, &p.CreatedAt); err != nil {
			return nil, errors.Wrap(err, "scanning product")
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterating products")
	}
	return products, nil
}
