// Package product holds the catalog product entity and its persistence
// contract.
package product

import (
	"context"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/xenking/backoffice/pkg/listing"
)

// ErrNotFound is returned when a requested product does not exist.
var ErrNotFound = errors.New("product not found")

// SKUTakenError indicates a create or update collides with another product's
// SKU. Uniqueness is enforced by the database constraint.
type SKUTakenError struct {
	SKU string
}

func (e *SKUTakenError) Error() string {
	return "product with SKU '" + e.SKU + "' already exists"
}

// Product is a catalog item. ID and CreatedAt are assigned by the database
// and immutable; products are removed destructively, never soft-deleted.
type Product struct {
	ID        int64
	Name      string
	SKU       string
	Price     decimal.Decimal
	StockQty  int
	IsActive  bool
	CreatedAt time.Time
}

// Validate enforces the product field rules. The first violated rule is
// returned; the client applies the same rules as advisory state before
// submitting.
func (p *Product) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return errors.New("product name cannot be empty")
	}
	if strings.TrimSpace(p.SKU) == "" {
		return errors.New("product SKU cannot be empty")
	}
	if p.Price.IsNegative() {
		return errors.New("product price cannot be negative")
	}
	if p.StockQty < 0 {
		return errors.New("product stock quantity cannot be negative")
	}
	return nil
}

// HasSufficientStock reports whether quantity units can be ordered. Inactive
// products are never orderable.
func (p *Product) HasSufficientStock(quantity int) bool {
	return p.IsActive && p.StockQty >= quantity
}

// Repository defines persistence operations for products.
type Repository interface {
	List(ctx context.Context, q listing.Query) ([]Product, int, error)
	GetByID(ctx context.Context, id int64) (*Product, error)
	Create(ctx context.Context, p *Product) error
	Update(ctx context.Context, p *Product) error
	Delete(ctx context.Context, id int64) error
	// Search returns active products whose name or SKU matches the query,
	// for autocomplete inputs.
	Search(ctx context.Context, query string, limit int) ([]Product, error)
}
