// Package order holds the order entity, its lifecycle state machine and the
// creation service.
package order

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/xenking/backoffice/pkg/listing"
)

// Status is the order lifecycle state. Orders start as CREATED; PAID and
// CANCELLED are terminal and unconditionally final.
type Status string

const (
	StatusCreated   Status = "CREATED"
	StatusPaid      Status = "PAID"
	StatusCancelled Status = "CANCELLED"
)

// Valid reports whether s is a known status value.
func (s Status) Valid() bool {
	switch s {
	case StatusCreated, StatusPaid, StatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether no transition out of s exists.
func (s Status) Terminal() bool {
	return s == StatusPaid || s == StatusCancelled
}

// OrderItem is one immutable line of a persisted order. UnitPrice snapshots
// the product price at order time and is decoupled from later price changes.
type OrderItem struct {
	ID        int64
	OrderID   int64
	ProductID int64
	UnitPrice decimal.Decimal
	Quantity  int
}

// LineTotal returns unit price × quantity, rounded to 2 decimal places.
func (i OrderItem) LineTotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity))).Round(2)
}

// Order is a persisted order. Only Status ever changes after creation.
type Order struct {
	ID          int64
	CustomerID  int64
	Status      Status
	TotalAmount decimal.Decimal
	CreatedAt   time.Time
	Items       []OrderItem
}

// ComputeTotal sums the line totals. The stored TotalAmount must always
// equal this value; it is recomputed at creation, never trusted from input.
func (o *Order) ComputeTotal() decimal.Decimal {
	total := decimal.Zero
	for _, item := range o.Items {
		total = total.Add(item.LineTotal())
	}
	return total.Round(2)
}

// MarkPaid transitions the order to PAID. Only CREATED orders can be paid.
func (o *Order) MarkPaid() error {
	if o.Status != StatusCreated {
		return &InvalidTransitionError{From: o.Status, To: StatusPaid}
	}
	o.Status = StatusPaid
	return nil
}

// Cancel transitions the order to CANCELLED. Paid orders cannot be cancelled
// and cancelling twice is rejected.
func (o *Order) Cancel() error {
	if o.Status != StatusCreated {
		return &InvalidTransitionError{From: o.Status, To: StatusCancelled}
	}
	o.Status = StatusCancelled
	return nil
}

// CreateRequest is the input for creating an order: the customer and the
// (product, quantity) pairs. Prices are resolved server-side at commit time.
type CreateRequest struct {
	CustomerID int64
	Items      []RequestItem
	// IdempotencyKey, when non-empty, is claimed atomically with the order
	// so retried submissions carrying the same key map to the same order.
	IdempotencyKey string
}

// RequestItem is one (product, quantity) pair of a creation request.
type RequestItem struct {
	ProductID int64
	Quantity  int
}

// Repository defines persistence operations for orders. Create must be
// atomic: stock checks, price snapshots, stock decrements and the
// idempotency claim happen in one transaction.
type Repository interface {
	Create(ctx context.Context, req CreateRequest) (*Order, error)
	GetByID(ctx context.Context, id int64) (*Order, error)
	List(ctx context.Context, q listing.Query) ([]Order, int, error)
	// Transition updates the status only if the stored status still equals
	// from, returning the updated order or ErrStaleStatus.
	Transition(ctx context.Context, id int64, from, to Status) (*Order, error)
	Delete(ctx context.Context, id int64) error
}

// IdempotencyIndex resolves previously claimed idempotency keys to the order
// they created.
type IdempotencyIndex interface {
	Find(ctx context.Context, key string) (orderID int64, ok bool, err error)
}

// Sentinel errors.
var (
	ErrNotFound    = errors.New("order not found")
	ErrEmptyItems  = errors.New("order must have at least one item")
	ErrStaleStatus = errors.New("order status changed concurrently")
	// ErrKeyClaimed is returned by Repository.Create when the idempotency
	// key was claimed by a concurrent submission; the caller resolves the
	// key to the winning order.
	ErrKeyClaimed = errors.New("idempotency key already claimed")
)

// InvalidQuantityError indicates a line with a non-positive quantity.
type InvalidQuantityError struct {
	ProductID int64
}

func (e *InvalidQuantityError) Error() string {
	return fmt.Sprintf("quantity must be greater than zero for product %d", e.ProductID)
}

// CustomerNotFoundError indicates the referenced customer does not exist.
type CustomerNotFoundError struct {
	CustomerID int64
}

func (e *CustomerNotFoundError) Error() string {
	return fmt.Sprintf("Customer with id %d not found", e.CustomerID)
}

// ProductNotFoundError indicates a referenced product does not exist or is
// inactive.
type ProductNotFoundError struct {
	ProductID int64
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("Product with id %d not found", e.ProductID)
}

// InsufficientStockError indicates the requested quantity exceeds the stock
// available at commit time.
type InsufficientStockError struct {
	ProductName string
	Available   int
	Requested   int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("Insufficient stock for product '%s'. Available: %d, Requested: %d",
		e.ProductName, e.Available, e.Requested)
}

// UnknownStatusError indicates a status value outside the lifecycle
// enumeration, or a target no transition leads to.
type UnknownStatusError struct {
	Status Status
}

func (e *UnknownStatusError) Error() string {
	return fmt.Sprintf("invalid status: %s", e.Status)
}

// InvalidTransitionError indicates a status change that the lifecycle does
// not permit.
type InvalidTransitionError struct {
	From Status
	To   Status
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot transition order from %s to %s", e.From, e.To)
}
