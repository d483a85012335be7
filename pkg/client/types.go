package client

import (
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// Product is a catalog item as returned by the API. ID and CreatedAt are
// server-assigned and immutable.
type Product struct {
	ID        int64           `json:"id"`
	Name      string          `json:"name"`
	SKU       string          `json:"sku"`
	Price     decimal.Decimal `json:"price"`
	StockQty  int             `json:"stock_qty"`
	IsActive  bool            `json:"is_active"`
	CreatedAt time.Time       `json:"created_at"`
}

// ProductInput carries the mutable product fields for create and update.
type ProductInput struct {
	Name     string          `json:"name"`
	SKU      string          `json:"sku"`
	Price    decimal.Decimal `json:"price"`
	StockQty int             `json:"stock_qty"`
	IsActive bool            `json:"is_active"`
}

// Customer is a buyer record as returned by the API.
type Customer struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Document  string    `json:"document"`
	CreatedAt time.Time `json:"created_at"`
}

// CustomerInput carries the mutable customer fields for create and update.
type CustomerInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Document string `json:"document"`
}

// Status is the order lifecycle state. Orders start as CREATED; PAID and
// CANCELLED are terminal.
type Status string

const (
	StatusCreated   Status = "CREATED"
	StatusPaid      Status = "PAID"
	StatusCancelled Status = "CANCELLED"
)

// Terminal reports whether no further transition is possible from s.
func (s Status) Terminal() bool {
	return s == StatusPaid || s == StatusCancelled
}

// CanTransitionTo reports whether the move from s to target is permitted.
// Only CREATED orders are mutable.
func (s Status) CanTransitionTo(target Status) bool {
	return s == StatusCreated && target.Terminal()
}

// ErrInvalidTransition is returned when a status change is attempted on an
// order already in a terminal state, or toward a non-terminal state.
var ErrInvalidTransition = errors.New("invalid status transition")

// OrderItem is one immutable line of a persisted order. UnitPrice is the
// product price captured at order time and never changes afterwards.
type OrderItem struct {
	ID        int64           `json:"id"`
	ProductID int64           `json:"product_id"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
	LineTotal decimal.Decimal `json:"line_total"`
}

// Order is a persisted order. TotalAmount is server-computed and
// authoritative; everything except Status is immutable after creation.
type Order struct {
	ID          int64           `json:"id"`
	CustomerID  int64           `json:"customer_id"`
	Status      Status          `json:"status"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	CreatedAt   time.Time       `json:"created_at"`
	Items       []OrderItem     `json:"items"`
}

// CreateOrderItem is one (product, quantity) pair of a creation request.
// Prices are deliberately absent: the backend prices at commit time.
type CreateOrderItem struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

// CreateOrder is the order creation request body.
type CreateOrder struct {
	CustomerID int64             `json:"customer_id"`
	Items      []CreateOrderItem `json:"items"`
}
