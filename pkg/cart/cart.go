// Package cart implements the draft order: the client-held, transient
// order-in-progress a back-office operator assembles before submission.
//
// A cart holds an optional customer reference and an ordered list of lines,
// at most one per product. Stock checks against the product snapshots are
// advisory; the backend re-validates stock and pricing atomically at commit,
// which is why submission sends only (product_id, quantity) pairs.
//
// A Cart belongs to one composing session and its methods are not safe for
// concurrent use, with the exception of the in-flight submission guard.
package cart

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/xenking/backoffice/pkg/client"
)

// Sentinel composition errors. All of them are recoverable by operator
// correction.
var (
	ErrNoProductSelected  = errors.New("no product selected")
	ErrNoCustomerSelected = errors.New("no customer selected")
	ErrEmptyOrder         = errors.New("order must have at least one item")
	ErrLineNotFound       = errors.New("line not found")
	ErrSubmitInFlight     = errors.New("submission already in flight")
)

// InvalidQuantityError indicates a non-positive quantity.
type InvalidQuantityError struct {
	Quantity int
}

func (e *InvalidQuantityError) Error() string {
	return fmt.Sprintf("quantity must be greater than zero, got %d", e.Quantity)
}

// InsufficientStockError indicates the requested quantity exceeds the
// product's stock at the time of the check.
type InsufficientStockError struct {
	ProductID int64
	Available int
	Requested int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %d: available %d, requested %d",
		e.ProductID, e.Available, e.Requested)
}

// DuplicateProductError indicates the product already has a line in the
// draft. Lines are never merged; the existing line must be edited or removed
// instead.
type DuplicateProductError struct {
	ProductID int64
}

func (e *DuplicateProductError) Error() string {
	return fmt.Sprintf("product %d is already in the order", e.ProductID)
}

// Line is one draft line: a product snapshot plus a positive quantity. The
// snapshot provides price, stock and name for display and advisory checks.
type Line struct {
	Product  client.Product
	Quantity int
}

// Total returns price × quantity for this line.
func (l Line) Total() decimal.Decimal {
	return l.Product.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Cart is the draft order.
type Cart struct {
	customerID int64 // 0 means no customer selected
	lines      []Line

	// submitKey is the idempotency key of the current logical submission
	// attempt. It is kept across failed submits so a retry deduplicates, and
	// cleared on success so the next submission gets a fresh key.
	submitKey string
	inFlight  atomic.Bool
}

// New returns an empty draft order.
func New() *Cart {
	return &Cart{}
}

// SelectCustomer sets the customer the order is composed for.
func (c *Cart) SelectCustomer(id int64) {
	c.customerID = id
}

// CustomerID returns the selected customer id, or 0 when none is selected.
func (c *Cart) CustomerID() int64 {
	return c.customerID
}

// Lines returns the draft lines in insertion order. The slice is a copy;
// mutating it does not affect the cart.
func (c *Cart) Lines() []Line {
	out := make([]Line, len(c.lines))
	copy(out, c.lines)
	return out
}

// AddLine appends a line for the product. It fails without modifying the
// draft when no product is given, the quantity is not positive, the quantity
// exceeds the product's stock, or the product already has a line.
func (c *Cart) AddLine(p *client.Product, quantity int) error {
	if p == nil {
		return ErrNoProductSelected
	}
	if quantity <= 0 {
		return &InvalidQuantityError{Quantity: quantity}
	}
	if quantity > p.StockQty {
		return &InsufficientStockError{ProductID: p.ID, Available: p.StockQty, Requested: quantity}
	}
	for _, l := range c.lines {
		if l.Product.ID == p.ID {
			return &DuplicateProductError{ProductID: p.ID}
		}
	}
	c.lines = append(c.lines, Line{Product: *p, Quantity: quantity})
	return nil
}

// UpdateLine replaces the quantity of the line at index, re-checking it
// against the stock of that line's own product snapshot. Line order is
// preserved.
func (c *Cart) UpdateLine(index, quantity int) error {
	if index < 0 || index >= len(c.lines) {
		return ErrLineNotFound
	}
	if quantity <= 0 {
		return &InvalidQuantityError{Quantity: quantity}
	}
	p := c.lines[index].Product
	if quantity > p.StockQty {
		return &InsufficientStockError{ProductID: p.ID, Available: p.StockQty, Requested: quantity}
	}
	c.lines[index].Quantity = quantity
	return nil
}

// RemoveLine deletes the line at index, preserving the order of the rest.
func (c *Cart) RemoveLine(index int) error {
	if index < 0 || index >= len(c.lines) {
		return ErrLineNotFound
	}
	c.lines = append(c.lines[:index], c.lines[index+1:]...)
	return nil
}

// Totals computes the draft total amount (sum of price × quantity) and unit
// count (sum of quantities). It is pure: recomputed from the lines on every
// call, never cached.
func (c *Cart) Totals() (amount decimal.Decimal, units int) {
	amount = decimal.Zero
	for _, l := range c.lines {
		amount = amount.Add(l.Total())
		units += l.Quantity
	}
	return amount, units
}

// BuildRequest assembles the creation request. Unit prices and totals are
// not included: the backend is authoritative for pricing at commit time.
func (c *Cart) BuildRequest() (client.CreateOrder, error) {
	if c.customerID == 0 {
		return client.CreateOrder{}, ErrNoCustomerSelected
	}
	if len(c.lines) == 0 {
		return client.CreateOrder{}, ErrEmptyOrder
	}
	req := client.CreateOrder{
		CustomerID: c.customerID,
		Items:      make([]client.CreateOrderItem, len(c.lines)),
	}
	for i, l := range c.lines {
		req.Items[i] = client.CreateOrderItem{ProductID: l.Product.ID, Quantity: l.Quantity}
	}
	return req, nil
}

// Submit sends the draft to the backend. One idempotency key is generated
// per logical submission attempt: a retry after a failed submit reuses the
// key, the submission after a success gets a fresh one, and a second Submit
// while one is already on the wire is refused.
//
// On acceptance the draft is discarded and the persisted order returned.
func (c *Cart) Submit(ctx context.Context, orders *client.OrdersService) (*client.Order, error) {
	req, err := c.BuildRequest()
	if err != nil {
		return nil, err
	}

	if !c.inFlight.CompareAndSwap(false, true) {
		return nil, ErrSubmitInFlight
	}
	defer c.inFlight.Store(false)

	if c.submitKey == "" {
		c.submitKey = uuid.NewString()
	}

	o, err := orders.Create(ctx, req, c.submitKey)
	if err != nil {
		return nil, err
	}

	c.Reset()
	return o, nil
}

// Reset discards the draft: customer, lines and the pending submission key.
func (c *Cart) Reset() {
	c.customerID = 0
	c.lines = nil
	c.submitKey = ""
}
