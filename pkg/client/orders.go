package client

import (
	"context"
	"fmt"
	"net/http"

	"golang.org/x/sync/errgroup"

	"github.com/xenking/backoffice/pkg/listing"
)

// IdempotencyKeyHeader carries the caller-supplied deduplication token for
// order creation.
const IdempotencyKeyHeader = "Idempotency-Key"

// OrdersService exposes the order endpoints.
type OrdersService struct {
	c *Client
}

// List returns one page of orders matching the query, optionally filtered by
// status.
func (s *OrdersService) List(ctx context.Context, q listing.Query) (*listing.Page[Order], error) {
	var page listing.Page[Order]
	if err := s.c.do(ctx, http.MethodGet, "/orders", q.Normalize().Values(), nil, nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// Get fetches a single order with its items.
func (s *OrdersService) Get(ctx context.Context, id int64) (*Order, error) {
	var o Order
	if err := s.c.do(ctx, http.MethodGet, fmt.Sprintf("/orders/%d", id), nil, nil, nil, &o); err != nil {
		return nil, err
	}
	return &o, nil
}

// Create submits an order creation request. When idempotencyKey is non-empty
// the backend deduplicates retried submissions carrying the same key, so at
// most one order is created per key.
func (s *OrdersService) Create(ctx context.Context, req CreateOrder, idempotencyKey string) (*Order, error) {
	var header http.Header
	if idempotencyKey != "" {
		header = http.Header{IdempotencyKeyHeader: {idempotencyKey}}
	}
	var o Order
	if err := s.c.do(ctx, http.MethodPost, "/orders", nil, header, req, &o); err != nil {
		return nil, err
	}
	return &o, nil
}

// UpdateStatus requests a lifecycle transition for the given order. Orders
// already in a terminal state are rejected locally with ErrInvalidTransition
// before any request is made; the server enforces the same rule.
func (s *OrdersService) UpdateStatus(ctx context.Context, o *Order, target Status) (*Order, error) {
	if !o.Status.CanTransitionTo(target) {
		return nil, ErrInvalidTransition
	}
	body := struct {
		Status Status `json:"status"`
	}{Status: target}

	var updated Order
	if err := s.c.do(ctx, http.MethodPatch, fmt.Sprintf("/orders/%d/status", o.ID), nil, nil, body, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// Delete removes an order and its items.
func (s *OrdersService) Delete(ctx context.Context, id int64) error {
	return s.c.do(ctx, http.MethodDelete, fmt.Sprintf("/orders/%d", id), nil, nil, nil, nil)
}

// OrderDetail joins an order with its customer and the product behind each
// line, for display.
type OrderDetail struct {
	Order    *Order
	Customer *Customer
	Products map[int64]*Product
}

// Detail loads everything a detail view needs. The order is fetched first;
// the customer and every distinct product are then fetched concurrently
// instead of one request per row.
func (s *OrdersService) Detail(ctx context.Context, id int64) (*OrderDetail, error) {
	o, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	detail := &OrderDetail{
		Order:    o,
		Products: make(map[int64]*Product, len(o.Items)),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		c, err := s.c.Customers.Get(gctx, o.CustomerID)
		if err != nil {
			return err
		}
		detail.Customer = c
		return nil
	})

	seen := make(map[int64]struct{}, len(o.Items))
	results := make(chan *Product, len(o.Items))
	for _, item := range o.Items {
		if _, ok := seen[item.ProductID]; ok {
			continue
		}
		seen[item.ProductID] = struct{}{}

		g.Go(func() error {
			p, err := s.c.Products.Get(gctx, item.ProductID)
			if err != nil {
				return err
			}
			results <- p
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	close(results)
	for p := range results {
		detail.Products[p.ID] = p
	}
	return detail, nil
}
