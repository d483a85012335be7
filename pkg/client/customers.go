package client

import (
	"context"
	"fmt"
	"net/http"

	"github.com/xenking/backoffice/pkg/listing"
)

// CustomersService exposes the customer endpoints.
type CustomersService struct {
	c *Client
}

// List returns one page of customers matching the query. Search matches
// name, email and document.
func (s *CustomersService) List(ctx context.Context, q listing.Query) (*listing.Page[Customer], error) {
	var page listing.Page[Customer]
	if err := s.c.do(ctx, http.MethodGet, "/customers", q.Normalize().Values(), nil, nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// Get fetches a single customer by id.
func (s *CustomersService) Get(ctx context.Context, id int64) (*Customer, error) {
	var c Customer
	if err := s.c.do(ctx, http.MethodGet, fmt.Sprintf("/customers/%d", id), nil, nil, nil, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

// Create registers a customer and returns it with the server-assigned id.
func (s *CustomersService) Create(ctx context.Context, in CustomerInput) (*Customer, error) {
	var c Customer
	if err := s.c.do(ctx, http.MethodPost, "/customers", nil, nil, in, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

// Update replaces the mutable fields of a customer.
func (s *CustomersService) Update(ctx context.Context, id int64, in CustomerInput) (*Customer, error) {
	var c Customer
	if err := s.c.do(ctx, http.MethodPut, fmt.Sprintf("/customers/%d", id), nil, nil, in, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

// Delete removes a customer.
func (s *CustomersService) Delete(ctx context.Context, id int64) error {
	return s.c.do(ctx, http.MethodDelete, fmt.Sprintf("/customers/%d", id), nil, nil, nil, nil)
}
