package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/xenking/backoffice/pkg/listing"
)

// ProductsService exposes the product catalog endpoints.
type ProductsService struct {
	c *Client
}

// List returns one page of products matching the query. Search matches name
// and sku.
func (s *ProductsService) List(ctx context.Context, q listing.Query) (*listing.Page[Product], error) {
	var page listing.Page[Product]
	if err := s.c.do(ctx, http.MethodGet, "/products", q.Normalize().Values(), nil, nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// Get fetches a single product by id.
func (s *ProductsService) Get(ctx context.Context, id int64) (*Product, error) {
	var p Product
	if err := s.c.do(ctx, http.MethodGet, fmt.Sprintf("/products/%d", id), nil, nil, nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// Create adds a product to the catalog and returns it with the
// server-assigned id.
func (s *ProductsService) Create(ctx context.Context, in ProductInput) (*Product, error) {
	var p Product
	if err := s.c.do(ctx, http.MethodPost, "/products", nil, nil, in, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// Update replaces the mutable fields of a product.
func (s *ProductsService) Update(ctx context.Context, id int64, in ProductInput) (*Product, error) {
	var p Product
	if err := s.c.do(ctx, http.MethodPut, fmt.Sprintf("/products/%d", id), nil, nil, in, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// Delete removes a product. This is a destructive removal, not a soft
// deactivation.
func (s *ProductsService) Delete(ctx context.Context, id int64) error {
	return s.c.do(ctx, http.MethodDelete, fmt.Sprintf("/products/%d", id), nil, nil, nil, nil)
}

// Autocomplete searches active products by name or sku for typeahead inputs.
// A non-positive limit uses the server default.
func (s *ProductsService) Autocomplete(ctx context.Context, query string, limit int) ([]Product, error) {
	v := url.Values{"q": {query}}
	if limit > 0 {
		v.Set("limit", strconv.Itoa(limit))
	}
	var products []Product
	if err := s.c.do(ctx, http.MethodGet, "/products/search/autocomplete", v, nil, nil, &products); err != nil {
		return nil, err
	}
	return products, nil
}
