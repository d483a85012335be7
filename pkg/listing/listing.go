// Package listing defines the collection query contract shared by every list
// endpoint: pagination, free-text search, sort column and direction. The same
// Query struct is produced by UI state (State), encoded by the HTTP client and
// parsed back by the server, so the rules live in exactly one place.
package listing

import (
	"net/url"
	"strconv"

	"github.com/go-faster/errors"
)

// Sort directions accepted by every list endpoint.
const (
	Asc  = "asc"
	Desc = "desc"
)

// Pagination defaults. DefaultLimit matches the backend's page size; MaxLimit
// is the hard server-side clamp.
const (
	DefaultLimit = 100
	MaxLimit     = 1000
)

// ErrUnknownColumn is returned when order_by is not in the entity's allow-list.
var ErrUnknownColumn = errors.New("unknown sort column")

// Sortable is the allow-list of sortable columns for one entity. Values are
// the SQL column names; only values from the map may ever reach an ORDER BY
// clause.
type Sortable map[string]string

// Sortable column sets per entity. Keys are the wire names accepted in
// order_by.
var (
	ProductColumns = Sortable{
		"name":       "name",
		"sku":        "sku",
		"price":      "price",
		"stock_qty":  "stock_qty",
		"created_at": "created_at",
	}
	CustomerColumns = Sortable{
		"name":       "name",
		"email":      "email",
		"document":   "document",
		"created_at": "created_at",
	}
	OrderColumns = Sortable{
		"id":           "id",
		"status":       "status",
		"total_amount": "total_amount",
		"created_at":   "created_at",
	}
)

// Column resolves a wire name to its SQL column, falling back to created_at
// when the name is empty and failing for anything not in the allow-list.
func (s Sortable) Column(name string) (string, error) {
	if name == "" {
		return "created_at", nil
	}
	col, ok := s[name]
	if !ok {
		return "", errors.Wrap(ErrUnknownColumn, name)
	}
	return col, nil
}

// Query is one list request. The zero value means: first page, default limit,
// no search, newest first.
type Query struct {
	Skip    int
	Limit   int
	Search  string
	Status  string // orders only
	OrderBy string
	Dir     string
}

// Normalize clamps the query into the ranges every endpoint accepts. It never
// fails: out-of-range values are coerced, not rejected.
func (q Query) Normalize() Query {
	if q.Skip < 0 {
		q.Skip = 0
	}
	if q.Limit <= 0 {
		q.Limit = DefaultLimit
	}
	if q.Limit > MaxLimit {
		q.Limit = MaxLimit
	}
	if q.Dir != Asc {
		q.Dir = Desc
	}
	return q
}

// Values encodes the query as URL parameters, omitting zero values so request
// lines stay readable.
func (q Query) Values() url.Values {
	v := url.Values{}
	if q.Skip > 0 {
		v.Set("skip", strconv.Itoa(q.Skip))
	}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.Search != "" {
		v.Set("search", q.Search)
	}
	if q.Status != "" {
		v.Set("status", q.Status)
	}
	if q.OrderBy != "" {
		v.Set("order_by", q.OrderBy)
	}
	if q.Dir != "" {
		v.Set("order_dir", q.Dir)
	}
	return v
}

// ParseQuery reads a Query from URL parameters. Unparseable numbers fall back
// to the defaults via Normalize.
func ParseQuery(v url.Values) Query {
	q := Query{
		Search:  v.Get("search"),
		Status:  v.Get("status"),
		OrderBy: v.Get("order_by"),
		Dir:     v.Get("order_dir"),
	}
	if n, err := strconv.Atoi(v.Get("skip")); err == nil {
		q.Skip = n
	}
	if n, err := strconv.Atoi(v.Get("limit")); err == nil {
		q.Limit = n
	}
	return q.Normalize()
}

// Page is one page of results plus the matching row count across all pages.
// Skip and Limit echo the request.
type Page[T any] struct {
	Items []T `json:"items"`
	Total int `json:"total"`
	Skip  int `json:"skip"`
	Limit int `json:"limit"`
}
