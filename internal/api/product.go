package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/xenking/backoffice/internal/domain/product"
	"github.com/xenking/backoffice/pkg/listing"
)

// autocompleteDefaultLimit bounds typeahead result sets.
const (
	autocompleteDefaultLimit = 10
	autocompleteMaxLimit     = 100
)

type productInput struct {
	Name     string          `json:"name"`
	SKU      string          `json:"sku"`
	Price    decimal.Decimal `json:"price"`
	StockQty int             `json:"stock_qty"`
	IsActive bool            `json:"is_active"`
}

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	q := listing.ParseQuery(r.URL.Query())

	products, total, err := h.products.List(r.Context(), q)
	if err != nil {
		if errors.Is(err, listing.ErrUnknownColumn) {
			respondError(w, r, err.Error())
			return
		}
		respondInternal(w, r, err)
		return
	}

	page := listing.Page[productResponse]{
		Items: make([]productResponse, len(products)),
		Total: total,
		Skip:  q.Skip,
		Limit: q.Limit,
	}
	for i, p := range products {
		page.Items[i] = toProductResponse(p)
	}
	respondData(w, r, page)
}

func (h *Handler) getProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, r, "invalid product id")
		return
	}

	p, err := h.products.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, product.ErrNotFound) {
			respondError(w, r, fmt.Sprintf("Product with id %d not found", id))
			return
		}
		respondInternal(w, r, err)
		return
	}
	respondData(w, r, toProductResponse(*p))
}

func (h *Handler) createProduct(w http.ResponseWriter, r *http.Request) {
	var in productInput
	if err := decodeBody(r, &in); err != nil {
		respondError(w, r, err.Error())
		return
	}

	p := product.Product{
		Name:     in.Name,
		SKU:      in.SKU,
		Price:    in.Price,
		StockQty: in.StockQty,
		IsActive: in.IsActive,
	}
	if err := p.Validate(); err != nil {
		respondError(w, r, err.Error())
		return
	}

	if err := h.products.Create(r.Context(), &p); err != nil {
		var taken *product.SKUTakenError
		if errors.As(err, &taken) {
			respondError(w, r, taken.Error())
			return
		}
		respondInternal(w, r, err)
		return
	}
	respondData(w, r, toProductResponse(p))
}

func (h *Handler) updateProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, r, "invalid product id")
		return
	}

	var in productInput
	if err := decodeBody(r, &in); err != nil {
		respondError(w, r, err.Error())
		return
	}

	p := product.Product{
		ID:       id,
		Name:     in.Name,
		SKU:      in.SKU,
		Price:    in.Price,
		StockQty: in.StockQty,
		IsActive: in.IsActive,
	}
	if err := p.Validate(); err != nil {
		respondError(w, r, err.Error())
		return
	}

	if err := h.products.Update(r.Context(), &p); err != nil {
		switch {
		case errors.Is(err, product.ErrNotFound):
			respondError(w, r, fmt.Sprintf("Product with id %d not found", id))
		default:
			var taken *product.SKUTakenError
			if errors.As(err, &taken) {
				respondError(w, r, taken.Error())
				return
			}
			respondInternal(w, r, err)
		}
		return
	}
	respondData(w, r, toProductResponse(p))
}

func (h *Handler) deleteProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, r, "invalid product id")
		return
	}

	if err := h.products.Delete(r.Context(), id); err != nil {
		if errors.Is(err, product.ErrNotFound) {
			respondError(w, r, fmt.Sprintf("Product with id %d not found", id))
			return
		}
		respondInternal(w, r, err)
		return
	}
	respondData(w, r, map[string]bool{"deleted": true})
}

func (h *Handler) autocompleteProducts(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	limit := autocompleteDefaultLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			respondError(w, r, "invalid limit")
			return
		}
		limit = min(n, autocompleteMaxLimit)
	}

	products, err := h.products.Search(r.Context(), query, limit)
	if err != nil {
		respondInternal(w, r, err)
		return
	}

	out := make([]productResponse, len(products))
	for i, p := range products {
		out[i] = toProductResponse(p)
	}
	respondData(w, r, out)
}
