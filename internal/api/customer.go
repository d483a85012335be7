package api

import (
	"fmt"
	"net/http"

	"github.com/go-faster/errors"

	"github.com/xenking/backoffice/internal/domain/customer"
	"github.com/xenking/backoffice/pkg/listing"
)

type customerInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Document string `json:"document"`
}

func (h *Handler) listCustomers(w http.ResponseWriter, r *http.Request) {
	q := listing.ParseQuery(r.URL.Query())

	customers, total, err := h.customers.List(r.Context(), q)
	if err != nil {
		if errors.Is(err, listing.ErrUnknownColumn) {
			respondError(w, r, err.Error())
			return
		}
		respondInternal(w, r, err)
		return
	}

	page := listing.Page[customerResponse]{
		Items: make([]customerResponse, len(customers)),
		Total: total,
		Skip:  q.Skip,
		Limit: q.Limit,
	}
	for i, c := range customers {
		page.Items[i] = toCustomerResponse(c)
	}
	respondData(w, r, page)
}

func (h *Handler) getCustomer(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, r, "invalid customer id")
		return
	}

	c, err := h.customers.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, customer.ErrNotFound) {
			respondError(w, r, fmt.Sprintf("Customer with id %d not found", id))
			return
		}
		respondInternal(w, r, err)
		return
	}
	respondData(w, r, toCustomerResponse(*c))
}

func (h *Handler) createCustomer(w http.ResponseWriter, r *http.Request) {
	var in customerInput
	if err := decodeBody(r, &in); err != nil {
		respondError(w, r, err.Error())
		return
	}

	c := customer.Customer{
		Name:     in.Name,
		Email:    in.Email,
		Document: in.Document,
	}
	if err := c.Validate(); err != nil {
		respondError(w, r, err.Error())
		return
	}

	if err := h.customers.Create(r.Context(), &c); err != nil {
		var taken *customer.EmailTakenError
		if errors.As(err, &taken) {
			respondError(w, r, taken.Error())
			return
		}
		respondInternal(w, r, err)
		return
	}
	respondData(w, r, toCustomerResponse(c))
}

func (h *Handler) updateCustomer(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, r, "invalid customer id")
		return
	}

	var in customerInput
	if err := decodeBody(r, &in); err != nil {
		respondError(w, r, err.Error())
		return
	}

	c := customer.Customer{
		ID:       id,
		Name:     in.Name,
		Email:    in.Email,
		Document: in.Document,
	}
	if err := c.Validate(); err != nil {
		respondError(w, r, err.Error())
		return
	}

	if err := h.customers.Update(r.Context(), &c); err != nil {
		if errors.Is(err, customer.ErrNotFound) {
			respondError(w, r, fmt.Sprintf("Customer with id %d not found", id))
			return
		}
		var taken *customer.EmailTakenError
		if errors.As(err, &taken) {
			respondError(w, r, taken.Error())
			return
		}
		respondInternal(w, r, err)
		return
	}
	respondData(w, r, toCustomerResponse(c))
}

func (h *Handler) deleteCustomer(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, r, "invalid customer id")
		return
	}

	if err := h.customers.Delete(r.Context(), id); err != nil {
		if errors.Is(err, customer.ErrNotFound) {
			respondError(w, r, fmt.Sprintf("Customer with id %d not found", id))
			return
		}
		respondInternal(w, r, err)
		return
	}
	respondData(w, r, map[string]bool{"deleted": true})
}
