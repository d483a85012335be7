package api

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/go-faster/errors"

	"github.com/xenking/backoffice/internal/domain/order"
	"github.com/xenking/backoffice/pkg/listing"
)

// IdempotencyKeyHeader carries the caller-supplied deduplication token for
// order creation.
const IdempotencyKeyHeader = "Idempotency-Key"

type createOrderInput struct {
	CustomerID int64 `json:"customer_id"`
	Items      []struct {
		ProductID int64 `json:"product_id"`
		Quantity  int   `json:"quantity"`
	} `json:"items"`
}

type statusInput struct {
	Status order.Status `json:"status"`
}

func (h *Handler) listOrders(w http.ResponseWriter, r *http.Request) {
	q := listing.ParseQuery(r.URL.Query())
	if q.Status != "" && !order.Status(q.Status).Valid() {
		respondError(w, r, fmt.Sprintf("invalid status: %s", q.Status))
		return
	}

	orders, total, err := h.orders.List(r.Context(), q)
	if err != nil {
		if errors.Is(err, listing.ErrUnknownColumn) {
			respondError(w, r, err.Error())
			return
		}
		respondInternal(w, r, err)
		return
	}

	page := listing.Page[orderResponse]{
		Items: make([]orderResponse, len(orders)),
		Total: total,
		Skip:  q.Skip,
		Limit: q.Limit,
	}
	for i, o := range orders {
		page.Items[i] = toOrderResponse(o)
	}
	respondData(w, r, page)
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, r, "invalid order id")
		return
	}

	o, err := h.orders.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, order.ErrNotFound) {
			respondError(w, r, fmt.Sprintf("Order with id %d not found", id))
			return
		}
		respondInternal(w, r, err)
		return
	}
	respondData(w, r, toOrderResponse(*o))
}

func (h *Handler) createOrder(w http.ResponseWriter, r *http.Request) {
	var in createOrderInput
	if err := decodeBody(r, &in); err != nil {
		respondError(w, r, err.Error())
		return
	}

	req := order.CreateRequest{
		CustomerID:     in.CustomerID,
		Items:          make([]order.RequestItem, len(in.Items)),
		IdempotencyKey: strings.TrimSpace(r.Header.Get(IdempotencyKeyHeader)),
	}
	for i, item := range in.Items {
		req.Items[i] = order.RequestItem{ProductID: item.ProductID, Quantity: item.Quantity}
	}

	o, err := h.orders.Create(r.Context(), req)
	if err != nil {
		if msg, ok := orderErrorMessage(err); ok {
			respondError(w, r, msg)
			return
		}
		respondInternal(w, r, err)
		return
	}

	h.ordersCreated.Add(r.Context(), 1)
	respondData(w, r, toOrderResponse(*o))
}

func (h *Handler) updateOrderStatus(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, r, "invalid order id")
		return
	}

	var in statusInput
	if err := decodeBody(r, &in); err != nil {
		respondError(w, r, err.Error())
		return
	}

	o, err := h.orders.UpdateStatus(r.Context(), id, in.Status)
	if err != nil {
		if errors.Is(err, order.ErrNotFound) {
			respondError(w, r, fmt.Sprintf("Order with id %d not found", id))
			return
		}
		if msg, ok := orderErrorMessage(err); ok {
			respondError(w, r, msg)
			return
		}
		respondInternal(w, r, err)
		return
	}
	respondData(w, r, toOrderResponse(*o))
}

func (h *Handler) deleteOrder(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, r, "invalid order id")
		return
	}

	if err := h.orders.Delete(r.Context(), id); err != nil {
		if errors.Is(err, order.ErrNotFound) {
			respondError(w, r, fmt.Sprintf("Order with id %d not found", id))
			return
		}
		respondInternal(w, r, err)
		return
	}
	respondData(w, r, map[string]bool{"deleted": true})
}

// orderErrorMessage maps domain failures that the operator can correct to
// their verbatim messages. Anything else is treated as internal.
func orderErrorMessage(err error) (string, bool) {
	if errors.Is(err, order.ErrEmptyItems) {
		return order.ErrEmptyItems.Error(), true
	}

	var (
		invalidQty   *order.InvalidQuantityError
		custNotFound *order.CustomerNotFoundError
		prodNotFound *order.ProductNotFoundError
		noStock      *order.InsufficientStockError
		badTransit   *order.InvalidTransitionError
		badStatus    *order.UnknownStatusError
	)
	switch {
	case errors.As(err, &invalidQty):
		return invalidQty.Error(), true
	case errors.As(err, &custNotFound):
		return custNotFound.Error(), true
	case errors.As(err, &prodNotFound):
		return prodNotFound.Error(), true
	case errors.As(err, &noStock):
		return noStock.Error(), true
	case errors.As(err, &badTransit):
		return badTransit.Error(), true
	case errors.As(err, &badStatus):
		return badStatus.Error(), true
	}
	return "", false
}
