package order

import (
	"context"
	"sync"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/go-faster/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/xenking/backoffice/pkg/listing"
)

// seenKeysCapacity sizes the idempotency negative cache. At the configured
// false-positive rate a fresh key skips the index lookup ~99.9% of the time.
const (
	seenKeysCapacity = 1_000_000
	seenKeysFPR      = 0.001
)

// Service encapsulates order creation and lifecycle business logic.
type Service struct {
	orders Repository
	idem   IdempotencyIndex
	tracer trace.Tracer

	// seen tracks idempotency keys claimed by this process. A miss means the
	// key is definitely new to this instance and the index lookup can be
	// skipped; the unique constraint claimed inside the creation transaction
	// remains the source of truth, so false positives and other instances'
	// keys are still handled correctly.
	mu   sync.Mutex
	seen *bloom.BloomFilter
}

// NewService creates an order Service.
func NewService(orders Repository, idem IdempotencyIndex) *Service {
	return &Service{
		orders: orders,
		idem:   idem,
		tracer: otel.Tracer("backoffice.order"),
		seen:   bloom.NewWithEstimates(seenKeysCapacity, seenKeysFPR),
	}
}

// Create validates the request shape, resolves idempotent replays and
// persists the order atomically. Stock checks and pricing happen inside the
// repository transaction; the request never carries prices.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*Order, error) {
	ctx, span := s.tracer.Start(ctx, "order.Create")
	defer span.End()

	if req.CustomerID == 0 {
		return nil, &CustomerNotFoundError{CustomerID: req.CustomerID}
	}
	if len(req.Items) == 0 {
		return nil, ErrEmptyItems
	}
	for _, item := range req.Items {
		if item.Quantity <= 0 {
			return nil, &InvalidQuantityError{ProductID: item.ProductID}
		}
	}

	if req.IdempotencyKey != "" && s.maybeSeen(req.IdempotencyKey) {
		if o, err := s.findExisting(ctx, req.IdempotencyKey); err != nil || o != nil {
			return o, err
		}
	}

	o, err := s.orders.Create(ctx, req)
	if errors.Is(err, ErrKeyClaimed) {
		// Lost the claim race: a concurrent submission with the same key
		// created the order.
		o, ferr := s.findExisting(ctx, req.IdempotencyKey)
		if ferr != nil {
			return nil, ferr
		}
		if o == nil {
			return nil, err
		}
		return o, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "create order")
	}

	if req.IdempotencyKey != "" {
		s.markSeen(req.IdempotencyKey)
	}
	return o, nil
}

// Get returns an order with its items.
func (s *Service) Get(ctx context.Context, id int64) (*Order, error) {
	return s.orders.GetByID(ctx, id)
}

// List returns one page of orders matching the query.
func (s *Service) List(ctx context.Context, q listing.Query) ([]Order, int, error) {
	return s.orders.List(ctx, q)
}

// UpdateStatus applies a lifecycle transition. The target must be PAID or
// CANCELLED and the order must still be CREATED; the underlying update is
// conditional on the current status so concurrent transitions cannot both
// win.
func (s *Service) UpdateStatus(ctx context.Context, id int64, target Status) (*Order, error) {
	ctx, span := s.tracer.Start(ctx, "order.UpdateStatus")
	defer span.End()

	if !target.Valid() || !target.Terminal() {
		return nil, &UnknownStatusError{Status: target}
	}

	o, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	switch target {
	case StatusPaid:
		err = o.MarkPaid()
	case StatusCancelled:
		err = o.Cancel()
	}
	if err != nil {
		return nil, err
	}

	updated, err := s.orders.Transition(ctx, id, StatusCreated, target)
	if errors.Is(err, ErrStaleStatus) {
		// Someone else finalized the order between the read and the update.
		current, gerr := s.orders.GetByID(ctx, id)
		if gerr != nil {
			return nil, gerr
		}
		return nil, &InvalidTransitionError{From: current.Status, To: target}
	}
	return updated, err
}

// Delete removes an order and its items.
func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.orders.Delete(ctx, id)
}

// findExisting resolves an idempotency key to its order, or (nil, nil) when
// the key is unknown.
func (s *Service) findExisting(ctx context.Context, key string) (*Order, error) {
	orderID, ok, err := s.idem.Find(ctx, key)
	if err != nil {
		return nil, errors.Wrap(err, "lookup idempotency key")
	}
	if !ok {
		return nil, nil
	}
	o, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, errors.Wrapf(err, "load order %d for replayed key", orderID)
	}
	return o, nil
}

func (s *Service) maybeSeen(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seen.TestString(key)
}

func (s *Service) markSeen(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seen.AddString(key)
}
