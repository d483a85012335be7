package order

import (
	"context"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenking/backoffice/pkg/listing"
)

// --- Mock implementations ---

type mockOrderRepo struct {
	byID      map[int64]*Order
	nextID    int64
	createErr error
	created   int
	// forceStale makes the next Transition lose to a simulated concurrent
	// PAID transition.
	forceStale bool
}

func newMockOrderRepo() *mockOrderRepo {
	return &mockOrderRepo{byID: map[int64]*Order{}, nextID: 1}
}

func (m *mockOrderRepo) Create(_ context.Context, req CreateRequest) (*Order, error) {
	if m.createErr != nil {
		return nil, m.createErr
	}
	o := &Order{
		ID:         m.nextID,
		CustomerID: req.CustomerID,
		Status:     StatusCreated,
		CreatedAt:  time.Now(),
	}
	for _, item := range req.Items {
		o.Items = append(o.Items, OrderItem{
			OrderID:   o.ID,
			ProductID: item.ProductID,
			UnitPrice: decimal.RequireFromString("10.00"),
			Quantity:  item.Quantity,
		})
	}
	o.TotalAmount = o.ComputeTotal()
	m.byID[o.ID] = o
	m.nextID++
	m.created++
	return o, nil
}

func (m *mockOrderRepo) GetByID(_ context.Context, id int64) (*Order, error) {
	o, ok := m.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (m *mockOrderRepo) List(_ context.Context, _ listing.Query) ([]Order, int, error) {
	return nil, 0, nil
}

func (m *mockOrderRepo) Transition(_ context.Context, id int64, from, to Status) (*Order, error) {
	o, ok := m.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	if m.forceStale {
		m.forceStale = false
		o.Status = StatusPaid
		return nil, ErrStaleStatus
	}
	if o.Status != from {
		return nil, ErrStaleStatus
	}
	o.Status = to
	cp := *o
	return &cp, nil
}

func (m *mockOrderRepo) Delete(_ context.Context, id int64) error {
	if _, ok := m.byID[id]; !ok {
		return ErrNotFound
	}
	delete(m.byID, id)
	return nil
}

type mockIdemIndex struct {
	keys map[string]int64
	err  error
}

func (m *mockIdemIndex) Find(_ context.Context, key string) (int64, bool, error) {
	if m.err != nil {
		return 0, false, m.err
	}
	id, ok := m.keys[key]
	return id, ok, nil
}

func validRequest() CreateRequest {
	return CreateRequest{
		CustomerID: 7,
		Items:      []RequestItem{{ProductID: 1, Quantity: 2}},
	}
}

// --- Tests ---

func TestCreate_EmptyItems(t *testing.T) {
	svc := NewService(newMockOrderRepo(), &mockIdemIndex{})

	_, err := svc.Create(context.Background(), CreateRequest{CustomerID: 7})
	require.ErrorIs(t, err, ErrEmptyItems)
}

func TestCreate_MissingCustomer(t *testing.T) {
	svc := NewService(newMockOrderRepo(), &mockIdemIndex{})

	_, err := svc.Create(context.Background(), CreateRequest{
		Items: []RequestItem{{ProductID: 1, Quantity: 1}},
	})

	var cnf *CustomerNotFoundError
	require.ErrorAs(t, err, &cnf)
}

func TestCreate_InvalidQuantity(t *testing.T) {
	svc := NewService(newMockOrderRepo(), &mockIdemIndex{})

	_, err := svc.Create(context.Background(), CreateRequest{
		CustomerID: 7,
		Items:      []RequestItem{{ProductID: 3, Quantity: 0}},
	})

	var iq *InvalidQuantityError
	require.ErrorAs(t, err, &iq)
	assert.Equal(t, int64(3), iq.ProductID)
}

func TestCreate_Success(t *testing.T) {
	repo := newMockOrderRepo()
	svc := NewService(repo, &mockIdemIndex{})

	o, err := svc.Create(context.Background(), validRequest())
	require.NoError(t, err)
	assert.Equal(t, StatusCreated, o.Status)
	assert.True(t, o.TotalAmount.Equal(decimal.RequireFromString("20.00")))
}

func TestCreate_IdempotentReplay(t *testing.T) {
	repo := newMockOrderRepo()
	idem := &mockIdemIndex{keys: map[string]int64{}}
	svc := NewService(repo, idem)

	req := validRequest()
	req.IdempotencyKey = "key-1"

	first, err := svc.Create(context.Background(), req)
	require.NoError(t, err)
	idem.keys["key-1"] = first.ID

	second, err := svc.Create(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 1, repo.created)
}

func TestCreate_LostClaimRace(t *testing.T) {
	repo := newMockOrderRepo()
	winner, err := repo.Create(context.Background(), validRequest())
	require.NoError(t, err)

	repo.createErr = ErrKeyClaimed
	svc := NewService(repo, &mockIdemIndex{keys: map[string]int64{"key-1": winner.ID}})

	req := validRequest()
	req.IdempotencyKey = "key-1"

	o, err := svc.Create(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, winner.ID, o.ID)
}

func TestCreate_LostClaimRace_KeyMissing(t *testing.T) {
	repo := newMockOrderRepo()
	repo.createErr = ErrKeyClaimed
	svc := NewService(repo, &mockIdemIndex{})

	req := validRequest()
	req.IdempotencyKey = "key-1"

	_, err := svc.Create(context.Background(), req)
	require.ErrorIs(t, err, ErrKeyClaimed)
}

func TestCreate_IndexError(t *testing.T) {
	repo := newMockOrderRepo()
	repo.createErr = ErrKeyClaimed
	svc := NewService(repo, &mockIdemIndex{err: errors.New("index down")})

	req := validRequest()
	req.IdempotencyKey = "key-1"

	_, err := svc.Create(context.Background(), req)
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrKeyClaimed)
}

func TestUpdateStatus_Paid(t *testing.T) {
	repo := newMockOrderRepo()
	svc := NewService(repo, &mockIdemIndex{})

	o, err := svc.Create(context.Background(), validRequest())
	require.NoError(t, err)

	updated, err := svc.UpdateStatus(context.Background(), o.ID, StatusPaid)
	require.NoError(t, err)
	assert.Equal(t, StatusPaid, updated.Status)
}

func TestUpdateStatus_TerminalIsFinal(t *testing.T) {
	repo := newMockOrderRepo()
	svc := NewService(repo, &mockIdemIndex{})

	o, err := svc.Create(context.Background(), validRequest())
	require.NoError(t, err)

	_, err = svc.UpdateStatus(context.Background(), o.ID, StatusCancelled)
	require.NoError(t, err)

	_, err = svc.UpdateStatus(context.Background(), o.ID, StatusPaid)
	var it *InvalidTransitionError
	require.ErrorAs(t, err, &it)
	assert.Equal(t, StatusCancelled, it.From)
	assert.Equal(t, StatusPaid, it.To)
}

func TestUpdateStatus_CreatedIsNotATarget(t *testing.T) {
	svc := NewService(newMockOrderRepo(), &mockIdemIndex{})

	_, err := svc.UpdateStatus(context.Background(), 1, StatusCreated)
	var us *UnknownStatusError
	require.ErrorAs(t, err, &us)
}

func TestUpdateStatus_UnknownStatus(t *testing.T) {
	svc := NewService(newMockOrderRepo(), &mockIdemIndex{})

	_, err := svc.UpdateStatus(context.Background(), 1, Status("SHIPPED"))
	var us *UnknownStatusError
	require.ErrorAs(t, err, &us)
	assert.Equal(t, "invalid status: SHIPPED", err.Error())
}

func TestUpdateStatus_NotFound(t *testing.T) {
	svc := NewService(newMockOrderRepo(), &mockIdemIndex{})

	_, err := svc.UpdateStatus(context.Background(), 42, StatusPaid)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateStatus_StaleStatus(t *testing.T) {
	repo := newMockOrderRepo()
	svc := NewService(repo, &mockIdemIndex{})

	o, err := svc.Create(context.Background(), validRequest())
	require.NoError(t, err)

	// Concurrent transition lands between the service's read and its update.
	repo.forceStale = true

	_, err = svc.UpdateStatus(context.Background(), o.ID, StatusCancelled)
	var it *InvalidTransitionError
	require.ErrorAs(t, err, &it)
	assert.Equal(t, StatusPaid, it.From)
}
