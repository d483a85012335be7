package order

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLineTotal(t *testing.T) {
	item := OrderItem{UnitPrice: decimal.RequireFromString("5.50"), Quantity: 2}
	assert.True(t, item.LineTotal().Equal(decimal.RequireFromString("11.00")))
}

func TestComputeTotal(t *testing.T) {
	o := Order{Items: []OrderItem{
		{UnitPrice: decimal.RequireFromString("10.00"), Quantity: 3},
		{UnitPrice: decimal.RequireFromString("5.50"), Quantity: 2},
	}}
	assert.True(t, o.ComputeTotal().Equal(decimal.RequireFromString("41.00")))
}

func TestComputeTotal_Empty(t *testing.T) {
	var o Order
	assert.True(t, o.ComputeTotal().IsZero())
}

func TestMarkPaid(t *testing.T) {
	o := Order{Status: StatusCreated}
	require.NoError(t, o.MarkPaid())
	assert.Equal(t, StatusPaid, o.Status)

	err := o.MarkPaid()
	var it *InvalidTransitionError
	require.ErrorAs(t, err, &it)
}

func TestCancel(t *testing.T) {
	o := Order{Status: StatusCreated}
	require.NoError(t, o.Cancel())
	assert.Equal(t, StatusCancelled, o.Status)
}

func TestCancel_PaidOrder(t *testing.T) {
	o := Order{Status: StatusPaid}
	err := o.Cancel()

	var it *InvalidTransitionError
	require.ErrorAs(t, err, &it)
	assert.Equal(t, "cannot transition order from PAID to CANCELLED", err.Error())
}

func TestStatus_Valid(t *testing.T) {
	assert.True(t, StatusCreated.Valid())
	assert.True(t, StatusPaid.Valid())
	assert.True(t, StatusCancelled.Valid())
	assert.False(t, Status("SHIPPED").Valid())
	assert.False(t, Status("").Valid())
}

func TestStatus_Terminal(t *testing.T) {
	assert.False(t, StatusCreated.Terminal())
	assert.True(t, StatusPaid.Terminal())
	assert.True(t, StatusCancelled.Terminal())
}
