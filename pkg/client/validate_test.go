package client

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestProductInput_Validate(t *testing.T) {
	in := ProductInput{
		Name:     "Mechanical Keyboard",
		SKU:      "KB-MECH-87",
		Price:    decimal.RequireFromString("89.90"),
		StockQty: 40,
	}
	assert.True(t, in.Validate().Valid())
}

func TestProductInput_Validate_CollectsAllViolations(t *testing.T) {
	in := ProductInput{
		Name:     " ",
		SKU:      "",
		Price:    decimal.RequireFromString("-1"),
		StockQty: -5,
	}

	fe := in.Validate()
	assert.False(t, fe.Valid())
	assert.Equal(t, "name is required", fe["name"])
	assert.Equal(t, "sku is required", fe["sku"])
	assert.Equal(t, "price cannot be negative", fe["price"])
	assert.Equal(t, "stock quantity cannot be negative", fe["stock_qty"])
}

func TestProductInput_Validate_ZeroPriceAllowed(t *testing.T) {
	in := ProductInput{Name: "Freebie", SKU: "FR-01", Price: decimal.Zero}
	assert.True(t, in.Validate().Valid())
}

func TestCustomerInput_Validate(t *testing.T) {
	in := CustomerInput{
		Name:     "Ana Souza",
		Email:    "ana.souza@example.com",
		Document: "12345678901",
	}
	assert.True(t, in.Validate().Valid())
}

func TestCustomerInput_Validate_EmailRules(t *testing.T) {
	in := CustomerInput{Name: "Ana", Document: "12345678901"}

	fe := in.Validate()
	assert.Equal(t, "email is required", fe["email"])

	in.Email = "not-an-email"
	fe = in.Validate()
	assert.Equal(t, "invalid email format", fe["email"])
}

func TestCustomerInput_Validate_Document(t *testing.T) {
	in := CustomerInput{Name: "Ana", Email: "ana@example.com"}

	fe := in.Validate()
	assert.Equal(t, "document is required", fe["document"])

	// Punctuation does not count towards the digit total.
	in.Document = "123.456.789"
	fe = in.Validate()
	assert.Equal(t, "document must have 11 (CPF) or 14 (CNPJ) digits", fe["document"])

	in.Document = "123.456.789-01"
	assert.True(t, in.Validate().Valid())

	in.Document = "12.345.678/0001-90"
	assert.True(t, in.Validate().Valid())
}
