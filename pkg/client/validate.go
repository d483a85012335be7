package client

import (
	"regexp"
	"strings"
)

// FieldErrors maps input field names to human-readable problems. It is
// advisory state for forms: a non-empty map blocks submission but is never
// raised as an error, so the presentation layer can attach each message to
// its input.
type FieldErrors map[string]string

// Valid reports whether no field rule was violated.
func (fe FieldErrors) Valid() bool {
	return len(fe) == 0
}

var (
	emailPattern = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)
	nonDigits    = regexp.MustCompile(`\D`)
)

// Validate checks the product field rules enforced before a create or update
// request is sent. The server applies the same rules authoritatively.
func (in ProductInput) Validate() FieldErrors {
	fe := FieldErrors{}
	if strings.TrimSpace(in.Name) == "" {
		fe["name"] = "name is required"
	}
	if strings.TrimSpace(in.SKU) == "" {
		fe["sku"] = "sku is required"
	}
	if in.Price.IsNegative() {
		fe["price"] = "price cannot be negative"
	}
	if in.StockQty < 0 {
		fe["stock_qty"] = "stock quantity cannot be negative"
	}
	return fe
}

// Validate checks the customer field rules enforced before a create or update
// request is sent.
func (in CustomerInput) Validate() FieldErrors {
	fe := FieldErrors{}
	if strings.TrimSpace(in.Name) == "" {
		fe["name"] = "name is required"
	}
	switch {
	case strings.TrimSpace(in.Email) == "":
		fe["email"] = "email is required"
	case !emailPattern.MatchString(in.Email):
		fe["email"] = "invalid email format"
	}
	switch digits := len(nonDigits.ReplaceAllString(in.Document, "")); {
	case strings.TrimSpace(in.Document) == "":
		fe["document"] = "document is required"
	case digits != 11 && digits != 14:
		fe["document"] = "document must have 11 (CPF) or 14 (CNPJ) digits"
	}
	return fe
}
