// Package customer holds the customer entity and its persistence contract.
package customer

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/go-faster/errors"

	"github.com/xenking/backoffice/pkg/listing"
)

// ErrNotFound is returned when a requested customer does not exist.
var ErrNotFound = errors.New("customer not found")

// EmailTakenError is returned when a create or update would reuse another
// customer's email.
type EmailTakenError struct {
	Email string
}

func (e *EmailTakenError) Error() string {
	return "customer with email '" + e.Email + "' already exists"
}

var (
	emailPattern = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)
	nonDigits    = regexp.MustCompile(`\D`)
)

// Customer is a buyer record. Document is a CPF (11 digits) or CNPJ
// (14 digits) tax id; punctuation is ignored when validating.
type Customer struct {
	ID        int64
	Name      string
	Email     string
	Document  string
	CreatedAt time.Time
}

// Validate enforces the customer field rules, returning the first violation.
func (c *Customer) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return errors.New("customer name cannot be empty")
	}
	if strings.TrimSpace(c.Email) == "" {
		return errors.New("customer email cannot be empty")
	}
	if !emailPattern.MatchString(c.Email) {
		return errors.New("invalid email format")
	}
	if strings.TrimSpace(c.Document) == "" {
		return errors.New("customer document cannot be empty")
	}
	if digits := len(nonDigits.ReplaceAllString(c.Document, "")); digits != 11 && digits != 14 {
		return errors.New("invalid document format (must be CPF or CNPJ)")
	}
	return nil
}

// Repository defines persistence operations for customers.
type Repository interface {
	List(ctx context.Context, q listing.Query) ([]Customer, int, error)
	GetByID(ctx context.Context, id int64) (*Customer, error)
	Create(ctx context.Context, c *Customer) error
	Update(ctx context.Context, c *Customer) error
	Delete(ctx context.Context, id int64) error
}
