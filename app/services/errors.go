package services

import (
	"errors"
	"fmt"

	"github.com/shashiranjanraj/storefront/pkg/record"
)

var (
	ErrProductNotFound    = fmt.Errorf("product: %w", record.ErrNotFound)
	ErrOrderNotFound      = fmt.Errorf("order: %w", record.ErrNotFound)
	ErrCustomerNotFound   = fmt.Errorf("customer: %w", record.ErrNotFound)
	ErrDuplicateEmail     = fmt.Errorf("customer email already registered: %w", record.ErrDuplicateKey)
	ErrInsufficientStock  = errors.New("insufficient stock")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// ValidationError reports a caller-supplied value that cannot be used.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func invalid(field, msg string) error {
	return &ValidationError{Field: field, Message: msg}
}

// IsValidation reports whether err is (or wraps) a *ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// notFound rewrites a record-level ErrNotFound into the domain sentinel,
// leaving other errors untouched.
func notFound(err, sentinel error) error {
	if errors.Is(err, record.ErrNotFound) {
		return sentinel
	}
	return err
}
