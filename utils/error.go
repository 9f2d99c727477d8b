package utils

import (
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"
)

var (
	ErrorRecordNotFound    = errors.New("record not found")
	ErrMissingFields       = errors.New("missing required fields")
	ErrInvalidTransition   = errors.New("invalid status transition")
	ErrInsufficientBalance = errors.New("insufficient cash account balance")
	ErrAlreadySerialized   = errors.New("serial number already assigned")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrForbidden           = errors.New("forbidden")
	ErrDuplicate           = errors.New("duplicate record")
	ErrInvalidInput        = errors.New("invalid input")
)

// InvalidInput wraps ErrInvalidInput with a caller-facing message.
func InvalidInput(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

// IsDuplicateKey reports whether err is a MySQL unique-key violation (1062).
func IsDuplicateKey(err error) bool {
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == 1062
	}
	return errors.Is(err, ErrDuplicate)
}
