package domain

import (
	"errors"
	"fmt"
)

// Storage and lifecycle errors as sentinel values.
var (
	ErrNotFound           = errors.New("record not found")
	ErrDuplicateKey       = errors.New("a record with that key already exists")
	ErrUnsupportedBackend = errors.New("unsupported storage backend")
)

// ValidationError marks a business-rule or missing-parameter failure.
// Orchestrators translate it to a 400 envelope; it must stay
// distinguishable from infrastructure failures.
type ValidationError struct {
	Msg string
}

// Validationf builds a ValidationError with a formatted message.
func Validationf(format string, args ...any) *ValidationError {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

func (e *ValidationError) Error() string {
	return e.Msg
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// Backend selects which storage adapter serves a request.
type Backend string

const (
	BackendMongo  Backend = "MongoDB"
	BackendCosmos Backend = "CosmosDB"
)

// ParseBackend maps the DBServer request parameter to a Backend.
// An empty selector defaults to the document store.
func ParseBackend(s string) (Backend, error) {
	switch s {
	case "", string(BackendMongo):
		return BackendMongo, nil
	case string(BackendCosmos):
		return BackendCosmos, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedBackend, s)
	}
}
