package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/okian/mentormatch/internal/adapters/repository"
	service "github.com/okian/mentormatch/internal/app"
)

// Kind classifies an API error. Its value is the wire error code.
type Kind string

// Error kinds.
const (
	KindInvalidArgument Kind = "invalid_argument"
	KindNotFound        Kind = "not_found"
	KindUnavailable     Kind = "unavailable"
	KindInternal        Kind = "internal"
)

// Sentinel kinds for API errors.
var (
	ErrBadRequest   = errors.New("bad request")
	ErrBackpressure = errors.New("backpressure")
)

// Error carries the failing operation and its kind.
type Error struct {
	Op   string
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Op + ": " + string(e.Kind)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// NewKind creates an error of kind k from a sentinel.
func NewKind(op string, k Kind, err error) error {
	return &Error{Op: op, Kind: k, Err: err}
}

// WrapKind attaches kind k and a cause to a sentinel.
func WrapKind(op string, k Kind, sentinel, cause error) error {
	return &Error{Op: op, Kind: k, Err: fmt.Errorf("%w: %w", sentinel, cause)}
}

// Wrap records op and lets the kind be derived from err.
func Wrap(op string, err error) error {
	return &Error{Op: op, Kind: kindOf(err), Err: err}
}

// kindOf maps service and repository errors to API kinds.
func kindOf(err error) Kind {
	var apiErr *Error
	switch {
	case err == nil:
		return ""
	case errors.As(err, &apiErr) && apiErr.Kind != "":
		return apiErr.Kind
	case errors.Is(err, service.ErrInvalidArgument), errors.Is(err, repository.ErrInvalidLimit),
		errors.Is(err, ErrBadRequest):
		return KindInvalidArgument
	case errors.Is(err, repository.ErrNotFound):
		return KindNotFound
	case errors.Is(err, service.ErrUnavailable), errors.Is(err, ErrBackpressure):
		return KindUnavailable
	default:
		return KindInternal
	}
}

func statusOf(k Kind) int {
	switch k {
	case KindInvalidArgument:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
