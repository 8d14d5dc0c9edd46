package probe

import (
	"errors"
	"fmt"
)

// Error kinds. Every failed Run returns a *TransferError whose Kind is one of these.
var (
	ErrConnection   = errors.New("connection error")
	ErrSizeUnknown  = errors.New("content length unknown")
	ErrStream       = errors.New("stream error")
	ErrTimeout      = errors.New("transfer timed out")
	ErrCancelled    = errors.New("transfer cancelled")
	ErrInconsistent = errors.New("inconsistent transfer")
)

type TransferError struct {
	Kind error
	Err  error
}

func (e *TransferError) Error() string {
	if e.Err == nil {
		return e.Kind.Error()
	}
	return fmt.Sprintf("%v: %v", e.Kind, e.Err)
}

// Unwrap exposes both the kind and the cause to errors.Is and errors.As.
func (e *TransferError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func newError(kind error, format string, args ...any) *TransferError {
	return &TransferError{Kind: kind, Err: fmt.Errorf(format, args...)}
}

// KindLabel returns a short label for the error kind, "unknown" for foreign errors.
func KindLabel(err error) string {
	switch {
	case errors.Is(err, ErrConnection):
		return "connection"
	case errors.Is(err, ErrSizeUnknown):
		return "size_unknown"
	case errors.Is(err, ErrStream):
		return "stream"
	case errors.Is(err, ErrTimeout):
		return "timeout"
	case errors.Is(err, ErrCancelled):
		return "cancelled"
	case errors.Is(err, ErrInconsistent):
		return "inconsistent"
	default:
		return "unknown"
	}
}
