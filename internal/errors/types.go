package errors

import (
	stderrors "errors"
	"fmt"
)

// Kind categorizes failures of form-filling operations.
type Kind int

const (
	KindUnknown Kind = iota
	KindNotFound
	KindValidation
	KindGeneration
	KindNoEntitiesAvailable
	KindInternalInconsistency
)

// String returns a string representation of the Kind
func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "NOT_FOUND"
	case KindValidation:
		return "VALIDATION_ERROR"
	case KindGeneration:
		return "GENERATION_ERROR"
	case KindNoEntitiesAvailable:
		return "NO_ENTITIES_AVAILABLE"
	case KindInternalInconsistency:
		return "INTERNAL_INCONSISTENCY"
	default:
		return "UNKNOWN"
	}
}

// Error is a categorized failure local to a single request.
type Error struct {
	Kind     Kind   `json:"kind"`
	Message  string `json:"message"`
	Resource string `json:"resource,omitempty"`
	ID       uint   `json:"id,omitempty"`
	Cause    error  `json:"-"`
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches any *Error of the same Kind, so callers can compare against
// the sentinel values below with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Message == "" && t.Resource == ""
}

// Sentinels for errors.Is checks.
var (
	ErrNotFound              = &Error{Kind: KindNotFound}
	ErrValidation            = &Error{Kind: KindValidation}
	ErrGeneration            = &Error{Kind: KindGeneration}
	ErrNoEntitiesAvailable   = &Error{Kind: KindNoEntitiesAvailable}
	ErrInternalInconsistency = &Error{Kind: KindInternalInconsistency}
)

// NotFound reports an unknown id for resource (e.g. "form", "entity").
func NotFound(resource string, id uint) *Error {
	return &Error{
		Kind:     KindNotFound,
		Message:  fmt.Sprintf("%s %d not found", resource, id),
		Resource: resource,
		ID:       id,
	}
}

func Validation(format string, args ...interface{}) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// Generation wraps a PDF writer failure.
func Generation(cause error, format string, args ...interface{}) *Error {
	return &Error{Kind: KindGeneration, Message: fmt.Sprintf(format, args...), Cause: cause}
}

func NoEntitiesAvailable() *Error {
	return &Error{Kind: KindNoEntitiesAvailable, Message: "no entities available to test the mapping against"}
}

func InternalInconsistency(format string, args ...interface{}) *Error {
	return &Error{Kind: KindInternalInconsistency, Message: fmt.Sprintf(format, args...)}
}

// KindOf returns the Kind of the first *Error in err's chain, or KindUnknown.
func KindOf(err error) Kind {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

func IsNotFound(err error) bool {
	return KindOf(err) == KindNotFound
}

func IsValidation(err error) bool {
	return KindOf(err) == KindValidation
}
