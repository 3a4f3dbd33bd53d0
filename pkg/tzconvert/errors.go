package tzconvert

import (
	"errors"
	"fmt"
)

// Kind classifies an engine failure. Every kind is a client error.
type Kind int

const (
	// KindUnknownTimezone means a zone name is not in the timezone database.
	KindUnknownTimezone Kind = iota + 1
	// KindMalformedTimestamp means a date string does not match its mandated layout.
	KindMalformedTimestamp
	// KindMissingField means a required request field is absent.
	KindMissingField
	// KindInvalidBody means the request body is not a JSON object of the expected shape.
	KindInvalidBody
)

func (k Kind) String() string {
	switch k {
	case KindUnknownTimezone:
		return "unknown timezone"
	case KindMalformedTimestamp:
		return "malformed timestamp"
	case KindMissingField:
		return "missing field"
	case KindInvalidBody:
		return "invalid body"
	default:
		return "unknown error"
	}
}

// Sentinels for errors.Is checks against *Error values.
var (
	ErrUnknownTimezone    = errors.New("unknown timezone")
	ErrMalformedTimestamp = errors.New("malformed timestamp")
	ErrMissingField       = errors.New("missing field")
	ErrInvalidBody        = errors.New("invalid body")
)

// Error is returned by every engine operation that rejects its input.
type Error struct {
	Err   error
	Field string
	Value string
	Kind  Kind
}

func (e *Error) Error() string {
	var msg string
	switch e.Kind {
	case KindUnknownTimezone:
		msg = fmt.Sprintf("unknown timezone %q", e.Value)
	case KindMalformedTimestamp:
		msg = fmt.Sprintf("time data %q does not match format", e.Value)
	case KindMissingField:
		msg = "missing required field"
	default:
		msg = e.Kind.String()
	}
	if e.Field != "" {
		msg = e.Field + ": " + msg
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is the sentinel for e's kind.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrUnknownTimezone:
		return e.Kind == KindUnknownTimezone
	case ErrMalformedTimestamp:
		return e.Kind == KindMalformedTimestamp
	case ErrMissingField:
		return e.Kind == KindMissingField
	case ErrInvalidBody:
		return e.Kind == KindInvalidBody
	default:
		return false
	}
}

// KindOf returns the Kind carried by err, or zero if err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

// MissingField builds the error for an absent request field.
func MissingField(field string) error {
	return &Error{Kind: KindMissingField, Field: field}
}

// InvalidBody wraps a body decoding failure.
func InvalidBody(err error) error {
	return &Error{Kind: KindInvalidBody, Err: err}
}
