package parser

import (
	"errors"
	"fmt"
)

// Sentinel errors for parse failures. A *ParseError always wraps one of them,
// so callers can test with errors.Is.
var (
	// ErrMalformed is returned when the page box geometry is missing or unreadable.
	ErrMalformed = errors.New("malformed preflight report")

	// ErrTruncated is returned when the input cannot be decoded as XML.
	ErrTruncated = errors.New("truncated preflight report")
)

// ErrorKind classifies a ParseError.
type ErrorKind int

const (
	// Malformed means the XML decoded but lacks recoverable page boxes.
	Malformed ErrorKind = iota + 1

	// Truncated means the byte stream is not a complete XML document.
	Truncated
)

// String returns the name of the kind.
func (k ErrorKind) String() string {
	switch k {
	case Malformed:
		return "malformed"
	case Truncated:
		return "truncated"
	default:
		return "unknown"
	}
}

func (k ErrorKind) sentinel() error {
	if k == Truncated {
		return ErrTruncated
	}
	return ErrMalformed
}

// ParseError describes why a preflight report could not be parsed.
type ParseError struct {
	// Kind is the failure class.
	Kind ErrorKind

	// Reason is a short human-readable explanation.
	Reason string

	// Err is the underlying decoder error, if any.
	Err error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	msg := e.Kind.sentinel().Error()
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap exposes the sentinel for the kind and the underlying error.
func (e *ParseError) Unwrap() []error {
	errs := []error{e.Kind.sentinel()}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

func malformed(format string, args ...any) *ParseError {
	return &ParseError{Kind: Malformed, Reason: fmt.Sprintf(format, args...)}
}

func truncated(reason string, err error) *ParseError {
	return &ParseError{Kind: Truncated, Reason: reason, Err: err}
}
