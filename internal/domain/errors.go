package domain

import (
	"net/http"

	"github.com/pkg/errors"
)

// Kind is the small set of error kinds the propagation policy converts
// to HTTP status at the outermost layer (SPEC_FULL.md §7). Background
// tasks never propagate these; they log and continue.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindNotFound
	KindConflict
	KindUnavailable
	KindExhausted
	KindRateLimited
)

// CodedError pairs an error Kind with a human-readable message and the
// error that caused it, mirroring the teacher's errorCode/ErrorCode
// split between an internal cause and a message safe to put on the wire.
type CodedError struct {
	Kind    Kind
	Message string
	cause   error
}

func (e *CodedError) Error() string { return e.Message }

func (e *CodedError) Unwrap() error { return e.cause }

// New creates a CodedError with no underlying cause.
func New(kind Kind, message string) *CodedError {
	return &CodedError{Kind: kind, Message: message}
}

// Wrap attaches a Kind and message to an underlying error, preserving it
// for logging via errors.Cause/errors.Wrap the way the rest of this
// codebase does at every layer boundary.
func Wrap(kind Kind, message string, cause error) *CodedError {
	return &CodedError{Kind: kind, Message: message, cause: errors.Wrap(cause, message)}
}

// KindOf extracts the Kind carried by err, defaulting to KindInternal
// for errors that never passed through Wrap/New — the same default the
// teacher's ParseErrorCode falls back to for unrecognized causes.
func KindOf(err error) Kind {
	var coded *CodedError
	if errors.As(err, &coded) {
		return coded.Kind
	}
	return KindInternal
}

// HTTPStatus maps a Kind to the status code spec.md's error table
// names for each outcome.
func HTTPStatus(kind Kind) int {
	switch kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindUnavailable:
		return http.StatusServiceUnavailable
	case KindExhausted:
		return http.StatusServiceUnavailable
	case KindRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

var (
	ErrPoolEmpty    = New(KindExhausted, "slug pool exhausted")
	ErrDuplicateKey = New(KindConflict, "slug already exists")
	ErrNotFound     = New(KindNotFound, "slug not found")
)
