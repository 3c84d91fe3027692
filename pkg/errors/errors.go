// Package errors defines the sentinel error taxonomy for the search engine
// and a wrapper type that attaches operator-facing context without losing
// the underlying sentinel for errors.Is / errors.As checks.
package errors

import (
	"errors"
	"fmt"
)

var (
	// ErrConfigError signals an unreadable persistent artifact at startup.
	// The caller must treat this as fatal and abort the process.
	ErrConfigError = errors.New("config error")
	// ErrNotInitialized signals a query-path call before Cache Manager
	// initialization completed.
	ErrNotInitialized = errors.New("engine not initialized")
	// ErrBadInput signals a malformed ingest batch.
	ErrBadInput = errors.New("bad input")
	// ErrShardMissing is informational, not fatal: a barrel file absent
	// from disk is treated as an empty shard by callers that catch it.
	ErrShardMissing = errors.New("shard missing")
	// ErrWorkerFailure signals the incremental indexer's background job
	// threw or exited non-zero.
	ErrWorkerFailure = errors.New("worker failure")
	// ErrWorkerBusy signals a second ingest submission while one is
	// already running; the single-writer admission gate rejects it.
	ErrWorkerBusy = errors.New("indexer worker busy")
)

// Taxonomy classifies an error against the taxonomy in SPEC_FULL.md §7.
type Taxonomy int

const (
	TaxonomyUnknown Taxonomy = iota
	TaxonomyConfigError
	TaxonomyNotInitialized
	TaxonomyBadInput
	TaxonomyShardMissing
	TaxonomyWorkerFailure
)

// AppError wraps a sentinel error with operator-facing context.
type AppError struct {
	Err     error
	Message string
}

func (e *AppError) Error() string {
	return fmt.Sprintf("%s: %s", e.Err.Error(), e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New wraps sentinel with a message.
func New(sentinel error, message string) *AppError {
	return &AppError{Err: sentinel, Message: message}
}

// Newf wraps sentinel with a formatted message.
func Newf(sentinel error, format string, args ...any) *AppError {
	return &AppError{Err: sentinel, Message: fmt.Sprintf(format, args...)}
}

// Classify maps err onto the error taxonomy, unwrapping AppError and
// sentinel wrapping via errors.Is.
func Classify(err error) Taxonomy {
	switch {
	case err == nil:
		return TaxonomyUnknown
	case errors.Is(err, ErrConfigError):
		return TaxonomyConfigError
	case errors.Is(err, ErrNotInitialized):
		return TaxonomyNotInitialized
	case errors.Is(err, ErrBadInput):
		return TaxonomyBadInput
	case errors.Is(err, ErrShardMissing):
		return TaxonomyShardMissing
	case errors.Is(err, ErrWorkerFailure), errors.Is(err, ErrWorkerBusy):
		return TaxonomyWorkerFailure
	default:
		return TaxonomyUnknown
	}
}
