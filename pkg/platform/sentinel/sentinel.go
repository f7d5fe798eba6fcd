package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores, peer module clients and
// the cache return these (optionally wrapped) so callers can tell a missing
// record or an unreachable peer apart from a real failure.
//
//   - ErrNotFound: the record does not exist in the store or peer module
//   - ErrConflict: a write collided with an existing record
//   - ErrUnavailable: the peer module is down or its breaker is open
//
// For validation errors (bad input, missing fields), use pkg/domain-errors directly.
var (
	ErrNotFound    = errors.New("not found")
	ErrConflict    = errors.New("conflict")
	ErrUnavailable = errors.New("unavailable")
)
