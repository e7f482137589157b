package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores and caches return these
// (optionally wrapped) so services can translate them into domain errors.
//
//   - ErrNotFound: the case or version does not exist
//   - ErrConflict: the case name or version number is already taken
//   - ErrUnavailable: a backing service (database, cache, broker) is unreachable
//
// For validation errors use pkg/domain-errors directly.
var (
	ErrNotFound    = errors.New("not found")
	ErrConflict    = errors.New("conflict")
	ErrUnavailable = errors.New("unavailable")
)
