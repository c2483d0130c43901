package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores and infrastructure layers return
// these (optionally wrapped) so the gateway and transport can translate them.
//
// These represent factual states about the backing store, not validation failures:
// - ErrNotFound: record does not exist in store
// - ErrUnsupported: store cannot perform the requested operation
// - ErrUnavailable: store or its backend temporarily unavailable
// - ErrConflict: concurrent write collided with existing state
//
// For validation errors (bad input, missing fields), use pkg/domain-errors directly.
var (
	ErrNotFound    = errors.New("not found")
	ErrUnsupported = errors.New("operation unsupported")
	ErrUnavailable = errors.New("unavailable")
	ErrConflict    = errors.New("conflict")
)

// IsStoreFailure reports whether err is one of the recognized store failure
// kinds that callers may recover from locally.
func IsStoreFailure(err error) bool {
	return errors.Is(err, ErrUnsupported) || errors.Is(err, ErrUnavailable)
}
