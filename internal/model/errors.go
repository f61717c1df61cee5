package model

import (
	"fmt"

	"github.com/pkg/errors"
)

// Error taxonomy surfaced to callers. Chain-level transport errors are
// always translated into one of these before leaving the orchestrator.
var (
	// ErrSourceLegFailure: source transaction rejected, reverted or timed
	// out before confirmation. Funds remain in custody, safe to retry
	// from scratch with a new request.
	ErrSourceLegFailure = errors.New("source leg failed")

	// ErrDestinationLegFailure: source leg confirmed but the destination
	// credit failed. Funds are locked with no credit until Resume succeeds.
	ErrDestinationLegFailure = errors.New("destination leg failed")

	// ErrRelayerUnavailable: the custodial signer could not submit at all.
	// Transient; Resume may be retried with backoff.
	ErrRelayerUnavailable = errors.New("relayer unavailable")

	// ErrStoreWriteConflict: an out-of-order or duplicate status write was
	// rejected by the request store's ordinal guard.
	ErrStoreWriteConflict = errors.New("stale bridge request write rejected")

	ErrRequestNotFound = errors.New("bridge request not found")

	// ErrRequestInFlight: another driver (a live execution or the
	// reconcile sweep) currently owns this request; only one may drive
	// it at a time.
	ErrRequestInFlight = errors.New("bridge request is already being processed")
)

// ValidationError is returned before any request record is created.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Reason)
}

func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
