// Package booking implements the reservation core: slot availability,
// the race-safe reservation ledger, table allocation and the OTP
// verification state machine.  It defines sentinel error values that
// allow the handler layer to distinguish between failure scenarios
// without inspecting error strings.  All errors propagate unmodified
// to the caller; none are downgraded inside the package.
package booking

import "errors"

// ErrValidation is returned for malformed or out-of-range input such
// as a party size outside the configured bounds or a time that is not
// a bookable slot.  Handlers should translate this into HTTP 422.
var ErrValidation = errors.New("validation error")

// ErrCapacityExceeded is returned when admitting a reservation would
// push the slot's committed covers past the venue capacity.  Handlers
// should translate this into HTTP 409.
var ErrCapacityExceeded = errors.New("capacity exceeded")

// ErrPolicyViolation is returned when a cancellation arrives inside
// the cancellation window or targets a past reservation.  Handlers
// should translate this into HTTP 409.
var ErrPolicyViolation = errors.New("policy violation")

// ErrInvalidTransition is returned when a status change is not an
// edge of the reservation lifecycle graph.
var ErrInvalidTransition = errors.New("invalid status transition")

// ErrNoTableAvailable is returned by the allocator when no table fits
// the reservation.  This is the one non-fatal failure in the core:
// the reservation stays valid and can be assigned later.
var ErrNoTableAvailable = errors.New("no table available")

// ErrTableUnavailable is returned by a manual assignment when the
// requested table is unsuitable or its window overlaps an existing
// assignment.
var ErrTableUnavailable = errors.New("table not available for this window")

// ErrNotFound is returned when a reservation, table or OTP record
// does not exist.  Handlers should translate this into HTTP 404.
var ErrNotFound = errors.New("not found")

// OTP verification failures.  Expired and locked-out subjects may
// request a fresh code; ErrTooSoon throttles how often.
var (
    ErrInvalidCode     = errors.New("invalid verification code")
    ErrExpired         = errors.New("verification code expired")
    ErrLockedOut       = errors.New("too many verification attempts")
    ErrTooSoon         = errors.New("verification code requested too soon")
    ErrAlreadyVerified = errors.New("subject already verified")
)

// ErrExhausted is returned when the code generator cannot find an
// unused lookup code within its retry budget.  With an 8-character
// code over a 31-symbol alphabet this is practically unreachable.
var ErrExhausted = errors.New("verification code space exhausted")
