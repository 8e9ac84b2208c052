package handler

import (
    "errors"
    "net/http"

    "github.com/iliyamo/restaurant-reservation/internal/booking"
    "github.com/iliyamo/restaurant-reservation/internal/lock"
)

// httpStatus maps the booking core's sentinel errors onto HTTP status
// codes.  Anything unrecognized is a 500: engine errors propagate
// unmodified, so an unknown error here is a genuine server fault.
func httpStatus(err error) int {
    switch {
    case errors.Is(err, booking.ErrValidation):
        return http.StatusUnprocessableEntity
    case errors.Is(err, booking.ErrCapacityExceeded),
        errors.Is(err, booking.ErrPolicyViolation),
        errors.Is(err, booking.ErrInvalidTransition),
        errors.Is(err, booking.ErrNoTableAvailable),
        errors.Is(err, booking.ErrTableUnavailable):
        return http.StatusConflict
    case errors.Is(err, booking.ErrNotFound):
        return http.StatusNotFound
    case errors.Is(err, booking.ErrInvalidCode):
        return http.StatusBadRequest
    case errors.Is(err, booking.ErrExpired):
        return http.StatusGone
    case errors.Is(err, booking.ErrLockedOut):
        return http.StatusLocked
    case errors.Is(err, booking.ErrTooSoon):
        return http.StatusTooManyRequests
    case errors.Is(err, booking.ErrAlreadyVerified):
        return http.StatusConflict
    case errors.Is(err, lock.ErrBusy):
        return http.StatusServiceUnavailable
    default:
        return http.StatusInternalServerError
    }
}

// publicMessage hides internal detail for 500s while passing sentinel
// error text through for everything the guest can act on.
func publicMessage(err error, status int) string {
    if status == http.StatusInternalServerError {
        return "internal error"
    }
    return err.Error()
}
