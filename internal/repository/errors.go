// Package repository implements the booking engine's store interfaces
// on MySQL.  Row-not-found conditions surface as booking.ErrNotFound
// so the engine and its handlers never see driver sentinels.  All
// timestamp columns are stored and compared in UTC; reservation dates
// and slot times are stored as CHAR(10)/CHAR(5) strings so that
// bucket comparisons are exact string matches.
package repository

import (
    "database/sql"
    "errors"

    "github.com/iliyamo/restaurant-reservation/internal/booking"
)

// notFound translates sql.ErrNoRows into the engine's sentinel and
// passes any other error through unchanged.
func notFound(err error) error {
    if errors.Is(err, sql.ErrNoRows) {
        return booking.ErrNotFound
    }
    return err
}
