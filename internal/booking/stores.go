package booking

import (
    "context"

    "github.com/iliyamo/restaurant-reservation/internal/model"
)

// The engine reads and writes state through the narrow interfaces
// below.  The repository package implements them on MySQL; tests use
// in-memory implementations.  Implementations must return ErrNotFound
// (not driver-specific sentinels) when a row is missing.

// ReservationStore persists reservations and answers the capacity and
// code-uniqueness questions the ledger and code generator ask.
type ReservationStore interface {
    // Create inserts a new reservation.  CreatedAt/UpdatedAt are set
    // by the store.
    Create(ctx context.Context, r *model.Reservation) error
    // GetByID returns the reservation with the given UUID.
    GetByID(ctx context.Context, id string) (*model.Reservation, error)
    // GetByCodeAndEmail looks a reservation up by its public
    // verification code and the guest email (matched case-insensitively).
    GetByCodeAndEmail(ctx context.Context, code, email string) (*model.Reservation, error)
    // UpdateStatus persists a status already validated by Transition.
    UpdateStatus(ctx context.Context, id, status string) error
    // MarkVerified flips email_verified for the reservation.
    MarkVerified(ctx context.Context, id string) error
    // BookedCapacity sums party_size over reservations in the given
    // (date,time) bucket whose status is one of statuses.
    BookedCapacity(ctx context.Context, date, tm string, statuses []string) (int, error)
    // CodeExists reports whether a verification code is already taken.
    CodeExists(ctx context.Context, code string) (bool, error)
}

// TableStore exposes the static table inventory.
type TableStore interface {
    // ListSuitable returns available tables whose capacity range
    // accepts the party size, ordered by capacity then table number.
    ListSuitable(ctx context.Context, partySize int) ([]model.Table, error)
    // GetByID returns a single table.
    GetByID(ctx context.Context, id string) (*model.Table, error)
}

// AssignmentWindow is an active table assignment projected onto the
// reservation slot it occupies.  The allocator expands it into a
// concrete [start, start+duration) interval for overlap checks.
type AssignmentWindow struct {
    AssignmentID  string // table_assignments.id
    TableID       string // table occupied by the window
    ReservationID string // reservation occupying the table
    Date          string // reservation date (YYYY-MM-DD)
    Time          string // reservation slot (HH:MM)
}

// AssignmentStore persists table assignments.
type AssignmentStore interface {
    // Create inserts a new assignment.
    Create(ctx context.Context, a *model.TableAssignment) error
    // Delete removes an assignment by ID.
    Delete(ctx context.Context, id string) error
    // DeleteByReservation removes any assignment held by the
    // reservation, returning how many were removed.
    DeleteByReservation(ctx context.Context, reservationID string) (int, error)
    // ListWindows returns the assignment windows for all live
    // (pending, confirmed or seated) reservations on the given date.
    ListWindows(ctx context.Context, date string) ([]AssignmentWindow, error)
}

// CustomerStore resolves returning-guest profiles for the allocator's
// VIP and favorite-table rules.
type CustomerStore interface {
    // GetByEmail returns the profile for an email address or
    // ErrNotFound when the guest has no profile.
    GetByEmail(ctx context.Context, email string) (*model.CustomerProfile, error)
}

// OTPStore persists one-time verification codes.
type OTPStore interface {
    // Create inserts a new OTP record and populates its ID and
    // CreatedAt.
    Create(ctx context.Context, rec *model.OTPRecord) error
    // LatestBySubject returns the most recent non-superseded record
    // for a subject, or ErrNotFound when none exists.
    LatestBySubject(ctx context.Context, subject string) (*model.OTPRecord, error)
    // Supersede invalidates all unverified records for a subject.
    Supersede(ctx context.Context, subject string) error
    // IncrementAttempts atomically bumps the attempt counter and
    // returns the new value.
    IncrementAttempts(ctx context.Context, id uint64) (int, error)
    // MarkVerified marks the record as successfully verified.
    MarkVerified(ctx context.Context, id uint64) error
}
