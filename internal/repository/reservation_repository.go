package repository

import (
    "context"
    "database/sql"
    "strings"

    "github.com/iliyamo/restaurant-reservation/internal/model"
)

// ReservationRepo provides persistence for reservations.  It
// implements booking.ReservationStore.  The verification_code column
// carries a unique index as the last line of defense against a code
// collision that slips past the generator's probe.
type ReservationRepo struct {
    db *sql.DB
}

// NewReservationRepo returns a ReservationRepo bound to the given database.
func NewReservationRepo(db *sql.DB) *ReservationRepo { return &ReservationRepo{db: db} }

const reservationColumns = `id, first_name, last_name, email, phone, date, time,
       party_size, occasion, special_requests, dietary_restrictions, status,
       verification_code, email_verified, preferred_locale, created_at, updated_at`

// Create inserts a new reservation row.  Timestamps default in the
// database; the row is read back to populate them on the model.
func (r *ReservationRepo) Create(ctx context.Context, res *model.Reservation) error {
    const q = `INSERT INTO reservations
        (id, first_name, last_name, email, phone, date, time, party_size,
         occasion, special_requests, dietary_restrictions, status,
         verification_code, email_verified, preferred_locale)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
    _, err := r.db.ExecContext(ctx, q,
        res.ID, res.FirstName, res.LastName, res.Email, res.Phone,
        res.Date, res.Time, res.PartySize,
        nullable(res.Occasion), nullable(res.SpecialRequests), nullable(res.DietaryRestrictions),
        res.Status, res.VerificationCode, res.EmailVerified, res.PreferredLocale,
    )
    if err != nil {
        return err
    }
    const sel = `SELECT created_at, updated_at FROM reservations WHERE id = ?`
    return r.db.QueryRowContext(ctx, sel, res.ID).Scan(&res.CreatedAt, &res.UpdatedAt)
}

// GetByID returns a single reservation or booking.ErrNotFound.
func (r *ReservationRepo) GetByID(ctx context.Context, id string) (*model.Reservation, error) {
    const q = `SELECT ` + reservationColumns + ` FROM reservations WHERE id = ?`
    return r.scanOne(r.db.QueryRowContext(ctx, q, id))
}

// GetByCodeAndEmail looks a reservation up by its public verification
// code and guest email.  Email comparison is case-insensitive; the
// code is matched exactly (callers upper-case it first).
func (r *ReservationRepo) GetByCodeAndEmail(ctx context.Context, code, email string) (*model.Reservation, error) {
    const q = `SELECT ` + reservationColumns + `
               FROM reservations
               WHERE verification_code = ? AND LOWER(email) = ?`
    return r.scanOne(r.db.QueryRowContext(ctx, q, code, strings.ToLower(email)))
}

// UpdateStatus writes a status already validated by the ledger.
func (r *ReservationRepo) UpdateStatus(ctx context.Context, id, status string) error {
    const q = `UPDATE reservations SET status = ?, updated_at = UTC_TIMESTAMP() WHERE id = ?`
    result, err := r.db.ExecContext(ctx, q, status, id)
    if err != nil {
        return err
    }
    n, err := result.RowsAffected()
    if err != nil {
        return err
    }
    if n == 0 {
        return notFound(sql.ErrNoRows)
    }
    return nil
}

// MarkVerified flips email_verified for the reservation.
func (r *ReservationRepo) MarkVerified(ctx context.Context, id string) error {
    const q = `UPDATE reservations SET email_verified = 1, updated_at = UTC_TIMESTAMP() WHERE id = ?`
    _, err := r.db.ExecContext(ctx, q, id)
    return err
}

// BookedCapacity sums party_size over reservations in the (date,time)
// bucket whose status is in statuses.  The IN list is built from
// placeholders because the status set differs between availability
// reads and the ledger's admission check.
func (r *ReservationRepo) BookedCapacity(ctx context.Context, date, tm string, statuses []string) (int, error) {
    if len(statuses) == 0 {
        return 0, nil
    }
    placeholders := make([]string, len(statuses))
    args := make([]interface{}, 0, len(statuses)+2)
    args = append(args, date, tm)
    for i, s := range statuses {
        placeholders[i] = "?"
        args = append(args, s)
    }
    q := `SELECT COALESCE(SUM(party_size), 0) FROM reservations
          WHERE date = ? AND time = ? AND status IN (` + strings.Join(placeholders, ",") + `)`
    var total int
    if err := r.db.QueryRowContext(ctx, q, args...).Scan(&total); err != nil {
        return 0, err
    }
    return total, nil
}

// CodeExists reports whether a verification code is already taken.
func (r *ReservationRepo) CodeExists(ctx context.Context, code string) (bool, error) {
    const q = `SELECT EXISTS(SELECT 1 FROM reservations WHERE verification_code = ?)`
    var exists bool
    if err := r.db.QueryRowContext(ctx, q, code).Scan(&exists); err != nil {
        return false, err
    }
    return exists, nil
}

// ListByDate returns all reservations for a date ordered by slot
// time.  Used by the staff roster endpoint.
func (r *ReservationRepo) ListByDate(ctx context.Context, date string) ([]model.Reservation, error) {
    const q = `SELECT ` + reservationColumns + `
               FROM reservations WHERE date = ? ORDER BY time, created_at`
    rows, err := r.db.QueryContext(ctx, q, date)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    out := make([]model.Reservation, 0)
    for rows.Next() {
        res, err := scanReservation(rows)
        if err != nil {
            return nil, err
        }
        out = append(out, *res)
    }
    return out, rows.Err()
}

type rowScanner interface {
    Scan(dest ...interface{}) error
}

func (r *ReservationRepo) scanOne(row *sql.Row) (*model.Reservation, error) {
    res, err := scanReservation(row)
    if err != nil {
        return nil, notFound(err)
    }
    return res, nil
}

func scanReservation(row rowScanner) (*model.Reservation, error) {
    var res model.Reservation
    var occasion, requests, dietary sql.NullString
    err := row.Scan(
        &res.ID, &res.FirstName, &res.LastName, &res.Email, &res.Phone,
        &res.Date, &res.Time, &res.PartySize,
        &occasion, &requests, &dietary, &res.Status,
        &res.VerificationCode, &res.EmailVerified, &res.PreferredLocale,
        &res.CreatedAt, &res.UpdatedAt,
    )
    if err != nil {
        return nil, err
    }
    res.Occasion = occasion.String
    res.SpecialRequests = requests.String
    res.DietaryRestrictions = dietary.String
    return &res, nil
}

// nullable maps an empty string to SQL NULL for optional columns.
func nullable(s string) interface{} {
    if s == "" {
        return nil
    }
    return s
}
