package repository

import (
    "context"
    "database/sql"
    "time"

    "github.com/iliyamo/restaurant-reservation/internal/booking"
    "github.com/iliyamo/restaurant-reservation/internal/model"
)

// AssignmentRepo persists table assignments.  It implements
// booking.AssignmentStore.  Overlap exclusion itself lives in the
// allocator; this layer only answers "which live windows exist on
// this date" and records the allocator's decisions.
type AssignmentRepo struct {
    db *sql.DB
}

// NewAssignmentRepo returns an AssignmentRepo bound to the given database.
func NewAssignmentRepo(db *sql.DB) *AssignmentRepo { return &AssignmentRepo{db: db} }

// Create inserts a new assignment row.
func (r *AssignmentRepo) Create(ctx context.Context, a *model.TableAssignment) error {
    const q = `INSERT INTO table_assignments (id, reservation_id, table_id, notes, assigned_at)
               VALUES (?, ?, ?, ?, UTC_TIMESTAMP())`
    if _, err := r.db.ExecContext(ctx, q, a.ID, a.ReservationID, a.TableID, nullable(a.Notes)); err != nil {
        return err
    }
    a.AssignedAt = time.Now().UTC()
    return nil
}

// Delete removes an assignment by ID, reporting booking.ErrNotFound
// when no row matched.
func (r *AssignmentRepo) Delete(ctx context.Context, id string) error {
    result, err := r.db.ExecContext(ctx, `DELETE FROM table_assignments WHERE id = ?`, id)
    if err != nil {
        return err
    }
    n, err := result.RowsAffected()
    if err != nil {
        return err
    }
    if n == 0 {
        return booking.ErrNotFound
    }
    return nil
}

// DeleteByReservation removes any assignment held by the reservation
// and returns how many rows went away.  Zero is not an error: most
// cancellations never had a table assigned.
func (r *AssignmentRepo) DeleteByReservation(ctx context.Context, reservationID string) (int, error) {
    result, err := r.db.ExecContext(ctx,
        `DELETE FROM table_assignments WHERE reservation_id = ?`, reservationID)
    if err != nil {
        return 0, err
    }
    n, err := result.RowsAffected()
    if err != nil {
        return 0, err
    }
    return int(n), nil
}

// ListWindows returns the assignment windows of live reservations on
// the given date.  Cancelled and otherwise terminal reservations do
// not block a table even while their assignment row still exists.
func (r *AssignmentRepo) ListWindows(ctx context.Context, date string) ([]booking.AssignmentWindow, error) {
    const q = `SELECT a.id, a.table_id, a.reservation_id, res.date, res.time
               FROM table_assignments a
               JOIN reservations res ON res.id = a.reservation_id
               WHERE res.date = ? AND res.status IN ('pending', 'confirmed', 'seated')`
    rows, err := r.db.QueryContext(ctx, q, date)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    windows := make([]booking.AssignmentWindow, 0)
    for rows.Next() {
        var w booking.AssignmentWindow
        if err := rows.Scan(&w.AssignmentID, &w.TableID, &w.ReservationID, &w.Date, &w.Time); err != nil {
            return nil, err
        }
        windows = append(windows, w)
    }
    return windows, rows.Err()
}

// AssignmentDetail joins an assignment with its reservation and table
// for the staff roster view.
type AssignmentDetail struct {
    ID            string    `json:"id"`
    ReservationID string    `json:"reservation_id"`
    GuestName     string    `json:"guest_name"`
    PartySize     int       `json:"party_size"`
    Date          string    `json:"date"`
    Time          string    `json:"time"`
    Status        string    `json:"status"`
    TableID       string    `json:"table_id"`
    TableNumber   int       `json:"table_number"`
    Notes         string    `json:"notes,omitempty"`
    AssignedAt    time.Time `json:"assigned_at"`
}

// ListDetailsByDate returns the day's assignments with guest and
// table context, ordered by slot time.
func (r *AssignmentRepo) ListDetailsByDate(ctx context.Context, date string) ([]AssignmentDetail, error) {
    const q = `SELECT a.id, a.reservation_id,
                      CONCAT(res.first_name, ' ', res.last_name),
                      res.party_size, res.date, res.time, res.status,
                      t.id, t.table_number, a.notes, a.assigned_at
               FROM table_assignments a
               JOIN reservations res ON res.id = a.reservation_id
               JOIN restaurant_tables t ON t.id = a.table_id
               WHERE res.date = ?
               ORDER BY res.time, t.table_number`
    rows, err := r.db.QueryContext(ctx, q, date)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    details := make([]AssignmentDetail, 0)
    for rows.Next() {
        var d AssignmentDetail
        var notes sql.NullString
        if err := rows.Scan(&d.ID, &d.ReservationID, &d.GuestName, &d.PartySize,
            &d.Date, &d.Time, &d.Status, &d.TableID, &d.TableNumber, &notes, &d.AssignedAt); err != nil {
            return nil, err
        }
        d.Notes = notes.String
        details = append(details, d)
    }
    return details, rows.Err()
}
