package booking

import (
    "context"
    "errors"
    "sort"
    "time"

    "github.com/google/uuid"
    "go.uber.org/zap"

    "github.com/iliyamo/restaurant-reservation/internal/lock"
    "github.com/iliyamo/restaurant-reservation/internal/model"
)

// Allocator matches reservations to physical tables.  Candidate
// filtering excludes tables whose existing assignment window overlaps
// the requested [start, start+duration) interval; the final
// check-and-assign for a chosen table runs under a per-table lock so
// two concurrent assignments cannot both claim it.
type Allocator struct {
    tables      TableStore
    assignments AssignmentStore
    customers   CustomerStore
    store       ReservationStore
    locks       *lock.Keyed
    log         *zap.Logger
}

// NewAllocator constructs an Allocator.  All dependencies must be
// non-nil.
func NewAllocator(tables TableStore, assignments AssignmentStore, customers CustomerStore, store ReservationStore, locks *lock.Keyed, log *zap.Logger) *Allocator {
    if tables == nil || assignments == nil || customers == nil || store == nil || locks == nil {
        panic("nil dependency passed to NewAllocator")
    }
    if log == nil {
        log = zap.NewNop()
    }
    return &Allocator{
        tables:      tables,
        assignments: assignments,
        customers:   customers,
        store:       store,
        locks:       locks,
        log:         log,
    }
}

func tableKey(tableID string) string {
    return "table:" + tableID
}

// FindCandidates returns the tables that can seat the party at the
// given slot: available, min_capacity ≤ partySize ≤ capacity, and no
// live assignment whose window overlaps the requested one.  The
// result is ordered by capacity, then table number, then ID, which
// makes the smallest-table tie-break deterministic.
func (a *Allocator) FindCandidates(ctx context.Context, date, tm string, partySize, durationMinutes int) ([]model.Table, error) {
    suitable, err := a.tables.ListSuitable(ctx, partySize)
    if err != nil {
        return nil, err
    }
    occupied, err := a.occupiedTables(ctx, date, tm, durationMinutes)
    if err != nil {
        return nil, err
    }
    candidates := make([]model.Table, 0, len(suitable))
    for _, t := range suitable {
        if _, busy := occupied[t.ID]; !busy {
            candidates = append(candidates, t)
        }
    }
    sort.Slice(candidates, func(i, j int) bool {
        if candidates[i].Capacity != candidates[j].Capacity {
            return candidates[i].Capacity < candidates[j].Capacity
        }
        if candidates[i].TableNumber != candidates[j].TableNumber {
            return candidates[i].TableNumber < candidates[j].TableNumber
        }
        return candidates[i].ID < candidates[j].ID
    })
    return candidates, nil
}

// occupiedTables collects the IDs of tables whose live assignment
// windows overlap [start, start+duration) on the given date.
func (a *Allocator) occupiedTables(ctx context.Context, date, tm string, durationMinutes int) (map[string]struct{}, error) {
    start, err := time.Parse("2006-01-02 15:04", date+" "+tm)
    if err != nil {
        return nil, ErrValidation
    }
    end := start.Add(time.Duration(durationMinutes) * time.Minute)

    windows, err := a.assignments.ListWindows(ctx, date)
    if err != nil {
        return nil, err
    }
    occupied := make(map[string]struct{})
    for _, w := range windows {
        ws, err := time.Parse("2006-01-02 15:04", w.Date+" "+w.Time)
        if err != nil {
            continue
        }
        we := ws.Add(time.Duration(durationMinutes) * time.Minute)
        if start.Before(we) && end.After(ws) {
            occupied[w.TableID] = struct{}{}
        }
    }
    return occupied, nil
}

// AutoAssign picks the best table for a reservation and records the
// assignment.  Tie-break order:
//  1. VIP guests get the smallest-capacity VIP candidate, if any.
//  2. The guest's favorite table, if it is among the candidates.
//  3. The smallest-capacity candidate overall.
// An empty candidate set fails with ErrNoTableAvailable; the
// reservation itself stays valid and unassigned.
func (a *Allocator) AutoAssign(ctx context.Context, reservationID string, settings model.RestaurantSettings) (*model.TableAssignment, error) {
    r, err := a.store.GetByID(ctx, reservationID)
    if err != nil {
        return nil, err
    }
    candidates, err := a.FindCandidates(ctx, r.Date, r.Time, r.PartySize, settings.ReservationDurationMinutes)
    if err != nil {
        return nil, err
    }
    if len(candidates) == 0 {
        return nil, ErrNoTableAvailable
    }

    profile, err := a.customers.GetByEmail(ctx, r.Email)
    if err != nil && !errors.Is(err, ErrNotFound) {
        return nil, err
    }
    var chosen model.Table
    picked := false
    if profile != nil && profile.IsVip {
        for _, t := range candidates { // candidates are sorted smallest first
            if t.IsVip {
                chosen = t
                picked = true
                break
            }
        }
    }
    if !picked && profile != nil && profile.FavoriteTableID != "" {
        for _, t := range candidates {
            if t.ID == profile.FavoriteTableID {
                chosen = t
                picked = true
                break
            }
        }
    }
    if !picked {
        chosen = candidates[0]
    }
    return a.commit(ctx, r, chosen, settings, "")
}

// Assign records a manual override.  The table must still pass the
// suitability and overlap checks; staff cannot double-book a table by
// naming it explicitly.
func (a *Allocator) Assign(ctx context.Context, reservationID, tableID, notes string, settings model.RestaurantSettings) (*model.TableAssignment, error) {
    r, err := a.store.GetByID(ctx, reservationID)
    if err != nil {
        return nil, err
    }
    t, err := a.tables.GetByID(ctx, tableID)
    if err != nil {
        return nil, err
    }
    if !t.IsAvailable || r.PartySize < t.MinCapacity || r.PartySize > t.Capacity {
        return nil, ErrTableUnavailable
    }
    return a.commit(ctx, r, *t, settings, notes)
}

// commit re-checks the overlap for the chosen table inside its
// critical section and persists the assignment.  The re-check closes
// the race between candidate selection and commit.
func (a *Allocator) commit(ctx context.Context, r *model.Reservation, t model.Table, settings model.RestaurantSettings, notes string) (*model.TableAssignment, error) {
    release, err := a.locks.Acquire(ctx, tableKey(t.ID))
    if err != nil {
        return nil, err
    }
    defer release()

    occupied, err := a.occupiedTables(ctx, r.Date, r.Time, settings.ReservationDurationMinutes)
    if err != nil {
        return nil, err
    }
    if _, busy := occupied[t.ID]; busy {
        return nil, ErrTableUnavailable
    }

    assignment := &model.TableAssignment{
        ID:            uuid.NewString(),
        ReservationID: r.ID,
        TableID:       t.ID,
        Notes:         notes,
    }
    if err := a.assignments.Create(ctx, assignment); err != nil {
        return nil, err
    }
    a.log.Info("table assigned",
        zap.String("reservation_id", r.ID),
        zap.String("table_id", t.ID),
        zap.Int("party_size", r.PartySize),
        zap.Int("table_capacity", t.Capacity),
    )
    return assignment, nil
}

// Unassign removes an assignment, freeing the table for the window.
func (a *Allocator) Unassign(ctx context.Context, assignmentID string) error {
    if err := a.assignments.Delete(ctx, assignmentID); err != nil {
        return err
    }
    a.log.Info("table unassigned", zap.String("assignment_id", assignmentID))
    return nil
}
