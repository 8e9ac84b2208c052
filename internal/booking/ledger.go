package booking

import (
    "context"
    "errors"
    "fmt"
    "strings"
    "time"

    "github.com/google/uuid"
    "go.uber.org/zap"

    "github.com/iliyamo/restaurant-reservation/internal/lock"
    "github.com/iliyamo/restaurant-reservation/internal/model"
)

// CreateRequest carries the guest input for a new reservation.
type CreateRequest struct {
    FirstName           string `json:"first_name"`
    LastName            string `json:"last_name"`
    Email               string `json:"email"`
    Phone               string `json:"phone"`
    Date                string `json:"date"`
    Time                string `json:"time"`
    PartySize           int    `json:"party_size"`
    Occasion            string `json:"occasion"`
    SpecialRequests     string `json:"special_requests"`
    DietaryRestrictions string `json:"dietary_restrictions"`
    PreferredLocale     string `json:"preferred_locale"`
}

// Ledger owns every reservation mutation.  The capacity
// check-and-reserve for a (date,time) bucket runs under a per-bucket
// lock so concurrent creates and cancels for the same slot serialize;
// disjoint slots proceed in parallel.  Availability reads performed
// after a committed cancel always observe the released capacity
// because the status write happens inside the same critical section.
type Ledger struct {
    store       ReservationStore
    assignments AssignmentStore
    codes       *CodeGenerator
    locks       *lock.Keyed
    log         *zap.Logger
    now         func() time.Time
}

// NewLedger constructs a Ledger.  All dependencies must be non-nil.
func NewLedger(store ReservationStore, assignments AssignmentStore, codes *CodeGenerator, locks *lock.Keyed, log *zap.Logger) *Ledger {
    if store == nil || assignments == nil || codes == nil || locks == nil {
        panic("nil dependency passed to NewLedger")
    }
    if log == nil {
        log = zap.NewNop()
    }
    return &Ledger{
        store:       store,
        assignments: assignments,
        codes:       codes,
        locks:       locks,
        log:         log,
        now:         func() time.Time { return time.Now().UTC() },
    }
}

// slotKey names the lock bucket for a (date,time) slot.
func slotKey(date, tm string) string {
    return "slot:" + date + "T" + tm
}

// Create validates the request, then admits the reservation under the
// slot's capacity lock.  Admission counts pending reservations in
// addition to confirmed and seated ones, so that unverified bookings
// already in flight cannot collectively overshoot the capacity once
// their guests confirm.  The new reservation starts in pending status
// and is confirmed only after OTP verification.
func (l *Ledger) Create(ctx context.Context, req CreateRequest, settings model.RestaurantSettings) (*model.Reservation, error) {
    if err := l.validate(req, settings); err != nil {
        return nil, err
    }

    code, err := l.codes.Generate(ctx)
    if err != nil {
        return nil, err
    }

    release, err := l.locks.Acquire(ctx, slotKey(req.Date, req.Time))
    if err != nil {
        return nil, err
    }
    defer release()

    booked, err := l.store.BookedCapacity(ctx, req.Date, req.Time, admissionStatuses)
    if err != nil {
        return nil, err
    }
    if req.PartySize > settings.MaxCapacity-booked {
        return nil, ErrCapacityExceeded
    }

    r := &model.Reservation{
        ID:                  uuid.NewString(),
        FirstName:           strings.TrimSpace(req.FirstName),
        LastName:            strings.TrimSpace(req.LastName),
        Email:               strings.ToLower(strings.TrimSpace(req.Email)),
        Phone:               strings.TrimSpace(req.Phone),
        Date:                req.Date,
        Time:                req.Time,
        PartySize:           req.PartySize,
        Occasion:            req.Occasion,
        SpecialRequests:     req.SpecialRequests,
        DietaryRestrictions: req.DietaryRestrictions,
        Status:              model.StatusPending,
        VerificationCode:    code,
        EmailVerified:       false,
        PreferredLocale:     req.PreferredLocale,
    }
    if r.PreferredLocale == "" {
        r.PreferredLocale = "sq"
    }
    if err := l.store.Create(ctx, r); err != nil {
        return nil, err
    }
    l.log.Info("reservation created",
        zap.String("reservation_id", r.ID),
        zap.String("date", r.Date),
        zap.String("time", r.Time),
        zap.Int("party_size", r.PartySize),
        zap.Int("slot_booked", booked),
    )
    return r, nil
}

// validate checks the guest input against the venue settings.
func (l *Ledger) validate(req CreateRequest, settings model.RestaurantSettings) error {
    if strings.TrimSpace(req.FirstName) == "" || strings.TrimSpace(req.Email) == "" {
        return fmt.Errorf("%w: first name and email are required", ErrValidation)
    }
    if req.PartySize < settings.MinPartySize || req.PartySize > settings.MaxPartySize {
        return fmt.Errorf("%w: party size must be between %d and %d",
            ErrValidation, settings.MinPartySize, settings.MaxPartySize)
    }
    day, err := time.Parse("2006-01-02", req.Date)
    if err != nil {
        return fmt.Errorf("%w: date %q", ErrValidation, req.Date)
    }
    today := l.now().Truncate(24 * time.Hour)
    if day.Before(today) {
        return fmt.Errorf("%w: date is in the past", ErrPolicyViolation)
    }
    if day.After(today.AddDate(0, 0, settings.AdvanceBookingDays)) {
        return fmt.Errorf("%w: date is more than %d days ahead",
            ErrValidation, settings.AdvanceBookingDays)
    }
    slots, err := GenerateSlots(settings)
    if err != nil {
        return err
    }
    for _, tm := range slots {
        if tm == req.Time {
            return nil
        }
    }
    return fmt.Errorf("%w: %q is not a bookable time", ErrValidation, req.Time)
}

// Lookup finds a reservation by its public verification code and the
// guest email.  The code is matched upper-cased, the email
// case-insensitively.
func (l *Ledger) Lookup(ctx context.Context, code, email string) (*model.Reservation, error) {
    code = strings.ToUpper(strings.TrimSpace(code))
    email = strings.ToLower(strings.TrimSpace(email))
    if code == "" || email == "" {
        return nil, fmt.Errorf("%w: verification code and email are required", ErrValidation)
    }
    return l.store.GetByCodeAndEmail(ctx, code, email)
}

// CancelByCode cancels a reservation identified by verification code
// and email.  The cancellation policy requires the current time to be
// at least cancellationHours before the reservation start and the
// status to be non-terminal.  The status write and the release of any
// table assignment happen inside the slot's critical section, so an
// availability read issued right after a committed cancel already
// sees the freed capacity.
func (l *Ledger) CancelByCode(ctx context.Context, code, email string, settings model.RestaurantSettings) (*model.Reservation, error) {
    r, err := l.Lookup(ctx, code, email)
    if err != nil {
        return nil, err
    }
    return l.cancel(ctx, r, settings)
}

func (l *Ledger) cancel(ctx context.Context, r *model.Reservation, settings model.RestaurantSettings) (*model.Reservation, error) {
    if IsTerminal(r.Status) {
        return nil, fmt.Errorf("%w: reservation is already %s", ErrPolicyViolation, r.Status)
    }
    startsAt, err := r.StartsAt()
    if err != nil {
        return nil, err
    }
    deadline := startsAt.Add(-time.Duration(settings.CancellationHours) * time.Hour)
    if !l.now().Before(deadline) {
        return nil, fmt.Errorf("%w: cancellations require %d hours notice",
            ErrPolicyViolation, settings.CancellationHours)
    }

    release, err := l.locks.Acquire(ctx, slotKey(r.Date, r.Time))
    if err != nil {
        return nil, err
    }
    defer release()

    // Re-read inside the critical section; a concurrent staff update
    // may have moved the status since the lookup.
    cur, err := l.store.GetByID(ctx, r.ID)
    if err != nil {
        return nil, err
    }
    next, err := Transition(cur.Status, model.StatusCancelled)
    if err != nil {
        return nil, err
    }
    if err := l.store.UpdateStatus(ctx, cur.ID, next); err != nil {
        return nil, err
    }
    freed, err := l.assignments.DeleteByReservation(ctx, cur.ID)
    if err != nil {
        return nil, err
    }
    cur.Status = next
    l.log.Info("reservation cancelled",
        zap.String("reservation_id", cur.ID),
        zap.String("date", cur.Date),
        zap.String("time", cur.Time),
        zap.Int("assignments_released", freed),
    )
    return cur, nil
}

// UpdateStatus applies a staff-driven lifecycle transition.  Moves to
// cancelled release the slot's capacity, so the write runs under the
// same bucket lock the create path uses.
func (l *Ledger) UpdateStatus(ctx context.Context, id, newStatus string) (*model.Reservation, error) {
    r, err := l.store.GetByID(ctx, id)
    if err != nil {
        return nil, err
    }

    release, err := l.locks.Acquire(ctx, slotKey(r.Date, r.Time))
    if err != nil {
        return nil, err
    }
    defer release()

    cur, err := l.store.GetByID(ctx, id)
    if err != nil {
        return nil, err
    }
    next, err := Transition(cur.Status, newStatus)
    if err != nil {
        return nil, err
    }
    if err := l.store.UpdateStatus(ctx, cur.ID, next); err != nil {
        return nil, err
    }
    if next == model.StatusCancelled {
        if _, err := l.assignments.DeleteByReservation(ctx, cur.ID); err != nil {
            return nil, err
        }
    }
    cur.Status = next
    l.log.Info("reservation status updated",
        zap.String("reservation_id", cur.ID),
        zap.String("status", next),
    )
    return cur, nil
}

// MarkVerified records a successful identity verification and runs
// the pending→confirmed transition.  This is the only auto-confirm
// path: a reservation saved pending stays pending until its guest
// proves control of the email address.  Calling it on an already
// confirmed, verified reservation is a no-op.
func (l *Ledger) MarkVerified(ctx context.Context, id string) (*model.Reservation, error) {
    r, err := l.store.GetByID(ctx, id)
    if err != nil {
        return nil, err
    }

    release, err := l.locks.Acquire(ctx, slotKey(r.Date, r.Time))
    if err != nil {
        return nil, err
    }
    defer release()

    cur, err := l.store.GetByID(ctx, id)
    if err != nil {
        return nil, err
    }
    if cur.EmailVerified && cur.Status == model.StatusConfirmed {
        return cur, nil
    }
    next, err := Transition(cur.Status, model.StatusConfirmed)
    if err != nil {
        return nil, err
    }
    if err := l.store.MarkVerified(ctx, cur.ID); err != nil {
        return nil, err
    }
    if err := l.store.UpdateStatus(ctx, cur.ID, next); err != nil {
        return nil, err
    }
    cur.EmailVerified = true
    cur.Status = next
    l.log.Info("reservation confirmed",
        zap.String("reservation_id", cur.ID),
        zap.String("email", cur.Email),
    )
    return cur, nil
}

// GetByID exposes a read for handlers that need the reservation
// before deciding which engine call to make.
func (l *Ledger) GetByID(ctx context.Context, id string) (*model.Reservation, error) {
    r, err := l.store.GetByID(ctx, id)
    if err != nil {
        if errors.Is(err, ErrNotFound) {
            return nil, ErrNotFound
        }
        return nil, err
    }
    return r, nil
}
