package booking

import (
    "context"
    "fmt"
    "time"

    "github.com/iliyamo/restaurant-reservation/internal/model"
)

// countedStatuses are the reservation states that consume capacity in
// availability reads: guests who will (or do) occupy the room.
var countedStatuses = []string{model.StatusConfirmed, model.StatusSeated}

// admissionStatuses additionally count pending reservations, so that a
// burst of unverified bookings cannot overshoot the capacity once they
// confirm.  Used by the ledger's create path only.
var admissionStatuses = []string{model.StatusPending, model.StatusConfirmed, model.StatusSeated}

// Slot is one bookable time point within a day, together with the
// remaining capacity at that point.
type Slot struct {
    Time              string `json:"time"`
    AvailableCapacity int    `json:"available_capacity"`
    IsAvailable       bool   `json:"is_available"`
}

// DayAvailability is the ordered slot list for one date.
type DayAvailability struct {
    Date  string `json:"date"`
    Slots []Slot `json:"slots"`
}

// Calculator derives slot lists and remaining capacity from the
// reservation store.  It holds no state of its own; the settings value
// is passed into every call.
type Calculator struct {
    store ReservationStore
}

// NewCalculator returns a Calculator reading from the given store.
func NewCalculator(store ReservationStore) *Calculator {
    return &Calculator{store: store}
}

// GenerateSlots produces the ordered sequence of bookable times
// between opening and (closing − reservation duration), stepped by the
// slot granularity.  The last slot still fits a full reservation
// before closing.
func GenerateSlots(settings model.RestaurantSettings) ([]string, error) {
    open, err := ParseClock(settings.OpeningTime)
    if err != nil {
        return nil, fmt.Errorf("%w: opening time %q", ErrValidation, settings.OpeningTime)
    }
    close, err := ParseClock(settings.ClosingTime)
    if err != nil {
        return nil, fmt.Errorf("%w: closing time %q", ErrValidation, settings.ClosingTime)
    }
    step := settings.SlotGranularityMinutes
    if step <= 0 {
        return nil, fmt.Errorf("%w: slot granularity must be positive", ErrValidation)
    }
    last := close - settings.ReservationDurationMinutes
    var slots []string
    for m := open; m <= last; m += step {
        slots = append(slots, FormatClock(m))
    }
    return slots, nil
}

// ForDate returns the slot list for one date with per-slot remaining
// capacity.  Only confirmed and seated reservations count against the
// venue capacity here; pending bookings are invisible to guests until
// verified.
func (c *Calculator) ForDate(ctx context.Context, date string, settings model.RestaurantSettings) (*DayAvailability, error) {
    if _, err := time.Parse("2006-01-02", date); err != nil {
        return nil, fmt.Errorf("%w: date %q", ErrValidation, date)
    }
    times, err := GenerateSlots(settings)
    if err != nil {
        return nil, err
    }
    day := &DayAvailability{Date: date, Slots: make([]Slot, 0, len(times))}
    for _, tm := range times {
        booked, err := c.store.BookedCapacity(ctx, date, tm, countedStatuses)
        if err != nil {
            return nil, err
        }
        free := settings.MaxCapacity - booked
        if free < 0 {
            free = 0
        }
        day.Slots = append(day.Slots, Slot{
            Time:              tm,
            AvailableCapacity: free,
            IsAvailable:       free > 0,
        })
    }
    return day, nil
}

// ForRange returns per-day availability for every date in [from, to]
// inclusive.  The range length is capped by the advance booking
// window so a single request cannot scan an unbounded span.
func (c *Calculator) ForRange(ctx context.Context, from, to string, settings model.RestaurantSettings) ([]DayAvailability, error) {
    start, err := time.Parse("2006-01-02", from)
    if err != nil {
        return nil, fmt.Errorf("%w: from date %q", ErrValidation, from)
    }
    end, err := time.Parse("2006-01-02", to)
    if err != nil {
        return nil, fmt.Errorf("%w: to date %q", ErrValidation, to)
    }
    if end.Before(start) {
        return nil, fmt.Errorf("%w: range end before start", ErrValidation)
    }
    maxDays := settings.AdvanceBookingDays
    if maxDays <= 0 {
        maxDays = 1
    }
    if int(end.Sub(start).Hours()/24) >= maxDays {
        return nil, fmt.Errorf("%w: range exceeds %d days", ErrValidation, maxDays)
    }
    var days []DayAvailability
    for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
        day, err := c.ForDate(ctx, d.Format("2006-01-02"), settings)
        if err != nil {
            return nil, err
        }
        days = append(days, *day)
    }
    return days, nil
}

// ParseClock converts an HH:MM string into minutes after midnight.
func ParseClock(s string) (int, error) {
    t, err := time.Parse("15:04", s)
    if err != nil {
        return 0, err
    }
    return t.Hour()*60 + t.Minute(), nil
}

// FormatClock converts minutes after midnight back into HH:MM.
func FormatClock(m int) string {
    return fmt.Sprintf("%02d:%02d", m/60, m%60)
}
