package repository

import (
    "context"
    "database/sql"
    "errors"

    "github.com/iliyamo/restaurant-reservation/internal/model"
)

// SettingsRepo loads the venue configuration row.  The row is
// maintained by the back office; when it has not been created yet the
// seeded defaults apply, so booking never fails on a fresh database.
type SettingsRepo struct {
    db *sql.DB
}

// NewSettingsRepo returns a SettingsRepo bound to the given database.
func NewSettingsRepo(db *sql.DB) *SettingsRepo { return &SettingsRepo{db: db} }

// Get returns the current restaurant settings.  The settings value is
// passed explicitly into every engine call; nothing in the core holds
// on to it between requests.
func (r *SettingsRepo) Get(ctx context.Context) (model.RestaurantSettings, error) {
    const q = `SELECT max_capacity, opening_time, closing_time,
                      slot_granularity_minutes, reservation_duration_minutes,
                      min_party_size, max_party_size,
                      advance_booking_days, cancellation_hours
               FROM restaurant_settings
               LIMIT 1`
    var s model.RestaurantSettings
    err := r.db.QueryRowContext(ctx, q).Scan(
        &s.MaxCapacity, &s.OpeningTime, &s.ClosingTime,
        &s.SlotGranularityMinutes, &s.ReservationDurationMinutes,
        &s.MinPartySize, &s.MaxPartySize,
        &s.AdvanceBookingDays, &s.CancellationHours,
    )
    if errors.Is(err, sql.ErrNoRows) {
        return model.DefaultSettings(), nil
    }
    if err != nil {
        return model.RestaurantSettings{}, err
    }
    return s, nil
}
