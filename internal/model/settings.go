package model

// RestaurantSettings holds the venue configuration every booking
// operation is evaluated against.  The settings row is maintained by
// the back office; the booking core receives the value explicitly on
// each call and never mutates it.
//
// Fields:
//  MaxCapacity                – maximum simultaneous covers per slot.
//  OpeningTime/ClosingTime    – service window (HH:MM, 24h).
//  SlotGranularityMinutes     – spacing between bookable slots.
//  ReservationDurationMinutes – how long a party occupies its table.
//  MinPartySize/MaxPartySize  – accepted party size bounds.
//  AdvanceBookingDays         – how far ahead bookings are accepted.
//  CancellationHours          – minimum notice for a guest cancellation.
type RestaurantSettings struct {
    MaxCapacity                int    // restaurant_settings.max_capacity
    OpeningTime                string // restaurant_settings.opening_time
    ClosingTime                string // restaurant_settings.closing_time
    SlotGranularityMinutes     int    // restaurant_settings.slot_granularity_minutes
    ReservationDurationMinutes int    // restaurant_settings.reservation_duration_minutes
    MinPartySize               int    // restaurant_settings.min_party_size
    MaxPartySize               int    // restaurant_settings.max_party_size
    AdvanceBookingDays         int    // restaurant_settings.advance_booking_days
    CancellationHours          int    // restaurant_settings.cancellation_hours
}

// DefaultSettings mirrors the seeded restaurant_settings row and is
// used when the row has not been created yet.
func DefaultSettings() RestaurantSettings {
    return RestaurantSettings{
        MaxCapacity:                100,
        OpeningTime:                "17:00",
        ClosingTime:                "23:00",
        SlotGranularityMinutes:     30,
        ReservationDurationMinutes: 120,
        MinPartySize:               1,
        MaxPartySize:               20,
        AdvanceBookingDays:         90,
        CancellationHours:          2,
    }
}
