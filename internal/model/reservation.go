package model

import "time"

// Reservation statuses.  The lifecycle is a one-way graph: pending
// reservations become confirmed once the guest verifies their email,
// confirmed guests are seated on arrival, seated parties complete their
// visit.  Cancelled, completed and no_show are terminal.
const (
    StatusPending   = "pending"
    StatusConfirmed = "confirmed"
    StatusSeated    = "seated"
    StatusCompleted = "completed"
    StatusCancelled = "cancelled"
    StatusNoShow    = "no_show"
)

// Reservation records a guest's booking for a given date and time slot.
// Capacity accounting sums PartySize over reservations in a slot, so the
// status field must only ever change through the ledger's transition
// functions.
//
// Fields:
//  ID                  – UUID primary key.
//  FirstName/LastName  – guest name.
//  Email               – guest email, lower-cased on write.
//  Phone               – guest phone number.
//  Date                – reservation date (YYYY-MM-DD).
//  Time                – reservation slot (HH:MM, 24h).
//  PartySize           – number of covers.
//  Occasion            – optional occasion tag (birthday, anniversary, ...).
//  SpecialRequests     – optional free-text request.
//  DietaryRestrictions – optional free-text restrictions.
//  Status              – lifecycle state, see constants above.
//  VerificationCode    – public lookup code, globally unique.
//  EmailVerified       – set once the guest's OTP check succeeds.
//  PreferredLocale     – locale for outgoing notifications ("sq" or "en").
//  CreatedAt/UpdatedAt – timestamps in UTC.
type Reservation struct {
    ID                  string    // reservations.id (uuid)
    FirstName           string    // reservations.first_name
    LastName            string    // reservations.last_name
    Email               string    // reservations.email
    Phone               string    // reservations.phone
    Date                string    // reservations.date
    Time                string    // reservations.time
    PartySize           int       // reservations.party_size
    Occasion            string    // reservations.occasion (optional)
    SpecialRequests     string    // reservations.special_requests (optional)
    DietaryRestrictions string    // reservations.dietary_restrictions (optional)
    Status              string    // reservations.status
    VerificationCode    string    // reservations.verification_code (unique)
    EmailVerified       bool      // reservations.email_verified
    PreferredLocale     string    // reservations.preferred_locale
    CreatedAt           time.Time // reservations.created_at
    UpdatedAt           time.Time // reservations.updated_at
}

// FullName returns the guest's display name.
func (r *Reservation) FullName() string {
    return r.FirstName + " " + r.LastName
}

// StartsAt combines Date and Time into a UTC instant.  An error is
// returned when either field is malformed.
func (r *Reservation) StartsAt() (time.Time, error) {
    return time.Parse("2006-01-02 15:04", r.Date+" "+r.Time)
}
