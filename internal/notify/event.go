// Package notify publishes guest notification events to the message
// broker.  Delivery itself (email, SMS) is an external collaborator
// consuming the queue; this package only dispatches fire-and-forget
// events and never lets a broker failure bubble into the booking flow.
package notify

// Event kinds carried on the notification.dispatch queue.
const (
    KindOTPIssued            = "otp_issued"
    KindReservationConfirmed = "reservation_confirmed"
    KindReservationCancelled = "reservation_cancelled"
)

// Event is the payload handed to the notification transport.  It
// contains everything a downstream mailer or SMS gateway needs
// without querying the primary database.
type Event struct {
    Kind             string `json:"kind"`
    ReservationID    string `json:"reservation_id,omitempty"`
    GuestName        string `json:"guest_name,omitempty"`
    Email            string `json:"email,omitempty"`
    Phone            string `json:"phone,omitempty"`
    Date             string `json:"date,omitempty"`
    Time             string `json:"time,omitempty"`
    PartySize        int    `json:"party_size,omitempty"`
    VerificationCode string `json:"verification_code,omitempty"`
    OTPCode          string `json:"otp_code,omitempty"`
    OTPExpiresAt     string `json:"otp_expires_at,omitempty"`
    Locale           string `json:"locale,omitempty"`
    SentAt           string `json:"sent_at"`
}
