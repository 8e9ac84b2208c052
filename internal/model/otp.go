package model

import "time"

// OTPRecord stores a one-time verification code issued to a subject
// (an email address or a phone number).  Only one active record —
// neither verified, superseded nor expired — may exist per subject at
// a time; issuing a new code supersedes all previous unverified ones.
//
// Fields:
//  ID         – auto-increment primary key.
//  Subject    – email or phone the code was sent to.
//  Code       – 6-digit numeric code.
//  ExpiresAt  – hard expiry; verification past this fails.
//  Attempts   – number of verify calls made against this record.
//  Verified   – set once the code was matched successfully.
//  Superseded – set when a newer code was issued for the subject.
//  CreatedAt  – when the code was issued (UTC); also anchors the
//               resend cool-down window.
type OTPRecord struct {
    ID         uint64    // otp_verifications.id
    Subject    string    // otp_verifications.subject
    Code       string    // otp_verifications.code
    ExpiresAt  time.Time // otp_verifications.expires_at
    Attempts   int       // otp_verifications.attempts
    Verified   bool      // otp_verifications.verified
    Superseded bool      // otp_verifications.superseded
    CreatedAt  time.Time // otp_verifications.created_at
}
