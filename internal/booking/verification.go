package booking

import (
    "context"
    "crypto/subtle"
    "errors"
    "time"

    "go.uber.org/zap"

    "github.com/iliyamo/restaurant-reservation/internal/lock"
    "github.com/iliyamo/restaurant-reservation/internal/model"
)

// Verification defaults.  The TTL and cool-down can be tuned through
// the constructor; the attempt limit is part of the lockout contract.
const (
    otpLength          = 6
    defaultOTPTTL      = 15 * time.Minute
    defaultOTPCooldown = 60 * time.Second
    maxOTPAttempts     = 5
)

// Verifier runs the OTP lifecycle for guest identity checks.  All
// operations for one subject serialize on a per-subject lock, so two
// concurrent verify calls cannot both slip past the attempt limit and
// two concurrent issues cannot leave two active codes behind.
type Verifier struct {
    store    OTPStore
    locks    *lock.Keyed
    log      *zap.Logger
    ttl      time.Duration
    cooldown time.Duration
    now      func() time.Time
}

// NewVerifier constructs a Verifier with the default TTL and
// resend cool-down.
func NewVerifier(store OTPStore, locks *lock.Keyed, log *zap.Logger) *Verifier {
    if store == nil || locks == nil {
        panic("nil dependency passed to NewVerifier")
    }
    if log == nil {
        log = zap.NewNop()
    }
    return &Verifier{
        store:    store,
        locks:    locks,
        log:      log,
        ttl:      defaultOTPTTL,
        cooldown: defaultOTPCooldown,
        now:      func() time.Time { return time.Now().UTC() },
    }
}

func subjectKey(subject string) string {
    return "otp:" + subject
}

// Issue generates a fresh 6-digit code for the subject, invalidating
// any earlier unverified code so exactly one code is active at a
// time.  The caller is responsible for delivering the code to the
// guest; the returned record carries the expiry for the response.
func (v *Verifier) Issue(ctx context.Context, subject string) (*model.OTPRecord, error) {
    release, err := v.locks.Acquire(ctx, subjectKey(subject))
    if err != nil {
        return nil, err
    }
    defer release()
    return v.issueLocked(ctx, subject)
}

func (v *Verifier) issueLocked(ctx context.Context, subject string) (*model.OTPRecord, error) {
    if err := v.store.Supersede(ctx, subject); err != nil {
        return nil, err
    }
    code, err := randomDigits(otpLength)
    if err != nil {
        return nil, err
    }
    rec := &model.OTPRecord{
        Subject:   subject,
        Code:      code,
        ExpiresAt: v.now().Add(v.ttl),
    }
    if err := v.store.Create(ctx, rec); err != nil {
        return nil, err
    }
    v.log.Info("otp issued",
        zap.String("subject", subject),
        zap.Time("expires_at", rec.ExpiresAt),
    )
    return rec, nil
}

// Verify checks a code against the subject's active record.  The
// attempt counter is incremented before any matching happens, so
// repeated cheap probes burn the budget whether or not they guess
// correctly.  Order of failure checks: lockout, expiry, mismatch.
// On success the record transitions to verified and the code cannot
// be used again.
func (v *Verifier) Verify(ctx context.Context, subject, code string) error {
    release, err := v.locks.Acquire(ctx, subjectKey(subject))
    if err != nil {
        return err
    }
    defer release()

    rec, err := v.store.LatestBySubject(ctx, subject)
    if err != nil {
        if errors.Is(err, ErrNotFound) {
            return ErrNotFound
        }
        return err
    }
    if rec.Verified {
        // Already verified: do not re-run match logic or touch the
        // attempt counter.
        return ErrAlreadyVerified
    }

    attempts, err := v.store.IncrementAttempts(ctx, rec.ID)
    if err != nil {
        return err
    }
    if attempts > maxOTPAttempts {
        v.log.Warn("otp locked out",
            zap.String("subject", subject),
            zap.Int("attempts", attempts),
        )
        return ErrLockedOut
    }
    if v.now().After(rec.ExpiresAt) {
        return ErrExpired
    }
    if subtle.ConstantTimeCompare([]byte(rec.Code), []byte(code)) != 1 {
        return ErrInvalidCode
    }
    if err := v.store.MarkVerified(ctx, rec.ID); err != nil {
        return err
    }
    v.log.Info("otp verified", zap.String("subject", subject))
    return nil
}

// Resend issues a fresh code unless the previous one was issued
// within the cool-down window, in which case it fails with ErrTooSoon
// and leaves the existing code active.
func (v *Verifier) Resend(ctx context.Context, subject string) (*model.OTPRecord, error) {
    release, err := v.locks.Acquire(ctx, subjectKey(subject))
    if err != nil {
        return nil, err
    }
    defer release()

    last, err := v.store.LatestBySubject(ctx, subject)
    if err != nil && !errors.Is(err, ErrNotFound) {
        return nil, err
    }
    if last != nil && v.now().Sub(last.CreatedAt) < v.cooldown {
        return nil, ErrTooSoon
    }
    return v.issueLocked(ctx, subject)
}
