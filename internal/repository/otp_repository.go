package repository

import (
    "context"
    "database/sql"

    "github.com/iliyamo/restaurant-reservation/internal/model"
)

// OTPRepo persists one-time verification codes.  It implements
// booking.OTPStore.  The verifier already serializes all calls for a
// subject, but IncrementAttempts is still an atomic UPDATE so the
// counter stays correct even if a second process shares the table.
type OTPRepo struct {
    db *sql.DB
}

// NewOTPRepo returns an OTPRepo bound to the given database.
func NewOTPRepo(db *sql.DB) *OTPRepo { return &OTPRepo{db: db} }

// Create inserts a new OTP record and populates its generated ID and
// CreatedAt.
func (r *OTPRepo) Create(ctx context.Context, rec *model.OTPRecord) error {
    const q = `INSERT INTO otp_verifications (subject, code, expires_at)
               VALUES (?, ?, ?)`
    result, err := r.db.ExecContext(ctx, q,
        rec.Subject, rec.Code, rec.ExpiresAt.UTC().Format("2006-01-02 15:04:05"))
    if err != nil {
        return err
    }
    id, err := result.LastInsertId()
    if err != nil {
        return err
    }
    rec.ID = uint64(id)
    const sel = `SELECT created_at FROM otp_verifications WHERE id = ?`
    return r.db.QueryRowContext(ctx, sel, rec.ID).Scan(&rec.CreatedAt)
}

// LatestBySubject returns the most recent non-superseded record for
// the subject or booking.ErrNotFound.
func (r *OTPRepo) LatestBySubject(ctx context.Context, subject string) (*model.OTPRecord, error) {
    const q = `SELECT id, subject, code, expires_at, attempts, verified, superseded, created_at
               FROM otp_verifications
               WHERE subject = ? AND superseded = 0
               ORDER BY created_at DESC, id DESC
               LIMIT 1`
    var rec model.OTPRecord
    err := r.db.QueryRowContext(ctx, q, subject).Scan(
        &rec.ID, &rec.Subject, &rec.Code, &rec.ExpiresAt,
        &rec.Attempts, &rec.Verified, &rec.Superseded, &rec.CreatedAt,
    )
    if err != nil {
        return nil, notFound(err)
    }
    return &rec, nil
}

// Supersede invalidates every unverified record for the subject so
// that a newly issued code is the only active one.
func (r *OTPRepo) Supersede(ctx context.Context, subject string) error {
    const q = `UPDATE otp_verifications SET superseded = 1
               WHERE subject = ? AND verified = 0 AND superseded = 0`
    _, err := r.db.ExecContext(ctx, q, subject)
    return err
}

// IncrementAttempts bumps the attempt counter in a single UPDATE and
// reads the new value back.
func (r *OTPRepo) IncrementAttempts(ctx context.Context, id uint64) (int, error) {
    if _, err := r.db.ExecContext(ctx,
        `UPDATE otp_verifications SET attempts = attempts + 1 WHERE id = ?`, id); err != nil {
        return 0, err
    }
    var attempts int
    err := r.db.QueryRowContext(ctx,
        `SELECT attempts FROM otp_verifications WHERE id = ?`, id).Scan(&attempts)
    if err != nil {
        return 0, notFound(err)
    }
    return attempts, nil
}

// MarkVerified marks the record as successfully verified.
func (r *OTPRepo) MarkVerified(ctx context.Context, id uint64) error {
    _, err := r.db.ExecContext(ctx,
        `UPDATE otp_verifications SET verified = 1 WHERE id = ?`, id)
    return err
}
