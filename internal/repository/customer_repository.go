package repository

import (
    "context"
    "database/sql"
    "strings"

    "github.com/iliyamo/restaurant-reservation/internal/model"
)

// CustomerRepo reads returning-guest profiles maintained by the back
// office.  It implements booking.CustomerStore.
type CustomerRepo struct {
    db *sql.DB
}

// NewCustomerRepo returns a CustomerRepo bound to the given database.
func NewCustomerRepo(db *sql.DB) *CustomerRepo { return &CustomerRepo{db: db} }

// GetByEmail returns the profile for an email address or
// booking.ErrNotFound when the guest has no profile.
func (r *CustomerRepo) GetByEmail(ctx context.Context, email string) (*model.CustomerProfile, error) {
    const q = `SELECT id, email, is_vip, favorite_table_id, created_at
               FROM customer_profiles
               WHERE LOWER(email) = ?`
    var p model.CustomerProfile
    var favorite sql.NullString
    err := r.db.QueryRowContext(ctx, q, strings.ToLower(email)).Scan(
        &p.ID, &p.Email, &p.IsVip, &favorite, &p.CreatedAt,
    )
    if err != nil {
        return nil, notFound(err)
    }
    p.FavoriteTableID = favorite.String
    return &p, nil
}
