package repository

import (
    "context"
    "database/sql"

    "github.com/iliyamo/restaurant-reservation/internal/model"
)

// TableRepo reads the static table inventory.  It implements
// booking.TableStore.  Tables live in restaurant_tables, grouped by
// floor plan; allocation only ever sees tables whose floor plan is
// active.
type TableRepo struct {
    db *sql.DB
}

// NewTableRepo returns a TableRepo bound to the given database.
func NewTableRepo(db *sql.DB) *TableRepo { return &TableRepo{db: db} }

const tableColumns = `t.id, t.floor_plan_id, t.table_number, t.capacity,
       t.min_capacity, t.shape, t.is_vip, t.is_available, t.created_at`

// ListSuitable returns available tables whose capacity range accepts
// the party size.  Ordering by capacity then table number gives the
// allocator a stable smallest-first sequence.
func (r *TableRepo) ListSuitable(ctx context.Context, partySize int) ([]model.Table, error) {
    const q = `SELECT ` + tableColumns + `
               FROM restaurant_tables t
               JOIN floor_plans f ON f.id = t.floor_plan_id
               WHERE t.is_available = 1
                 AND f.is_active = 1
                 AND t.min_capacity <= ?
                 AND t.capacity >= ?
               ORDER BY t.capacity, t.table_number, t.id`
    rows, err := r.db.QueryContext(ctx, q, partySize, partySize)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    tables := make([]model.Table, 0)
    for rows.Next() {
        var t model.Table
        if err := rows.Scan(&t.ID, &t.FloorPlanID, &t.TableNumber, &t.Capacity,
            &t.MinCapacity, &t.Shape, &t.IsVip, &t.IsAvailable, &t.CreatedAt); err != nil {
            return nil, err
        }
        tables = append(tables, t)
    }
    return tables, rows.Err()
}

// GetByID returns a single table or booking.ErrNotFound.
func (r *TableRepo) GetByID(ctx context.Context, id string) (*model.Table, error) {
    const q = `SELECT ` + tableColumns + ` FROM restaurant_tables t WHERE t.id = ?`
    var t model.Table
    err := r.db.QueryRowContext(ctx, q, id).Scan(&t.ID, &t.FloorPlanID, &t.TableNumber,
        &t.Capacity, &t.MinCapacity, &t.Shape, &t.IsVip, &t.IsAvailable, &t.CreatedAt)
    if err != nil {
        return nil, notFound(err)
    }
    return &t, nil
}
