package model

import "time"

// FloorPlan groups tables into a named dining area (main room, terrace,
// private room).  DisplayOrder controls how floor plans are listed in
// the back office.
//
// Fields:
//  ID           – UUID primary key.
//  Name         – human readable name of the area.
//  DisplayOrder – sort key for listings.
//  IsActive     – inactive floor plans are hidden from allocation.
//  CreatedAt    – creation timestamp.
type FloorPlan struct {
    ID           string    // floor_plans.id (uuid)
    Name         string    // floor_plans.name
    DisplayOrder int       // floor_plans.display_order
    IsActive     bool      // floor_plans.is_active
    CreatedAt    time.Time // floor_plans.created_at
}

// Table describes a physical table on a floor plan.  A table can seat
// parties between MinCapacity and Capacity covers.  VIP tables are
// preferred for VIP customers during auto assignment.  IsAvailable is a
// static flag managed by staff (broken or reserved-for-walk-in tables
// are simply excluded from allocation).
//
// Fields:
//  ID          – UUID primary key.
//  FloorPlanID – floor plan the table belongs to.
//  TableNumber – staff-facing number within the floor plan.
//  Capacity    – maximum covers the table seats.
//  MinCapacity – smallest party the table is offered to.
//  Shape       – physical shape (square, round, rectangle, booth).
//  IsVip       – whether this is a VIP table.
//  IsAvailable – whether the table participates in allocation.
//  CreatedAt   – creation timestamp.
type Table struct {
    ID          string    // restaurant_tables.id (uuid)
    FloorPlanID string    // restaurant_tables.floor_plan_id
    TableNumber int       // restaurant_tables.table_number
    Capacity    int       // restaurant_tables.capacity
    MinCapacity int       // restaurant_tables.min_capacity
    Shape       string    // restaurant_tables.shape
    IsVip       bool      // restaurant_tables.is_vip
    IsAvailable bool      // restaurant_tables.is_available
    CreatedAt   time.Time // restaurant_tables.created_at
}

// TableAssignment links a reservation to the physical table it will be
// seated at.  At most one assignment may exist per table per
// overlapping reservation window; the allocator enforces this under a
// per-table lock.
//
// Fields:
//  ID            – UUID primary key.
//  ReservationID – reservation being seated.
//  TableID       – table assigned to the reservation.
//  Notes         – optional staff note.
//  AssignedAt    – when the assignment was made (UTC).
type TableAssignment struct {
    ID            string    // table_assignments.id (uuid)
    ReservationID string    // table_assignments.reservation_id
    TableID       string    // table_assignments.table_id
    Notes         string    // table_assignments.notes
    AssignedAt    time.Time // table_assignments.assigned_at
}
