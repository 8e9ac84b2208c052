package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/restaurant-reservation/internal/booking"
	"github.com/iliyamo/restaurant-reservation/internal/model"
	"github.com/iliyamo/restaurant-reservation/internal/repository"
)

// StaffHandler serves the authenticated back-office surface: lifecycle
// transitions, table assignment (auto and manual) and floor views.
// Methods assume the JWT middleware has already verified a staff or
// admin role.
type StaffHandler struct {
	Ledger       *booking.Ledger
	Allocator    *booking.Allocator
	Reservations *repository.ReservationRepo
	Assignments  *repository.AssignmentRepo
	Settings     *repository.SettingsRepo
	Log          *zap.Logger
}

// NewStaffHandler constructs a StaffHandler.  All dependencies must be
// non-nil except the logger, which defaults to a no-op.
func NewStaffHandler(ledger *booking.Ledger, allocator *booking.Allocator, reservations *repository.ReservationRepo, assignments *repository.AssignmentRepo, settings *repository.SettingsRepo, log *zap.Logger) *StaffHandler {
	if ledger == nil || allocator == nil || reservations == nil || assignments == nil || settings == nil {
		panic("nil dependency passed to NewStaffHandler")
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &StaffHandler{Ledger: ledger, Allocator: allocator, Reservations: reservations, Assignments: assignments, Settings: settings, Log: log}
}

// UpdateStatus handles POST /v1/staff/reservations/:id/status.  The
// body carries the target status; disallowed transitions return 409.
func (h *StaffHandler) UpdateStatus(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "reservation id is required"})
	}
	var body struct {
		Status string `json:"status"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if body.Status == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "status is required"})
	}
	r, err := h.Ledger.UpdateStatus(c.Request().Context(), id, body.Status)
	if err != nil {
		status := httpStatus(err)
		return c.JSON(status, echo.Map{"error": publicMessage(err, status)})
	}
	return c.JSON(http.StatusOK, echo.Map{"reservation": viewOf(r)})
}

// AssignTable handles POST /v1/staff/tables/assign.  Without a
// table_id the allocator picks one; with it the named table is
// assigned after the same suitability and overlap checks.
func (h *StaffHandler) AssignTable(c echo.Context) error {
	var body struct {
		ReservationID string `json:"reservation_id"`
		TableID       string `json:"table_id"`
		Notes         string `json:"notes"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if body.ReservationID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "reservation_id is required"})
	}
	ctx := c.Request().Context()
	settings, err := h.Settings.Get(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	var assignment *model.TableAssignment
	if body.TableID == "" {
		assignment, err = h.Allocator.AutoAssign(ctx, body.ReservationID, settings)
	} else {
		assignment, err = h.Allocator.Assign(ctx, body.ReservationID, body.TableID, body.Notes, settings)
	}
	if err != nil {
		status := httpStatus(err)
		return c.JSON(status, echo.Map{"error": publicMessage(err, status)})
	}
	return c.JSON(http.StatusCreated, echo.Map{"assignment": assignment})
}

// Unassign handles DELETE /v1/staff/assignments/:id.
func (h *StaffHandler) Unassign(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "assignment id is required"})
	}
	if err := h.Allocator.Unassign(c.Request().Context(), id); err != nil {
		status := httpStatus(err)
		return c.JSON(status, echo.Map{"error": publicMessage(err, status)})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "assignment removed"})
}

// TableAvailability handles GET /v1/staff/tables/availability.  It
// returns the free tables for one slot and party size, in the same
// order the auto-assigner would consider them.
func (h *StaffHandler) TableAvailability(c echo.Context) error {
	date, tm := c.QueryParam("date"), c.QueryParam("time")
	if date == "" || tm == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "date and time query parameters are required"})
	}
	partySize := 1
	if raw := c.QueryParam("party_size"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "party_size must be a positive integer"})
		}
		partySize = n
	}
	ctx := c.Request().Context()
	settings, err := h.Settings.Get(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	tables, err := h.Allocator.FindCandidates(ctx, date, tm, partySize, settings.ReservationDurationMinutes)
	if err != nil {
		status := httpStatus(err)
		return c.JSON(status, echo.Map{"error": publicMessage(err, status)})
	}
	return c.JSON(http.StatusOK, echo.Map{"tables": tables})
}

// ReservationsByDate handles GET /v1/staff/reservations?date=YYYY-MM-DD,
// the booking list for one service day in slot order.
func (h *StaffHandler) ReservationsByDate(c echo.Context) error {
	date := c.QueryParam("date")
	if date == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "date query parameter is required"})
	}
	reservations, err := h.Reservations.ListByDate(c.Request().Context(), date)
	if err != nil {
		status := httpStatus(err)
		return c.JSON(status, echo.Map{"error": publicMessage(err, status)})
	}
	views := make([]reservationView, 0, len(reservations))
	for i := range reservations {
		views = append(views, viewOf(&reservations[i]))
	}
	return c.JSON(http.StatusOK, echo.Map{"reservations": views})
}

// AssignmentsByDate handles GET /v1/staff/assignments?date=YYYY-MM-DD,
// the floor view for one service day.
func (h *StaffHandler) AssignmentsByDate(c echo.Context) error {
	date := c.QueryParam("date")
	if date == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "date query parameter is required"})
	}
	details, err := h.Assignments.ListDetailsByDate(c.Request().Context(), date)
	if err != nil {
		status := httpStatus(err)
		return c.JSON(status, echo.Map{"error": publicMessage(err, status)})
	}
	return c.JSON(http.StatusOK, echo.Map{"assignments": details})
}
