package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/restaurant-reservation/internal/booking"
	"github.com/iliyamo/restaurant-reservation/internal/repository"
)

// AvailabilityHandler serves the public slot availability read.  The
// endpoint is cache-friendly: it is a pure read and the router wraps
// it in the Redis response cache.
type AvailabilityHandler struct {
	Calc     *booking.Calculator
	Settings *repository.SettingsRepo
}

// NewAvailabilityHandler constructs an AvailabilityHandler.
func NewAvailabilityHandler(calc *booking.Calculator, settings *repository.SettingsRepo) *AvailabilityHandler {
	if calc == nil || settings == nil {
		panic("nil dependency passed to NewAvailabilityHandler")
	}
	return &AvailabilityHandler{Calc: calc, Settings: settings}
}

// Get handles GET /v1/availability?date=YYYY-MM-DD or
// ?from=...&to=... for a range.  A single date returns one day object;
// a range returns a list of days.
func (h *AvailabilityHandler) Get(c echo.Context) error {
	ctx := c.Request().Context()
	settings, err := h.Settings.Get(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}

	if date := c.QueryParam("date"); date != "" {
		day, err := h.Calc.ForDate(ctx, date, settings)
		if err != nil {
			status := httpStatus(err)
			return c.JSON(status, echo.Map{"error": publicMessage(err, status)})
		}
		return c.JSON(http.StatusOK, day)
	}

	from, to := c.QueryParam("from"), c.QueryParam("to")
	if from == "" || to == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "date or from/to query parameters are required"})
	}
	days, err := h.Calc.ForRange(ctx, from, to, settings)
	if err != nil {
		status := httpStatus(err)
		return c.JSON(status, echo.Map{"error": publicMessage(err, status)})
	}
	return c.JSON(http.StatusOK, echo.Map{"days": days})
}
