// Package router wires the HTTP surface: public guest routes, the
// cached availability read and the JWT-protected staff group.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/restaurant-reservation/internal/config"
	"github.com/iliyamo/restaurant-reservation/internal/handler"
	"github.com/iliyamo/restaurant-reservation/internal/middleware"
)

// RegisterRoutes registers the health check on the provided Echo
// instance.  Load balancers probe this path without authentication.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterGuest registers the public booking flow.  When a Redis
// client is provided the group is rate limited with the token bucket
// and the availability read is wrapped in the response cache; without
// Redis both middlewares degrade to pass-through.
func RegisterGuest(e *echo.Echo, g *handler.GuestHandler, av *handler.AvailabilityHandler, rdb *redis.Client) {
	rl := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)

	pub := e.Group("/v1", rl)
	pub.POST("/reservations", g.Create)
	pub.POST("/reservations/verify-otp", g.VerifyOTP)
	pub.POST("/reservations/resend-otp", g.ResendOTP)
	pub.POST("/reservations/lookup", g.Lookup)
	pub.POST("/reservations/cancel", g.Cancel)

	// Availability is a pure read keyed on the query string, so it
	// gets the short-TTL cache in front of the database.
	cache := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)
	pub.GET("/availability", av.Get, cache)
}

// RegisterStaff registers the back-office endpoints under JWT
// authentication.  Only staff and admin roles pass the middleware.
func RegisterStaff(e *echo.Echo, s *handler.StaffHandler, jwtSecret string) {
	staff := e.Group("/v1/staff")
	staff.Use(middleware.StaffAuth(jwtSecret))
	staff.GET("/reservations", s.ReservationsByDate)
	staff.POST("/reservations/:id/status", s.UpdateStatus)
	staff.POST("/tables/assign", s.AssignTable)
	staff.DELETE("/assignments/:id", s.Unassign)
	staff.GET("/tables/availability", s.TableAvailability)
	staff.GET("/assignments", s.AssignmentsByDate)
}
