package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/restaurant-reservation/internal/booking"
	"github.com/iliyamo/restaurant-reservation/internal/config"
	"github.com/iliyamo/restaurant-reservation/internal/database"
	"github.com/iliyamo/restaurant-reservation/internal/handler"
	"github.com/iliyamo/restaurant-reservation/internal/lock"
	"github.com/iliyamo/restaurant-reservation/internal/notify"
	"github.com/iliyamo/restaurant-reservation/internal/repository"
	"github.com/iliyamo/restaurant-reservation/internal/router"
)

func main() {
	// .env is optional; real deployments set variables directly.
	_ = godotenv.Load()
	cfg := config.Load()

	logger, err := buildLogger(cfg.Env)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		logger.Fatal("database connection failed", zap.Error(err))
	}
	defer func() { _ = db.Close() }()

	// Redis is optional: without it, rate limiting and the
	// availability cache degrade to pass-through.
	rdb := config.NewRedisClient()
	if rdb == nil {
		logger.Warn("redis unavailable, rate limiting and caching disabled")
	}

	locks := lock.New(cfg.LockTimeout)

	reservations := repository.NewReservationRepo(db)
	tables := repository.NewTableRepo(db)
	assignments := repository.NewAssignmentRepo(db)
	otps := repository.NewOTPRepo(db)
	customers := repository.NewCustomerRepo(db)
	settings := repository.NewSettingsRepo(db)

	codes := booking.NewCodeGenerator(reservations)
	ledger := booking.NewLedger(reservations, assignments, codes, locks, logger)
	verifier := booking.NewVerifier(otps, locks, logger)
	calc := booking.NewCalculator(reservations)
	allocator := booking.NewAllocator(tables, assignments, customers, reservations, locks, logger)

	publisher := notify.NewPublisher(cfg.AmqpURL, logger)
	defer publisher.Close()
	go func() {
		if err := notify.StartConsumer(cfg.AmqpURL, logger); err != nil {
			logger.Warn("notification consumer stopped", zap.Error(err))
		}
	}()

	guest := handler.NewGuestHandler(ledger, verifier, settings, publisher, logger)
	availability := handler.NewAvailabilityHandler(calc, settings)
	staff := handler.NewStaffHandler(ledger, allocator, reservations, assignments, settings, logger)

	e := echo.New()
	e.HideBanner = true
	router.RegisterRoutes(e)
	router.RegisterGuest(e, guest, availability, rdb)
	router.RegisterStaff(e, staff, cfg.JWTSecret)

	addr := ":" + cfg.Port
	logger.Info("listening", zap.String("addr", addr), zap.String("env", cfg.Env))
	if err := e.Start(addr); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

// buildLogger picks the zap preset by environment: human-readable in
// dev, JSON elsewhere.
func buildLogger(env string) (*zap.Logger, error) {
	if env == "dev" || env == "development" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
