package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/restaurant-reservation/internal/booking"
	"github.com/iliyamo/restaurant-reservation/internal/model"
	"github.com/iliyamo/restaurant-reservation/internal/notify"
	"github.com/iliyamo/restaurant-reservation/internal/repository"
)

// GuestHandler serves the public, unauthenticated booking flow: create
// a reservation, verify the OTP sent to the guest email, resend it,
// look a reservation up by its public code and cancel it.  Every
// method loads the venue settings fresh; the engines hold no
// configuration between requests.
type GuestHandler struct {
	Ledger   *booking.Ledger
	Verifier *booking.Verifier
	Settings *repository.SettingsRepo
	Notifier *notify.Publisher
	Log      *zap.Logger
}

// NewGuestHandler constructs a GuestHandler.  All dependencies must be
// non-nil except the logger, which defaults to a no-op.
func NewGuestHandler(ledger *booking.Ledger, verifier *booking.Verifier, settings *repository.SettingsRepo, notifier *notify.Publisher, log *zap.Logger) *GuestHandler {
	if ledger == nil || verifier == nil || settings == nil || notifier == nil {
		panic("nil dependency passed to NewGuestHandler")
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &GuestHandler{Ledger: ledger, Verifier: verifier, Settings: settings, Notifier: notifier, Log: log}
}

// reservationView is the JSON shape returned for a reservation.  The
// OTP code is never included; the public verification code is, since
// it doubles as the guest's lookup handle.
type reservationView struct {
	ID               string `json:"id"`
	GuestName        string `json:"guest_name"`
	Email            string `json:"email"`
	Phone            string `json:"phone,omitempty"`
	Date             string `json:"date"`
	Time             string `json:"time"`
	PartySize        int    `json:"party_size"`
	Status           string `json:"status"`
	VerificationCode string `json:"verification_code"`
	EmailVerified    bool   `json:"email_verified"`
	Occasion         string `json:"occasion,omitempty"`
	SpecialRequests  string `json:"special_requests,omitempty"`
}

func viewOf(r *model.Reservation) reservationView {
	return reservationView{
		ID:               r.ID,
		GuestName:        r.FullName(),
		Email:            r.Email,
		Phone:            r.Phone,
		Date:             r.Date,
		Time:             r.Time,
		PartySize:        r.PartySize,
		Status:           r.Status,
		VerificationCode: r.VerificationCode,
		EmailVerified:    r.EmailVerified,
		Occasion:         r.Occasion,
		SpecialRequests:  r.SpecialRequests,
	}
}

// Create handles POST /v1/reservations.  On success it returns 201
// with the pending reservation and dispatches the OTP notification; a
// full slot returns 409 and a contended slot lock returns 503.
func (h *GuestHandler) Create(c echo.Context) error {
	var req booking.CreateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	ctx := c.Request().Context()
	settings, err := h.Settings.Get(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	r, err := h.Ledger.Create(ctx, req, settings)
	if err != nil {
		status := httpStatus(err)
		return c.JSON(status, echo.Map{"error": publicMessage(err, status)})
	}
	otp, err := h.Verifier.Issue(ctx, r.Email)
	if err != nil {
		// The reservation is already persisted; the guest can use
		// resend to get a code.
		h.Log.Warn("otp issue failed after create",
			zap.String("reservation_id", r.ID), zap.Error(err))
	} else {
		_ = h.Notifier.Publish(ctx, notify.Event{
			Kind:             notify.KindOTPIssued,
			ReservationID:    r.ID,
			GuestName:        r.FullName(),
			Email:            r.Email,
			Phone:            r.Phone,
			Date:             r.Date,
			Time:             r.Time,
			PartySize:        r.PartySize,
			VerificationCode: r.VerificationCode,
			OTPCode:          otp.Code,
			OTPExpiresAt:     otp.ExpiresAt.Format(time.RFC3339),
			Locale:           r.PreferredLocale,
		})
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"reservation": viewOf(r),
		"message":     "verification code sent to your email",
	})
}

// VerifyOTP handles POST /v1/reservations/verify-otp.  The body names
// the reservation and the 6-digit code; a correct code confirms the
// reservation.
func (h *GuestHandler) VerifyOTP(c echo.Context) error {
	var body struct {
		ReservationID string `json:"reservation_id"`
		OTPCode       string `json:"otp_code"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if body.ReservationID == "" || body.OTPCode == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "reservation_id and otp_code are required"})
	}
	ctx := c.Request().Context()
	r, err := h.Ledger.GetByID(ctx, body.ReservationID)
	if err != nil {
		status := httpStatus(err)
		return c.JSON(status, echo.Map{"error": publicMessage(err, status)})
	}
	if err := h.Verifier.Verify(ctx, r.Email, body.OTPCode); err != nil {
		if errors.Is(err, booking.ErrAlreadyVerified) && r.EmailVerified {
			return c.JSON(http.StatusOK, echo.Map{"reservation": viewOf(r)})
		}
		status := httpStatus(err)
		return c.JSON(status, echo.Map{"error": publicMessage(err, status)})
	}
	confirmed, err := h.Ledger.MarkVerified(ctx, r.ID)
	if err != nil {
		status := httpStatus(err)
		return c.JSON(status, echo.Map{"error": publicMessage(err, status)})
	}
	_ = h.Notifier.Publish(ctx, notify.Event{
		Kind:             notify.KindReservationConfirmed,
		ReservationID:    confirmed.ID,
		GuestName:        confirmed.FullName(),
		Email:            confirmed.Email,
		Phone:            confirmed.Phone,
		Date:             confirmed.Date,
		Time:             confirmed.Time,
		PartySize:        confirmed.PartySize,
		VerificationCode: confirmed.VerificationCode,
		Locale:           confirmed.PreferredLocale,
	})
	return c.JSON(http.StatusOK, echo.Map{"reservation": viewOf(confirmed)})
}

// ResendOTP handles POST /v1/reservations/resend-otp.  Resending is
// refused inside the cool-down window (429) and once the reservation
// is already verified (409).
func (h *GuestHandler) ResendOTP(c echo.Context) error {
	var body struct {
		ReservationID string `json:"reservation_id"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if body.ReservationID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "reservation_id is required"})
	}
	ctx := c.Request().Context()
	r, err := h.Ledger.GetByID(ctx, body.ReservationID)
	if err != nil {
		status := httpStatus(err)
		return c.JSON(status, echo.Map{"error": publicMessage(err, status)})
	}
	if r.EmailVerified {
		return c.JSON(http.StatusConflict, echo.Map{"error": "reservation is already verified"})
	}
	otp, err := h.Verifier.Resend(ctx, r.Email)
	if err != nil {
		status := httpStatus(err)
		return c.JSON(status, echo.Map{"error": publicMessage(err, status)})
	}
	_ = h.Notifier.Publish(ctx, notify.Event{
		Kind:          notify.KindOTPIssued,
		ReservationID: r.ID,
		GuestName:     r.FullName(),
		Email:         r.Email,
		Phone:         r.Phone,
		Date:          r.Date,
		Time:          r.Time,
		PartySize:     r.PartySize,
		OTPCode:       otp.Code,
		OTPExpiresAt:  otp.ExpiresAt.Format(time.RFC3339),
		Locale:        r.PreferredLocale,
	})
	return c.JSON(http.StatusOK, echo.Map{"message": "verification code resent"})
}

// Lookup handles POST /v1/reservations/lookup.  A body is used rather
// than query parameters so the guest email never lands in access logs.
func (h *GuestHandler) Lookup(c echo.Context) error {
	var body struct {
		VerificationCode string `json:"verification_code"`
		Email            string `json:"email"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	r, err := h.Ledger.Lookup(c.Request().Context(), body.VerificationCode, body.Email)
	if err != nil {
		status := httpStatus(err)
		return c.JSON(status, echo.Map{"error": publicMessage(err, status)})
	}
	return c.JSON(http.StatusOK, echo.Map{"reservation": viewOf(r)})
}

// Cancel handles POST /v1/reservations/cancel.  The guest identifies
// the reservation with the same code+email pair used for lookup; the
// cancellation policy is enforced by the ledger.
func (h *GuestHandler) Cancel(c echo.Context) error {
	var body struct {
		VerificationCode string `json:"verification_code"`
		Email            string `json:"email"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	ctx := c.Request().Context()
	settings, err := h.Settings.Get(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	r, err := h.Ledger.CancelByCode(ctx, body.VerificationCode, body.Email, settings)
	if err != nil {
		status := httpStatus(err)
		return c.JSON(status, echo.Map{"error": publicMessage(err, status)})
	}
	_ = h.Notifier.Publish(ctx, notify.Event{
		Kind:          notify.KindReservationCancelled,
		ReservationID: r.ID,
		GuestName:     r.FullName(),
		Email:         r.Email,
		Phone:         r.Phone,
		Date:          r.Date,
		Time:          r.Time,
		PartySize:     r.PartySize,
		Locale:        r.PreferredLocale,
	})
	return c.JSON(http.StatusOK, echo.Map{"reservation": viewOf(r)})
}
