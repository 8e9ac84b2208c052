package booking

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/iliyamo/restaurant-reservation/internal/lock"
	"github.com/iliyamo/restaurant-reservation/internal/model"
)

// fixedNow anchors the booking window checks: dates in the tests stay
// inside [today, today+90] relative to this instant.
var fixedNow = time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)

func newTestLedger(store *memReservationStore, assignments *memAssignmentStore) *Ledger {
	l := NewLedger(store, assignments, NewCodeGenerator(store), lock.New(time.Second), zap.NewNop())
	l.now = func() time.Time { return fixedNow }
	return l
}

func validRequest() CreateRequest {
	return CreateRequest{
		FirstName: "Arta",
		LastName:  "Krasniqi",
		Email:     "Arta.Krasniqi@Example.com",
		Phone:     "+38344123456",
		Date:      "2026-09-10",
		Time:      "18:00",
		PartySize: 4,
	}
}

func TestCreateHappyPath(t *testing.T) {
	store := newMemReservationStore()
	l := newTestLedger(store, newMemAssignmentStore())

	r, err := l.Create(context.Background(), validRequest(), testSettings())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if r.Status != model.StatusPending {
		t.Fatalf("status = %s, want pending", r.Status)
	}
	if r.EmailVerified {
		t.Fatal("new reservation must not be verified")
	}
	if r.Email != "arta.krasniqi@example.com" {
		t.Fatalf("email not lower-cased: %s", r.Email)
	}
	if len(r.VerificationCode) != codeLength {
		t.Fatalf("verification code %q has wrong length", r.VerificationCode)
	}
	if r.PreferredLocale != "sq" {
		t.Fatalf("default locale = %s, want sq", r.PreferredLocale)
	}
	if _, err := store.GetByID(context.Background(), r.ID); err != nil {
		t.Fatalf("reservation not persisted: %v", err)
	}
}

func TestCreateValidation(t *testing.T) {
	l := newTestLedger(newMemReservationStore(), newMemAssignmentStore())
	ctx := context.Background()
	settings := testSettings()

	cases := []struct {
		name   string
		mut    func(*CreateRequest)
		sentry error
	}{
		{"missing name", func(r *CreateRequest) { r.FirstName = " " }, ErrValidation},
		{"missing email", func(r *CreateRequest) { r.Email = "" }, ErrValidation},
		{"party too small", func(r *CreateRequest) { r.PartySize = 0 }, ErrValidation},
		{"party too large", func(r *CreateRequest) { r.PartySize = 21 }, ErrValidation},
		{"malformed date", func(r *CreateRequest) { r.Date = "10/09/2026" }, ErrValidation},
		{"past date", func(r *CreateRequest) { r.Date = "2026-08-30" }, ErrPolicyViolation},
		{"beyond advance window", func(r *CreateRequest) { r.Date = "2026-12-15" }, ErrValidation},
		{"off-grid time", func(r *CreateRequest) { r.Time = "18:15" }, ErrValidation},
		{"after last seating", func(r *CreateRequest) { r.Time = "22:00" }, ErrValidation},
	}
	for _, c := range cases {
		req := validRequest()
		c.mut(&req)
		if _, err := l.Create(ctx, req, settings); !errors.Is(err, c.sentry) {
			t.Errorf("%s: got %v, want %v", c.name, err, c.sentry)
		}
	}
}

func TestCreatePendingCountsAgainstAdmission(t *testing.T) {
	l := newTestLedger(newMemReservationStore(), newMemAssignmentStore())
	ctx := context.Background()
	settings := testSettings() // capacity 10

	req := validRequest()
	req.PartySize = 6
	if _, err := l.Create(ctx, req, settings); err != nil {
		t.Fatalf("first create: %v", err)
	}
	// The first booking is still pending, but its six covers are
	// already committed for admission purposes.
	req.PartySize = 5
	if _, err := l.Create(ctx, req, settings); !errors.Is(err, ErrCapacityExceeded) {
		t.Fatalf("second create: got %v, want ErrCapacityExceeded", err)
	}
	req.PartySize = 4
	if _, err := l.Create(ctx, req, settings); err != nil {
		t.Fatalf("third create within remaining capacity: %v", err)
	}
}

func TestCreateConcurrentNeverOverbooks(t *testing.T) {
	store := newMemReservationStore()
	store.createDelay = time.Millisecond // widen the check-then-act window
	l := newTestLedger(store, newMemAssignmentStore())
	settings := testSettings() // capacity 10

	const workers = 10
	var wg sync.WaitGroup
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			req := validRequest()
			req.PartySize = 2
			_, errs[i] = l.Create(context.Background(), req, settings)
		}(i)
	}
	wg.Wait()

	admitted, rejected := 0, 0
	for _, err := range errs {
		switch {
		case err == nil:
			admitted++
		case errors.Is(err, ErrCapacityExceeded):
			rejected++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if admitted != 5 || rejected != 5 {
		t.Fatalf("admitted=%d rejected=%d, want 5/5", admitted, rejected)
	}
	booked, _ := store.BookedCapacity(context.Background(), "2026-09-10", "18:00", admissionStatuses)
	if booked != settings.MaxCapacity {
		t.Fatalf("booked=%d, want exactly %d", booked, settings.MaxCapacity)
	}
}

func TestCreateDisjointSlotsDoNotContend(t *testing.T) {
	l := newTestLedger(newMemReservationStore(), newMemAssignmentStore())
	settings := testSettings()

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, tm := range []string{"18:00", "19:00"} {
		wg.Add(1)
		go func(i int, tm string) {
			defer wg.Done()
			req := validRequest()
			req.Time = tm
			req.PartySize = 10 // fills each slot completely
			_, errs[i] = l.Create(context.Background(), req, settings)
		}(i, tm)
	}
	wg.Wait()
	for i, err := range errs {
		if err != nil {
			t.Fatalf("slot %d: %v", i, err)
		}
	}
}

func TestCreateBusySlotLock(t *testing.T) {
	store := newMemReservationStore()
	locks := lock.New(30 * time.Millisecond)
	l := NewLedger(store, newMemAssignmentStore(), NewCodeGenerator(store), locks, zap.NewNop())
	l.now = func() time.Time { return fixedNow }

	release, err := locks.Acquire(context.Background(), slotKey("2026-09-10", "18:00"))
	if err != nil {
		t.Fatalf("pre-acquire: %v", err)
	}
	defer release()

	if _, err := l.Create(context.Background(), validRequest(), testSettings()); !errors.Is(err, lock.ErrBusy) {
		t.Fatalf("got %v, want lock.ErrBusy", err)
	}
}

func TestCancelFreesCapacity(t *testing.T) {
	store := newMemReservationStore()
	l := newTestLedger(store, newMemAssignmentStore())
	ctx := context.Background()
	settings := testSettings()

	req := validRequest()
	req.PartySize = 10
	r, err := l.Create(ctx, req, settings)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	// Slot is full.
	if _, err := l.Create(ctx, validRequest(), settings); !errors.Is(err, ErrCapacityExceeded) {
		t.Fatalf("full slot: got %v", err)
	}

	cancelled, err := l.CancelByCode(ctx, r.VerificationCode, r.Email, settings)
	if err != nil {
		t.Fatalf("CancelByCode: %v", err)
	}
	if cancelled.Status != model.StatusCancelled {
		t.Fatalf("status = %s, want cancelled", cancelled.Status)
	}
	// Freed capacity is immediately admissible.
	if _, err := l.Create(ctx, validRequest(), settings); err != nil {
		t.Fatalf("create after cancel: %v", err)
	}
}

func TestCancelPolicy(t *testing.T) {
	store := newMemReservationStore()
	l := newTestLedger(store, newMemAssignmentStore())
	ctx := context.Background()
	settings := testSettings() // 2 hours notice

	r, err := l.Create(ctx, validRequest(), settings)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	// 90 minutes before start: inside the notice window.
	l.now = func() time.Time { return time.Date(2026, 9, 10, 16, 30, 0, 0, time.UTC) }
	if _, err := l.CancelByCode(ctx, r.VerificationCode, r.Email, settings); !errors.Is(err, ErrPolicyViolation) {
		t.Fatalf("late cancel: got %v, want ErrPolicyViolation", err)
	}

	// Exactly at the deadline still fails; one minute earlier passes.
	l.now = func() time.Time { return time.Date(2026, 9, 10, 16, 0, 0, 0, time.UTC) }
	if _, err := l.CancelByCode(ctx, r.VerificationCode, r.Email, settings); !errors.Is(err, ErrPolicyViolation) {
		t.Fatalf("deadline cancel: got %v, want ErrPolicyViolation", err)
	}
	l.now = func() time.Time { return time.Date(2026, 9, 10, 15, 59, 0, 0, time.UTC) }
	if _, err := l.CancelByCode(ctx, r.VerificationCode, r.Email, settings); err != nil {
		t.Fatalf("timely cancel: %v", err)
	}

	// A second cancel hits the terminal-state guard.
	if _, err := l.CancelByCode(ctx, r.VerificationCode, r.Email, settings); !errors.Is(err, ErrPolicyViolation) {
		t.Fatalf("double cancel: got %v, want ErrPolicyViolation", err)
	}
}

func TestCancelReleasesAssignments(t *testing.T) {
	store := newMemReservationStore()
	assignments := newMemAssignmentStore()
	l := newTestLedger(store, assignments)
	ctx := context.Background()

	r, err := l.Create(ctx, validRequest(), testSettings())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	_ = assignments.Create(ctx, &model.TableAssignment{ID: "a1", ReservationID: r.ID, TableID: "t1"})
	assignments.track(r.ID, r.Date, r.Time)

	if _, err := l.CancelByCode(ctx, r.VerificationCode, r.Email, testSettings()); err != nil {
		t.Fatalf("CancelByCode: %v", err)
	}
	if n := assignments.count(); n != 0 {
		t.Fatalf("%d assignments left after cancel, want 0", n)
	}
}

func TestStaffUpdateStatus(t *testing.T) {
	store := newMemReservationStore()
	l := newTestLedger(store, newMemAssignmentStore())
	ctx := context.Background()

	r, err := l.Create(ctx, validRequest(), testSettings())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	// pending → seated skips confirmation and must be rejected.
	if _, err := l.UpdateStatus(ctx, r.ID, model.StatusSeated); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("pending→seated: got %v, want ErrInvalidTransition", err)
	}

	for _, next := range []string{model.StatusConfirmed, model.StatusSeated, model.StatusCompleted} {
		updated, err := l.UpdateStatus(ctx, r.ID, next)
		if err != nil {
			t.Fatalf("UpdateStatus(%s): %v", next, err)
		}
		if updated.Status != next {
			t.Fatalf("status = %s, want %s", updated.Status, next)
		}
	}

	// Completed is terminal.
	if _, err := l.UpdateStatus(ctx, r.ID, model.StatusCancelled); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("completed→cancelled: got %v, want ErrInvalidTransition", err)
	}

	if _, err := l.UpdateStatus(ctx, "missing", model.StatusConfirmed); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing id: got %v, want ErrNotFound", err)
	}
}

func TestMarkVerifiedConfirmsOnce(t *testing.T) {
	store := newMemReservationStore()
	l := newTestLedger(store, newMemAssignmentStore())
	ctx := context.Background()

	r, err := l.Create(ctx, validRequest(), testSettings())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	confirmed, err := l.MarkVerified(ctx, r.ID)
	if err != nil {
		t.Fatalf("MarkVerified: %v", err)
	}
	if confirmed.Status != model.StatusConfirmed || !confirmed.EmailVerified {
		t.Fatalf("got status=%s verified=%v", confirmed.Status, confirmed.EmailVerified)
	}

	// Idempotent second call.
	again, err := l.MarkVerified(ctx, r.ID)
	if err != nil {
		t.Fatalf("second MarkVerified: %v", err)
	}
	if again.Status != model.StatusConfirmed {
		t.Fatalf("second call status = %s", again.Status)
	}

	// Once seated, verification can no longer arrive.
	if _, err := l.UpdateStatus(ctx, r.ID, model.StatusSeated); err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	store.mu.Lock()
	store.reservations[r.ID].EmailVerified = false // stale unverified row
	store.mu.Unlock()
	if _, err := l.MarkVerified(ctx, r.ID); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("verify after seated: got %v, want ErrInvalidTransition", err)
	}
}

func TestLookup(t *testing.T) {
	store := newMemReservationStore()
	l := newTestLedger(store, newMemAssignmentStore())
	ctx := context.Background()

	r, err := l.Create(ctx, validRequest(), testSettings())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	// Case-insensitive on both halves of the pair.
	got, err := l.Lookup(ctx, r.VerificationCode, "ARTA.KRASNIQI@example.com")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if got.ID != r.ID {
		t.Fatalf("Lookup returned %s, want %s", got.ID, r.ID)
	}

	if _, err := l.Lookup(ctx, r.VerificationCode, "other@example.com"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("wrong email: got %v, want ErrNotFound", err)
	}
	if _, err := l.Lookup(ctx, "", r.Email); !errors.Is(err, ErrValidation) {
		t.Fatalf("empty code: got %v, want ErrValidation", err)
	}
}
