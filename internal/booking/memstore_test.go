package booking

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/iliyamo/restaurant-reservation/internal/model"
)

// In-memory store implementations used across the engine tests.  All
// of them are safe for concurrent use; the concurrency tests hammer
// them from many goroutines.

type memReservationStore struct {
	mu           sync.Mutex
	reservations map[string]*model.Reservation
	createDelay  time.Duration // optional, widens race windows in tests
}

func newMemReservationStore() *memReservationStore {
	return &memReservationStore{reservations: make(map[string]*model.Reservation)}
}

func (s *memReservationStore) Create(ctx context.Context, r *model.Reservation) error {
	if s.createDelay > 0 {
		time.Sleep(s.createDelay)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *r
	cp.CreatedAt = time.Now().UTC()
	cp.UpdatedAt = cp.CreatedAt
	s.reservations[r.ID] = &cp
	return nil
}

func (s *memReservationStore) GetByID(ctx context.Context, id string) (*model.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.reservations[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *r
	return &cp, nil
}

func (s *memReservationStore) GetByCodeAndEmail(ctx context.Context, code, email string) (*model.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.reservations {
		if r.VerificationCode == code && strings.EqualFold(r.Email, email) {
			cp := *r
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (s *memReservationStore) UpdateStatus(ctx context.Context, id, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.reservations[id]
	if !ok {
		return ErrNotFound
	}
	r.Status = status
	r.UpdatedAt = time.Now().UTC()
	return nil
}

func (s *memReservationStore) MarkVerified(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.reservations[id]
	if !ok {
		return ErrNotFound
	}
	r.EmailVerified = true
	return nil
}

func (s *memReservationStore) BookedCapacity(ctx context.Context, date, tm string, statuses []string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := 0
	for _, r := range s.reservations {
		if r.Date != date || r.Time != tm {
			continue
		}
		for _, st := range statuses {
			if r.Status == st {
				total += r.PartySize
				break
			}
		}
	}
	return total, nil
}

func (s *memReservationStore) CodeExists(ctx context.Context, code string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.reservations {
		if r.VerificationCode == code {
			return true, nil
		}
	}
	return false, nil
}

type memTableStore struct {
	mu     sync.Mutex
	tables []model.Table
}

func (s *memTableStore) ListSuitable(ctx context.Context, partySize int) ([]model.Table, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Table
	for _, t := range s.tables {
		if t.IsAvailable && partySize >= t.MinCapacity && partySize <= t.Capacity {
			out = append(out, t)
		}
	}
	return out, nil
}

func (s *memTableStore) GetByID(ctx context.Context, id string) (*model.Table, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.tables {
		if t.ID == id {
			cp := t
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

type memAssignmentStore struct {
	mu          sync.Mutex
	assignments map[string]*model.TableAssignment
	// reservationSlot lets ListWindows project assignments onto the
	// slot of their reservation without a join.
	reservationSlot map[string][2]string // reservation id -> {date, time}
}

func newMemAssignmentStore() *memAssignmentStore {
	return &memAssignmentStore{
		assignments:     make(map[string]*model.TableAssignment),
		reservationSlot: make(map[string][2]string),
	}
}

func (s *memAssignmentStore) track(reservationID, date, tm string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reservationSlot[reservationID] = [2]string{date, tm}
}

func (s *memAssignmentStore) Create(ctx context.Context, a *model.TableAssignment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *a
	cp.AssignedAt = time.Now().UTC()
	s.assignments[a.ID] = &cp
	return nil
}

func (s *memAssignmentStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.assignments[id]; !ok {
		return ErrNotFound
	}
	delete(s.assignments, id)
	return nil
}

func (s *memAssignmentStore) DeleteByReservation(ctx context.Context, reservationID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for id, a := range s.assignments {
		if a.ReservationID == reservationID {
			delete(s.assignments, id)
			n++
		}
	}
	return n, nil
}

func (s *memAssignmentStore) ListWindows(ctx context.Context, date string) ([]AssignmentWindow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []AssignmentWindow
	for _, a := range s.assignments {
		slot, ok := s.reservationSlot[a.ReservationID]
		if !ok || slot[0] != date {
			continue
		}
		out = append(out, AssignmentWindow{
			AssignmentID:  a.ID,
			TableID:       a.TableID,
			ReservationID: a.ReservationID,
			Date:          slot[0],
			Time:          slot[1],
		})
	}
	return out, nil
}

func (s *memAssignmentStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.assignments)
}

type memCustomerStore struct {
	mu       sync.Mutex
	profiles map[string]*model.CustomerProfile
}

func newMemCustomerStore() *memCustomerStore {
	return &memCustomerStore{profiles: make(map[string]*model.CustomerProfile)}
}

func (s *memCustomerStore) GetByEmail(ctx context.Context, email string) (*model.CustomerProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.profiles[strings.ToLower(email)]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *p
	return &cp, nil
}

type memOTPStore struct {
	mu      sync.Mutex
	nextID  uint64
	records []*model.OTPRecord
}

func newMemOTPStore() *memOTPStore { return &memOTPStore{} }

func (s *memOTPStore) Create(ctx context.Context, rec *model.OTPRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	rec.ID = s.nextID
	if rec.CreatedAt.IsZero() {
		// Stamp with the tests' fixed clock so cool-down checks that
		// compare against the verifier's injected now() stay in sync.
		rec.CreatedAt = fixedNow
	}
	cp := *rec
	s.records = append(s.records, &cp)
	return nil
}

func (s *memOTPStore) LatestBySubject(ctx context.Context, subject string) (*model.OTPRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(s.records) - 1; i >= 0; i-- {
		r := s.records[i]
		if r.Subject == subject && !r.Superseded {
			cp := *r
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (s *memOTPStore) Supersede(ctx context.Context, subject string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.records {
		if r.Subject == subject && !r.Verified && !r.Superseded {
			r.Superseded = true
		}
	}
	return nil
}

func (s *memOTPStore) IncrementAttempts(ctx context.Context, id uint64) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.records {
		if r.ID == id {
			r.Attempts++
			return r.Attempts, nil
		}
	}
	return 0, ErrNotFound
}

func (s *memOTPStore) MarkVerified(ctx context.Context, id uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.records {
		if r.ID == id {
			r.Verified = true
			return nil
		}
	}
	return ErrNotFound
}

func (s *memOTPStore) latest(subject string) *model.OTPRecord {
	rec, _ := s.LatestBySubject(context.Background(), subject)
	return rec
}
