package booking

import (
	"context"
	"errors"
	"testing"

	"github.com/iliyamo/restaurant-reservation/internal/model"
)

func testSettings() model.RestaurantSettings {
	s := model.DefaultSettings()
	s.MaxCapacity = 10
	return s
}

func TestGenerateSlotsDefaultWindow(t *testing.T) {
	slots, err := GenerateSlots(model.DefaultSettings())
	if err != nil {
		t.Fatalf("GenerateSlots: %v", err)
	}
	// 17:00 .. 21:00 inclusive at 30-minute steps: the last slot must
	// still fit a 120-minute reservation before 23:00.
	want := []string{"17:00", "17:30", "18:00", "18:30", "19:00", "19:30", "20:00", "20:30", "21:00"}
	if len(slots) != len(want) {
		t.Fatalf("got %d slots %v, want %d", len(slots), slots, len(want))
	}
	for i := range want {
		if slots[i] != want[i] {
			t.Fatalf("slot[%d] = %s, want %s", i, slots[i], want[i])
		}
	}
}

func TestGenerateSlotsRejectsBadSettings(t *testing.T) {
	s := model.DefaultSettings()
	s.SlotGranularityMinutes = 0
	if _, err := GenerateSlots(s); !errors.Is(err, ErrValidation) {
		t.Fatalf("zero granularity: want ErrValidation, got %v", err)
	}
	s = model.DefaultSettings()
	s.OpeningTime = "25:99"
	if _, err := GenerateSlots(s); !errors.Is(err, ErrValidation) {
		t.Fatalf("bad opening time: want ErrValidation, got %v", err)
	}
}

func TestForDateCountsConfirmedAndSeatedOnly(t *testing.T) {
	store := newMemReservationStore()
	seed := func(id, status string, size int) {
		_ = store.Create(context.Background(), &model.Reservation{
			ID: id, Date: "2026-09-10", Time: "18:00", PartySize: size, Status: status,
		})
	}
	seed("a", model.StatusConfirmed, 4)
	seed("b", model.StatusSeated, 3)
	seed("c", model.StatusPending, 2)   // invisible to guests
	seed("d", model.StatusCancelled, 5) // released
	seed("e", model.StatusCompleted, 6) // released
	seed("f", model.StatusNoShow, 2)    // released

	calc := NewCalculator(store)
	day, err := calc.ForDate(context.Background(), "2026-09-10", testSettings())
	if err != nil {
		t.Fatalf("ForDate: %v", err)
	}
	for _, slot := range day.Slots {
		if slot.Time != "18:00" {
			if slot.AvailableCapacity != 10 {
				t.Fatalf("slot %s: capacity %d, want 10", slot.Time, slot.AvailableCapacity)
			}
			continue
		}
		if slot.AvailableCapacity != 3 {
			t.Fatalf("18:00 capacity = %d, want 3 (10 − 4 − 3)", slot.AvailableCapacity)
		}
		if !slot.IsAvailable {
			t.Fatal("18:00 should still be available")
		}
	}
}

func TestForDateClampsNegativeCapacity(t *testing.T) {
	store := newMemReservationStore()
	_ = store.Create(context.Background(), &model.Reservation{
		ID: "big", Date: "2026-09-10", Time: "19:00", PartySize: 15, Status: model.StatusConfirmed,
	})
	calc := NewCalculator(store)
	day, err := calc.ForDate(context.Background(), "2026-09-10", testSettings())
	if err != nil {
		t.Fatalf("ForDate: %v", err)
	}
	for _, slot := range day.Slots {
		if slot.Time == "19:00" {
			if slot.AvailableCapacity != 0 {
				t.Fatalf("overbooked slot reports capacity %d, want 0", slot.AvailableCapacity)
			}
			if slot.IsAvailable {
				t.Fatal("overbooked slot reported available")
			}
		}
	}
}

func TestForDateRejectsMalformedDate(t *testing.T) {
	calc := NewCalculator(newMemReservationStore())
	if _, err := calc.ForDate(context.Background(), "10-09-2026", testSettings()); !errors.Is(err, ErrValidation) {
		t.Fatalf("want ErrValidation, got %v", err)
	}
}

func TestForRange(t *testing.T) {
	calc := NewCalculator(newMemReservationStore())
	days, err := calc.ForRange(context.Background(), "2026-09-10", "2026-09-12", testSettings())
	if err != nil {
		t.Fatalf("ForRange: %v", err)
	}
	if len(days) != 3 {
		t.Fatalf("got %d days, want 3", len(days))
	}
	if days[0].Date != "2026-09-10" || days[2].Date != "2026-09-12" {
		t.Fatalf("unexpected day order: %s .. %s", days[0].Date, days[2].Date)
	}
}

func TestForRangeRejectsInvertedAndOversized(t *testing.T) {
	calc := NewCalculator(newMemReservationStore())
	if _, err := calc.ForRange(context.Background(), "2026-09-12", "2026-09-10", testSettings()); !errors.Is(err, ErrValidation) {
		t.Fatalf("inverted range: want ErrValidation, got %v", err)
	}
	s := testSettings()
	s.AdvanceBookingDays = 5
	if _, err := calc.ForRange(context.Background(), "2026-09-10", "2026-09-20", s); !errors.Is(err, ErrValidation) {
		t.Fatalf("oversized range: want ErrValidation, got %v", err)
	}
}

func TestClockRoundTrip(t *testing.T) {
	for _, s := range []string{"00:00", "09:05", "17:30", "23:59"} {
		m, err := ParseClock(s)
		if err != nil {
			t.Fatalf("ParseClock(%s): %v", s, err)
		}
		if got := FormatClock(m); got != s {
			t.Fatalf("FormatClock(ParseClock(%s)) = %s", s, got)
		}
	}
	if _, err := ParseClock("24:00"); err == nil {
		t.Fatal("ParseClock(24:00) should fail")
	}
}
