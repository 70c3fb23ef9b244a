package availability

import (
	"testing"
	"time"
)

func mustGrid(t *testing.T) Grid {
	t.Helper()
	g, err := NewGrid("08:00", "20:00", 30*time.Minute)
	if err != nil {
		t.Fatalf("NewGrid: %v", err)
	}
	return g
}

func TestGridTimesInclusive(t *testing.T) {
	times := mustGrid(t).Times()
	if len(times) != 25 {
		t.Fatalf("expected 25 slots, got %d", len(times))
	}
	if times[0] != "08:00" || times[1] != "08:30" || times[len(times)-1] != "20:00" {
		t.Fatalf("unexpected bounds: %v", times)
	}
}

func TestGridContains(t *testing.T) {
	g := mustGrid(t)
	cases := map[string]bool{
		"08:00": true,
		"14:30": true,
		"20:00": true,
		"20:30": false,
		"07:30": false,
		"09:15": false,
		"9:00":  false,
		"":      false,
		"25:00": false,
	}
	for in, want := range cases {
		if got := g.Contains(in); got != want {
			t.Fatalf("Contains(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestNewGridRejectsInvertedBounds(t *testing.T) {
	if _, err := NewGrid("20:00", "08:00", 30*time.Minute); err == nil {
		t.Fatalf("expected error")
	}
}

func TestDaySlotsMarksTaken(t *testing.T) {
	loc := time.UTC
	now := time.Date(2026, 1, 27, 12, 0, 0, 0, loc)
	day := time.Date(2026, 1, 28, 0, 0, 0, 0, loc)

	slots := DaySlots(day, mustGrid(t), map[string]bool{"09:00": true}, now)
	for _, s := range slots {
		if s.Time == "09:00" && s.Available {
			t.Fatalf("09:00 should be taken")
		}
		if s.Time == "09:30" && !s.Available {
			t.Fatalf("09:30 should be free")
		}
	}
}

func TestDaySlotsSkipsPastToday(t *testing.T) {
	loc := time.UTC
	now := time.Date(2026, 1, 28, 9, 31, 0, 0, loc)

	slots := DaySlots(now, mustGrid(t), nil, now)
	for _, s := range slots {
		past := s.Time <= "09:30"
		if past && s.Available {
			t.Fatalf("%s already started, should be unavailable", s.Time)
		}
		if !past && !s.Available {
			t.Fatalf("%s should be available", s.Time)
		}
	}
}
