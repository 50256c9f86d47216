package rundomain

import (
	"testing"
	"time"
)

func TestPeriodKeyAfterReset(t *testing.T) {
	// Monday 2025-11-17 10:00 UTC, reset Monday 09:00 — the new period.
	ts := time.Date(2025, time.November, 17, 10, 0, 0, 0, time.UTC)
	if got := PeriodKey(ts, time.Monday, 9); got != "2025-W46" {
		t.Errorf("expected 2025-W46, got %s", got)
	}
}

func TestPeriodKeyBeforeResetHourBelongsToPreviousPeriod(t *testing.T) {
	// Same Monday, 08:59 UTC — still the previous game week.
	ts := time.Date(2025, time.November, 17, 8, 59, 0, 0, time.UTC)
	if got := PeriodKey(ts, time.Monday, 9); got != "2025-W45" {
		t.Errorf("expected 2025-W45, got %s", got)
	}
}

func TestPeriodKeyMidWeek(t *testing.T) {
	// Thursday maps back to the Monday reset of the same week.
	ts := time.Date(2025, time.November, 20, 23, 0, 0, 0, time.UTC)
	if got := PeriodKey(ts, time.Monday, 9); got != "2025-W46" {
		t.Errorf("expected 2025-W46, got %s", got)
	}
}

func TestPeriodKeyNonMondayReset(t *testing.T) {
	// Reset Tuesday 05:00. A Monday timestamp falls in the period opened by
	// the previous Tuesday.
	ts := time.Date(2025, time.November, 17, 12, 0, 0, 0, time.UTC)
	got := PeriodKey(ts, time.Tuesday, 5)
	// Previous Tuesday is 2025-11-11, Monday-based week 45.
	if got != "2025-W45" {
		t.Errorf("expected 2025-W45, got %s", got)
	}
}

func TestPeriodKeyYearBoundary(t *testing.T) {
	// Sunday 2025-01-05 resolves to the reset on Monday 2024-12-30, which
	// belongs to the previous year's numbering.
	ts := time.Date(2025, time.January, 5, 12, 0, 0, 0, time.UTC)
	if got := PeriodKey(ts, time.Monday, 9); got != "2024-W53" {
		t.Errorf("expected 2024-W53, got %s", got)
	}
}

func TestPeriodKeyStableWithinPeriod(t *testing.T) {
	reset := time.Date(2025, time.November, 17, 9, 0, 0, 0, time.UTC)
	first := PeriodKey(reset, time.Monday, 9)
	for _, offset := range []time.Duration{0, time.Hour, 24 * time.Hour, 6*24*time.Hour + 23*time.Hour} {
		if got := PeriodKey(reset.Add(offset), time.Monday, 9); got != first {
			t.Errorf("offset %v: expected %s, got %s", offset, first, got)
		}
	}
	// One full week later is a new period.
	if got := PeriodKey(reset.Add(7*24*time.Hour), time.Monday, 9); got == first {
		t.Errorf("next week must be a new period, still %s", got)
	}
}
