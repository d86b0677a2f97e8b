package sla

import (
	"testing"
	"time"

	"github.com/spec-kit/complaint-service/internal/domain"
)

func TestDefaultTableWindows(t *testing.T) {
	table := DefaultTable()
	cases := []struct {
		priority domain.ComplaintPriority
		want     time.Duration
	}{
		{domain.ComplaintPriorityCritical, 4 * time.Hour},
		{domain.ComplaintPriorityHigh, 12 * time.Hour},
		{domain.ComplaintPriorityMedium, 24 * time.Hour},
		{domain.ComplaintPriorityLow, 48 * time.Hour},
	}
	for _, tc := range cases {
		if got := table.Duration(tc.priority); got != tc.want {
			t.Fatalf("%s window = %v, want %v", tc.priority, got, tc.want)
		}
	}
}

func TestDurationUnknownPriorityFallsBackToMedium(t *testing.T) {
	table := DefaultTable()
	if got := table.Duration("URGENT"); got != 24*time.Hour {
		t.Fatalf("unknown priority window = %v, want medium 24h", got)
	}
}

func TestTableFromHoursOverridesAndFallbacks(t *testing.T) {
	table := TableFromHours(2, 24, 0, -1)
	if got := table.Duration(domain.ComplaintPriorityCritical); got != 2*time.Hour {
		t.Fatalf("critical = %v, want 2h", got)
	}
	if got := table.Duration(domain.ComplaintPriorityHigh); got != 24*time.Hour {
		t.Fatalf("high = %v, want 24h", got)
	}
	if got := table.Duration(domain.ComplaintPriorityMedium); got != 24*time.Hour {
		t.Fatalf("medium zero must keep default, got %v", got)
	}
	if got := table.Duration(domain.ComplaintPriorityLow); got != 48*time.Hour {
		t.Fatalf("low negative must keep default, got %v", got)
	}
}

func TestDeadlineAnchorsOnCreation(t *testing.T) {
	createdAt := time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC)
	got := DefaultTable().Deadline(domain.ComplaintPriorityHigh, createdAt)
	if want := createdAt.Add(12 * time.Hour); !got.Equal(want) {
		t.Fatalf("deadline = %v, want %v", got, want)
	}
}

func TestIsOverdue(t *testing.T) {
	deadline := time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC)

	if IsOverdue(deadline, nil, deadline) {
		t.Fatal("exactly at the deadline is not overdue")
	}
	if !IsOverdue(deadline, nil, deadline.Add(time.Second)) {
		t.Fatal("past the deadline must be overdue")
	}

	// A resolved complaint is judged by its resolution time, not by now.
	early := deadline.Add(-time.Hour)
	if IsOverdue(deadline, &early, deadline.Add(48*time.Hour)) {
		t.Fatal("resolved before the deadline must never become overdue")
	}
	late := deadline.Add(time.Hour)
	if !IsOverdue(deadline, &late, deadline.Add(-time.Hour)) {
		t.Fatal("resolved after the deadline is overdue regardless of now")
	}
}

func TestElapsedFraction(t *testing.T) {
	createdAt := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	deadline := createdAt.Add(4 * time.Hour)

	if got := ElapsedFraction(createdAt, deadline, createdAt.Add(2*time.Hour)); got != 0.5 {
		t.Fatalf("fraction = %v, want 0.5", got)
	}
	if got := ElapsedFraction(createdAt, deadline, createdAt.Add(6*time.Hour)); got != 1.5 {
		t.Fatalf("fraction past deadline = %v, want 1.5 unclamped", got)
	}
	if got := ElapsedFraction(createdAt, createdAt, createdAt); got != 1 {
		t.Fatalf("degenerate window fraction = %v, want 1", got)
	}
}

func TestIsApproachingDeadline(t *testing.T) {
	createdAt := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	deadline := createdAt.Add(4 * time.Hour)

	if IsApproachingDeadline(createdAt, deadline, createdAt.Add(time.Hour), 0.75) {
		t.Fatal("25% elapsed is not approaching at threshold 0.75")
	}
	if !IsApproachingDeadline(createdAt, deadline, createdAt.Add(3*time.Hour), 0.75) {
		t.Fatal("75% elapsed is approaching")
	}
	if IsApproachingDeadline(createdAt, deadline, deadline.Add(time.Hour), 0.75) {
		t.Fatal("overdue is past approaching, not approaching")
	}
}

func TestPercentElapsedClamped(t *testing.T) {
	createdAt := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	deadline := createdAt.Add(4 * time.Hour)

	if got := PercentElapsed(createdAt, deadline, createdAt.Add(-time.Hour)); got != 0 {
		t.Fatalf("percent before creation = %v, want 0", got)
	}
	if got := PercentElapsed(createdAt, deadline, deadline.Add(10*time.Hour)); got != 100 {
		t.Fatalf("percent past deadline = %v, want 100", got)
	}
	if got := PercentElapsed(createdAt, deadline, createdAt.Add(time.Hour)); got != 25 {
		t.Fatalf("percent = %v, want 25", got)
	}
}
