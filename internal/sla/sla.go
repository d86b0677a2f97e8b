package sla

import (
	"time"

	"github.com/spec-kit/complaint-service/internal/domain"
)

// Table maps complaint priorities to the total time allowed from submission
// to resolution. The table is fixed at process start; it is fed from
// configuration, never mutated at runtime.
type Table map[domain.ComplaintPriority]time.Duration

// DefaultTable returns the reference deployment profile.
func DefaultTable() Table {
	return Table{
		domain.ComplaintPriorityCritical: 4 * time.Hour,
		domain.ComplaintPriorityHigh:     12 * time.Hour,
		domain.ComplaintPriorityMedium:   24 * time.Hour,
		domain.ComplaintPriorityLow:      48 * time.Hour,
	}
}

// TableFromHours builds a table from per-priority hour values, falling back
// to the defaults for non-positive entries.
func TableFromHours(critical, high, medium, low int) Table {
	t := DefaultTable()
	if critical > 0 {
		t[domain.ComplaintPriorityCritical] = time.Duration(critical) * time.Hour
	}
	if high > 0 {
		t[domain.ComplaintPriorityHigh] = time.Duration(high) * time.Hour
	}
	if medium > 0 {
		t[domain.ComplaintPriorityMedium] = time.Duration(medium) * time.Hour
	}
	if low > 0 {
		t[domain.ComplaintPriorityLow] = time.Duration(low) * time.Hour
	}
	return t
}

// Duration returns the SLA window for a priority. Unknown priorities get the
// Medium window.
func (t Table) Duration(p domain.ComplaintPriority) time.Duration {
	if d, ok := t[p]; ok {
		return d
	}
	return t[domain.ComplaintPriorityMedium]
}

// Deadline computes the SLA deadline for a complaint. Always based on the
// original creation time so that the SLA reflects total allowed time from
// submission; priority changes re-base from createdAt, not from the edit.
func (t Table) Deadline(p domain.ComplaintPriority, createdAt time.Time) time.Time {
	return createdAt.Add(t.Duration(p))
}

// IsOverdue reports whether the deadline has passed. For resolved complaints
// the resolution time is compared instead of now.
func IsOverdue(deadline time.Time, resolvedAt *time.Time, now time.Time) bool {
	at := now
	if resolvedAt != nil {
		at = *resolvedAt
	}
	return at.After(deadline)
}

// ElapsedFraction returns the unclamped fraction of the SLA window consumed
// at now. Values above 1 mean the deadline has passed.
func ElapsedFraction(createdAt, deadline, now time.Time) float64 {
	window := deadline.Sub(createdAt)
	if window <= 0 {
		return 1
	}
	return float64(now.Sub(createdAt)) / float64(window)
}

// IsApproachingDeadline reports whether the complaint has consumed at least
// threshold of its SLA window but is not yet overdue.
func IsApproachingDeadline(createdAt, deadline, now time.Time, threshold float64) bool {
	return ElapsedFraction(createdAt, deadline, now) >= threshold && now.Before(deadline)
}

// PercentElapsed returns the consumed share of the SLA window clamped to
// [0, 100] for display. Internal comparisons use ElapsedFraction.
func PercentElapsed(createdAt, deadline, now time.Time) float64 {
	pct := ElapsedFraction(createdAt, deadline, now) * 100
	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return pct
}
