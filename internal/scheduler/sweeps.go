package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/complaint-service/internal/domain"
	"github.com/spec-kit/complaint-service/internal/events"
	"github.com/spec-kit/complaint-service/internal/observability"
	"github.com/spec-kit/complaint-service/internal/repository"
	"github.com/spec-kit/complaint-service/internal/sla"
)

// SweepConfig holds the timing rules shared by the periodic sweeps.
type SweepConfig struct {
	Table                 sla.Table
	ReminderWindow        time.Duration
	ApproachThreshold     float64
	CriticalEscalationPct float64
	HighEscalationPct     float64
	RecurrenceWindow      time.Duration
	RecurrenceMinCount    int
}

// Sweeper implements the periodic evaluators. Every sweep re-reads current
// state from the store, evaluates each complaint as an independent unit of
// work and keeps going when a single item fails. Action gates always
// recompute from sla_deadline; the cached is_overdue flag is display-only
// state and is never trusted across sweeps.
type Sweeper struct {
	complaints repository.ComplaintRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
	cfg        SweepConfig
	now        func() time.Time
}

// NewSweeper constructs the sweeper.
func NewSweeper(complaints repository.ComplaintRepository, dispatcher events.Dispatcher, logger *zap.Logger, cfg SweepConfig) *Sweeper {
	if cfg.Table == nil {
		cfg.Table = sla.DefaultTable()
	}
	if cfg.ReminderWindow <= 0 {
		cfg.ReminderWindow = 2 * time.Hour
	}
	if cfg.ApproachThreshold <= 0 {
		cfg.ApproachThreshold = 0.75
	}
	if cfg.CriticalEscalationPct <= 0 {
		cfg.CriticalEscalationPct = 0.5
	}
	if cfg.HighEscalationPct <= 0 {
		cfg.HighEscalationPct = 0.75
	}
	if cfg.RecurrenceWindow <= 0 {
		cfg.RecurrenceWindow = 30 * 24 * time.Hour
	}
	if cfg.RecurrenceMinCount <= 0 {
		cfg.RecurrenceMinCount = 3
	}
	return &Sweeper{
		complaints: complaints,
		dispatcher: dispatcher,
		logger:     logger,
		cfg:        cfg,
		now:        time.Now,
	}
}

// RunSLASweep flips is_overdue on every unresolved complaint whose deadline
// has passed and reports the batch as one SLA breach event.
func (s *Sweeper) RunSLASweep(ctx context.Context) error {
	active, err := s.complaints.ListActive(ctx)
	if err != nil {
		return err
	}

	now := s.now()
	breached := 0
	for i := range active {
		c := &active[i]
		if c.IsOverdue || !sla.IsOverdue(c.SLADeadline, nil, now) {
			continue
		}
		if err := s.complaints.MarkOverdue(ctx, c.ID); err != nil {
			s.itemFailed("sla", c.ID, err)
			continue
		}
		observability.OverdueFlagged.Inc()
		breached++
	}

	if breached > 0 {
		s.publish(ctx, events.Event{
			Type:    events.EventSLABreach,
			Payload: events.SLABreachPayload{BreachedCount: breached},
		})
		s.logger.Info("sla sweep flagged overdue complaints", zap.Int("count", breached))
	}
	return nil
}

// RunReminderSweep notifies assigned workers of deadlines at risk: either
// inside the absolute reminder window, or past ApproachThreshold of the SLA
// window for long-running priorities. Unassigned or already overdue-flagged
// complaints are skipped.
func (s *Sweeper) RunReminderSweep(ctx context.Context) error {
	active, err := s.complaints.ListActive(ctx)
	if err != nil {
		return err
	}

	now := s.now()
	cutoff := now.Add(s.cfg.ReminderWindow)
	for i := range active {
		c := &active[i]
		if c.IsOverdue || c.AssignedTo == nil {
			continue
		}
		if !c.SLADeadline.After(now) {
			continue
		}
		if c.SLADeadline.After(cutoff) &&
			!sla.IsApproachingDeadline(c.CreatedAt, c.SLADeadline, now, s.cfg.ApproachThreshold) {
			continue
		}
		s.publish(ctx, events.Event{
			Type:        events.EventDeadlineReminder,
			ComplaintID: c.ID,
			Payload: events.DeadlineReminderPayload{
				WorkerID: *c.AssignedTo,
				Deadline: c.SLADeadline,
			},
		})
		observability.RemindersSent.Inc()
	}
	return nil
}

// RunEscalationSweep promotes at-risk complaints. Escalation is monotonic
// and idempotent per complaint: an already escalated complaint is skipped
// entirely, and rule order only chooses the reason string. Overdue status
// is recomputed here rather than read from is_overdue so the outcome does
// not depend on whether the SLA sweep ran first.
func (s *Sweeper) RunEscalationSweep(ctx context.Context) error {
	active, err := s.complaints.ListActive(ctx)
	if err != nil {
		return err
	}

	now := s.now()
	for i := range active {
		c := &active[i]
		if c.IsEscalated {
			continue
		}
		reason := s.escalationReason(c, now)
		if reason == "" {
			continue
		}
		if err := s.complaints.SetEscalated(ctx, c.ID); err != nil {
			s.itemFailed("escalation", c.ID, err)
			continue
		}
		observability.Escalations.Inc()
		s.publish(ctx, events.Event{
			Type:        events.EventComplaintEscalated,
			ComplaintID: c.ID,
			Payload: events.ComplaintEscalatedPayload{
				RequesterID: c.RequesterID,
				AssignedTo:  c.AssignedTo,
				Reason:      reason,
			},
		})
		s.logger.Info("complaint escalated",
			zap.String("complaint_id", c.ID),
			zap.String("reason", reason))
	}
	return nil
}

// escalationReason returns the first matching rule's reason, or "" when the
// complaint is not at risk.
func (s *Sweeper) escalationReason(c *domain.Complaint, now time.Time) string {
	if sla.IsOverdue(c.SLADeadline, nil, now) {
		hours := int(now.Sub(c.SLADeadline).Hours())
		return fmt.Sprintf("Overdue by %dh", hours)
	}
	elapsed := sla.ElapsedFraction(c.CreatedAt, c.SLADeadline, now)
	if c.Priority == domain.ComplaintPriorityCritical && elapsed >= s.cfg.CriticalEscalationPct {
		return "Critical complaint exceeded 50% of SLA time"
	}
	if c.Priority == domain.ComplaintPriorityHigh && elapsed >= s.cfg.HighEscalationPct {
		return "High complaint exceeded 75% of SLA time"
	}
	return ""
}

// RunMaintenanceSweep is the daily housekeeping pass. It marks complaints
// recurring when the same requester filed at least RecurrenceMinCount
// complaints in the same category inside the recurrence window.
func (s *Sweeper) RunMaintenanceSweep(ctx context.Context) error {
	active, err := s.complaints.ListActive(ctx)
	if err != nil {
		return err
	}

	since := s.now().Add(-s.cfg.RecurrenceWindow)
	for i := range active {
		c := &active[i]
		if c.IsRecurring {
			continue
		}
		count, err := s.complaints.CountByRequesterCategorySince(ctx, c.RequesterID, c.Category, since)
		if err != nil {
			s.itemFailed("maintenance", c.ID, err)
			continue
		}
		if count < s.cfg.RecurrenceMinCount {
			continue
		}
		if err := s.complaints.MarkRecurring(ctx, c.ID); err != nil {
			s.itemFailed("maintenance", c.ID, err)
			continue
		}
		s.logger.Info("complaint marked recurring",
			zap.String("complaint_id", c.ID),
			zap.Int("recent_count", count))
	}
	return nil
}

func (s *Sweeper) itemFailed(sweep, complaintID string, err error) {
	observability.SweepFailures.WithLabelValues(sweep).Inc()
	s.logger.Warn("sweep item failed",
		zap.String("sweep", sweep),
		zap.String("complaint_id", complaintID),
		zap.Error(err))
}

func (s *Sweeper) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = s.now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}
