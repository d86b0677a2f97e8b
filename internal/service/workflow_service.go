package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/complaint-service/internal/domain"
	"github.com/spec-kit/complaint-service/internal/events"
	"github.com/spec-kit/complaint-service/internal/repository"
	apperrors "github.com/spec-kit/complaint-service/pkg/util"
)

// Actor identifies who performs a workflow operation. Admin grants the
// assignment override.
type Actor struct {
	ID    string
	Admin bool
}

// WorkflowService owns the complaint status state machine.
type WorkflowService struct {
	complaints repository.ComplaintRepository
	workers    repository.WorkerRepository
	history    repository.StatusHistoryRepository
	dispatcher events.Dispatcher

	reopenWindow time.Duration
	now          func() time.Time
}

// WorkflowDependencies bundles repositories for the workflow service.
type WorkflowDependencies struct {
	ComplaintRepo repository.ComplaintRepository
	WorkerRepo    repository.WorkerRepository
	HistoryRepo   repository.StatusHistoryRepository
	Dispatcher    events.Dispatcher
	ReopenWindow  time.Duration
}

// NewWorkflowService constructs the service.
func NewWorkflowService(deps WorkflowDependencies) *WorkflowService {
	window := deps.ReopenWindow
	if window <= 0 {
		window = 7 * 24 * time.Hour
	}
	return &WorkflowService{
		complaints:   deps.ComplaintRepo,
		workers:      deps.WorkerRepo,
		history:      deps.HistoryRepo,
		dispatcher:   deps.Dispatcher,
		reopenWindow: window,
		now:          time.Now,
	}
}

// allowedTransitions is the status edge table. RESOLVED is terminal here;
// it is left only via Reopen, which is a separate operation.
var allowedTransitions = map[domain.ComplaintStatus][]domain.ComplaintStatus{
	domain.ComplaintStatusOpen:       {domain.ComplaintStatusAssigned, domain.ComplaintStatusInProgress},
	domain.ComplaintStatusAssigned:   {domain.ComplaintStatusInProgress, domain.ComplaintStatusResolved},
	domain.ComplaintStatusInProgress: {domain.ComplaintStatusResolved},
	domain.ComplaintStatusResolved:   {},
}

func isValidTransition(current, next domain.ComplaintStatus) bool {
	for _, candidate := range allowedTransitions[current] {
		if candidate == next {
			return true
		}
	}
	return false
}

// Transition applies a status change through the edge table. On success the
// status is written, a history row appended and a status-changed event
// published; an invalid edge fails without side effects.
func (s *WorkflowService) Transition(ctx context.Context, complaintID string, target domain.ComplaintStatus, actor Actor, notes string) (*domain.Complaint, error) {
	complaint, err := s.getComplaint(ctx, complaintID)
	if err != nil {
		return nil, err
	}
	if !isValidTransition(complaint.Status, target) {
		return nil, apperrors.NewInvalidTransition(string(complaint.Status), string(target))
	}

	oldStatus := complaint.Status
	complaint.Status = target
	if target == domain.ComplaintStatusResolved {
		now := s.now()
		complaint.ResolvedAt = &now
	}
	if err := s.complaints.Update(ctx, complaint); err != nil {
		return nil, apperrors.MapError(err)
	}
	if err := s.recordStatusChange(ctx, complaint.ID, &oldStatus, target, actor.ID, notes); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.publish(ctx, events.Event{
		Type:        events.EventStatusChanged,
		ComplaintID: complaint.ID,
		ActorID:     actor.ID,
		Payload: events.StatusChangedPayload{
			RequesterID: complaint.RequesterID,
			OldStatus:   oldStatus,
			NewStatus:   target,
			Notes:       notes,
		},
	})
	return complaint, nil
}

// Reopen moves a resolved complaint back to OPEN. Only the original
// requester is bound by the reopen window; staff actors may reopen at any
// time. Monotonic flags are cleared here and nowhere else.
func (s *WorkflowService) Reopen(ctx context.Context, complaintID, reason string, actor Actor) (*domain.Complaint, error) {
	complaint, err := s.getComplaint(ctx, complaintID)
	if err != nil {
		return nil, err
	}
	if complaint.Status != domain.ComplaintStatusResolved || complaint.ResolvedAt == nil {
		return nil, apperrors.NewNotResolved(string(complaint.Status))
	}
	if actor.ID == complaint.RequesterID && s.now().Sub(*complaint.ResolvedAt) > s.reopenWindow {
		return nil, apperrors.NewReopenWindowExpired(int(s.reopenWindow / (24 * time.Hour)))
	}

	oldStatus := complaint.Status
	complaint.Status = domain.ComplaintStatusOpen
	complaint.ResolvedAt = nil
	complaint.IsOverdue = false
	complaint.IsEscalated = false
	complaint.IsRecurring = false
	if err := s.complaints.Update(ctx, complaint); err != nil {
		return nil, apperrors.MapError(err)
	}
	if err := s.recordStatusChange(ctx, complaint.ID, &oldStatus, complaint.Status, actor.ID, reason); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.publish(ctx, events.Event{
		Type:        events.EventComplaintReopened,
		ComplaintID: complaint.ID,
		ActorID:     actor.ID,
		Payload: events.ComplaintReopenedPayload{
			RequesterID: complaint.RequesterID,
			Reason:      reason,
		},
	})
	return complaint, nil
}

// Assign sets the assigned worker and forces status to ASSIGNED from any
// unresolved status. This deliberately bypasses the transition graph; it is
// the documented escape hatch for (re)assignment, not a transition. RESOLVED
// stays terminal: a resolved complaint must be reopened before it can be
// assigned again, keeping resolved_at in lockstep with the status. A
// non-admin actor cannot take over an already assigned complaint.
func (s *WorkflowService) Assign(ctx context.Context, complaintID, workerID string, actor Actor) (*domain.Complaint, error) {
	complaint, err := s.getComplaint(ctx, complaintID)
	if err != nil {
		return nil, err
	}
	if complaint.Status == domain.ComplaintStatusResolved {
		return nil, apperrors.NewInvalidTransition(string(complaint.Status), string(domain.ComplaintStatusAssigned))
	}
	worker, err := s.workers.GetByID(ctx, workerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("worker", map[string]any{"worker_id": workerID})
		}
		return nil, apperrors.MapError(err)
	}
	if complaint.AssignedTo != nil && !actor.Admin {
		return nil, apperrors.NewAlreadyAssigned(complaint.ID)
	}

	oldStatus := complaint.Status
	if err := s.complaints.AssignWorker(ctx, complaint.ID, worker.ID, actor.Admin); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Existence and status were checked above, so a zero-row
			// conditional update means a concurrent assignment or
			// resolution won.
			return nil, apperrors.NewAlreadyAssigned(complaint.ID)
		}
		return nil, apperrors.MapError(err)
	}
	complaint.AssignedTo = &worker.ID
	complaint.Status = domain.ComplaintStatusAssigned

	notes := fmt.Sprintf("assigned to %s", worker.Name)
	if err := s.recordStatusChange(ctx, complaint.ID, &oldStatus, complaint.Status, actor.ID, notes); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.publish(ctx, events.Event{
		Type:        events.EventComplaintAssigned,
		ComplaintID: complaint.ID,
		ActorID:     actor.ID,
		Payload: events.ComplaintAssignedPayload{
			RequesterID: complaint.RequesterID,
			WorkerID:    worker.ID,
		},
	})
	return complaint, nil
}

func (s *WorkflowService) getComplaint(ctx context.Context, id string) (*domain.Complaint, error) {
	complaint, err := s.complaints.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("complaint", map[string]any{"complaint_id": id})
		}
		return nil, apperrors.MapError(err)
	}
	return complaint, nil
}

func (s *WorkflowService) recordStatusChange(ctx context.Context, complaintID string, previous *domain.ComplaintStatus, next domain.ComplaintStatus, actorID, notes string) error {
	if s.history == nil {
		return nil
	}
	return s.history.Create(ctx, &domain.StatusHistory{
		ComplaintID:    complaintID,
		PreviousStatus: previous,
		NewStatus:      next,
		ActorID:        actorID,
		Notes:          notes,
	})
}

func (s *WorkflowService) publish(ctx context.Context, event events.Event) {
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
