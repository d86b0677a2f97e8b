package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/complaint-service/internal/domain"
	"github.com/spec-kit/complaint-service/internal/events"
	"github.com/spec-kit/complaint-service/internal/observability"
	"github.com/spec-kit/complaint-service/internal/repository"
	"github.com/spec-kit/complaint-service/internal/sla"
	apperrors "github.com/spec-kit/complaint-service/pkg/util"
)

const maxPageSize = 100

// ComplaintService coordinates complaint CRUD workflows.
type ComplaintService struct {
	complaints repository.ComplaintRepository
	history    repository.StatusHistoryRepository
	dispatcher events.Dispatcher
	slaTable   sla.Table
	now        func() time.Time
}

// ComplaintDependencies bundles dependencies for the complaint service.
type ComplaintDependencies struct {
	ComplaintRepo repository.ComplaintRepository
	HistoryRepo   repository.StatusHistoryRepository
	Dispatcher    events.Dispatcher
	SLATable      sla.Table
}

// NewComplaintService constructs the service.
func NewComplaintService(deps ComplaintDependencies) *ComplaintService {
	table := deps.SLATable
	if table == nil {
		table = sla.DefaultTable()
	}
	return &ComplaintService{
		complaints: deps.ComplaintRepo,
		history:    deps.HistoryRepo,
		dispatcher: deps.Dispatcher,
		slaTable:   table,
		now:        time.Now,
	}
}

// ComplaintCreateInput describes the creation payload.
type ComplaintCreateInput struct {
	RequesterID string
	Title       string
	Description string
	Category    domain.ComplaintCategory
	Priority    domain.ComplaintPriority
}

// ComplaintUpdateInput describes a partial update by staff.
type ComplaintUpdateInput struct {
	Title       *string
	Description *string
	Priority    *domain.ComplaintPriority
}

// ComplaintListInput describes listing filters with pagination.
type ComplaintListInput struct {
	RequesterID *string
	AssignedTo  *string
	Statuses    []domain.ComplaintStatus
	Priorities  []domain.ComplaintPriority
	Categories  []domain.ComplaintCategory
	Page        int
	PageSize    int
}

// Create registers a new complaint in OPEN with its SLA deadline computed
// from the creation instant.
func (s *ComplaintService) Create(ctx context.Context, input ComplaintCreateInput) (*domain.Complaint, error) {
	if strings.TrimSpace(input.RequesterID) == "" || strings.TrimSpace(input.Title) == "" {
		return nil, apperrors.NewValidationError("requester_id and title are required", nil)
	}
	if !domain.ValidCategory(input.Category) {
		return nil, apperrors.NewValidationError("unknown category", map[string]any{"category": input.Category})
	}
	if input.Priority == "" {
		input.Priority = domain.ComplaintPriorityMedium
	}
	if !domain.ValidPriority(input.Priority) {
		return nil, apperrors.NewValidationError("unknown priority", map[string]any{"priority": input.Priority})
	}

	now := s.now()
	complaint := &domain.Complaint{
		RequesterID: input.RequesterID,
		Title:       strings.TrimSpace(input.Title),
		Description: strings.TrimSpace(input.Description),
		Category:    input.Category,
		Priority:    input.Priority,
		Status:      domain.ComplaintStatusOpen,
		SLADeadline: s.slaTable.Deadline(input.Priority, now),
		CreatedAt:   now,
	}
	if err := s.complaints.Create(ctx, complaint); err != nil {
		return nil, apperrors.MapError(err)
	}
	observability.ComplaintsCreated.Inc()

	if s.history != nil {
		entry := &domain.StatusHistory{
			ComplaintID: complaint.ID,
			NewStatus:   domain.ComplaintStatusOpen,
			ActorID:     complaint.RequesterID,
			Notes:       "complaint created",
		}
		if err := s.history.Create(ctx, entry); err != nil {
			return nil, apperrors.MapError(err)
		}
	}

	s.publish(ctx, events.Event{
		Type:        events.EventComplaintCreated,
		ComplaintID: complaint.ID,
		ActorID:     complaint.RequesterID,
		Payload: events.ComplaintCreatedPayload{
			RequesterID: complaint.RequesterID,
			Category:    complaint.Category,
			Priority:    complaint.Priority,
			Title:       complaint.Title,
		},
	})
	return complaint, nil
}

// Get fetches a complaint by id.
func (s *ComplaintService) Get(ctx context.Context, id string) (*domain.Complaint, error) {
	complaint, err := s.complaints.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("complaint", map[string]any{"complaint_id": id})
		}
		return nil, apperrors.MapError(err)
	}
	return complaint, nil
}

// Update applies a partial edit. A priority change re-bases the SLA deadline
// from the original creation time, never from the moment of the edit.
func (s *ComplaintService) Update(ctx context.Context, id string, input ComplaintUpdateInput, actor Actor) (*domain.Complaint, error) {
	complaint, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Title != nil && strings.TrimSpace(*input.Title) != "" {
		complaint.Title = strings.TrimSpace(*input.Title)
	}
	if input.Description != nil {
		complaint.Description = strings.TrimSpace(*input.Description)
	}

	var oldPriority domain.ComplaintPriority
	priorityChanged := false
	if input.Priority != nil && *input.Priority != complaint.Priority {
		if !domain.ValidPriority(*input.Priority) {
			return nil, apperrors.NewValidationError("unknown priority", map[string]any{"priority": *input.Priority})
		}
		oldPriority = complaint.Priority
		complaint.Priority = *input.Priority
		complaint.SLADeadline = s.slaTable.Deadline(complaint.Priority, complaint.CreatedAt)
		priorityChanged = true
	}

	if err := s.complaints.Update(ctx, complaint); err != nil {
		return nil, apperrors.MapError(err)
	}

	if priorityChanged {
		s.publish(ctx, events.Event{
			Type:        events.EventPriorityChanged,
			ComplaintID: complaint.ID,
			ActorID:     actor.ID,
			Payload: events.PriorityChangedPayload{
				RequesterID: complaint.RequesterID,
				OldPriority: oldPriority,
				NewPriority: complaint.Priority,
			},
		})
	}
	return complaint, nil
}

// List returns a page of complaints matching the filter.
func (s *ComplaintService) List(ctx context.Context, input ComplaintListInput) ([]domain.Complaint, error) {
	if input.Page < 0 || input.PageSize < 0 {
		return nil, apperrors.NewInvalidPagination("page and page_size must not be negative")
	}
	if input.PageSize > maxPageSize {
		return nil, apperrors.NewInvalidPagination("page_size exceeds the maximum of 100")
	}
	page := input.Page
	if page == 0 {
		page = 1
	}
	size := input.PageSize
	if size == 0 {
		size = 20
	}

	filter := repository.ComplaintFilter{
		RequesterID: input.RequesterID,
		AssignedTo:  input.AssignedTo,
		Statuses:    input.Statuses,
		Priorities:  input.Priorities,
		Categories:  input.Categories,
		Limit:       size,
		Offset:      (page - 1) * size,
	}
	list, err := s.complaints.ListWithFilter(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return list, nil
}

// History lists the status audit trail of a complaint.
func (s *ComplaintService) History(ctx context.Context, complaintID string, limit, offset int) ([]domain.StatusHistory, error) {
	if s.history == nil {
		return []domain.StatusHistory{}, nil
	}
	if _, err := s.Get(ctx, complaintID); err != nil {
		return nil, err
	}
	entries, err := s.history.ListByComplaint(ctx, complaintID, limit, offset)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return entries, nil
}

// Delete hard-deletes a complaint; status history rows cascade with it.
func (s *ComplaintService) Delete(ctx context.Context, id string) error {
	if err := s.complaints.Delete(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("complaint", map[string]any{"complaint_id": id})
		}
		return apperrors.MapError(err)
	}
	return nil
}

func (s *ComplaintService) publish(ctx context.Context, event events.Event) {
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
