package dto

import (
	"time"

	"github.com/spec-kit/complaint-service/internal/domain"
	"github.com/spec-kit/complaint-service/internal/sla"
)

// CreateComplaintRequest payload.
type CreateComplaintRequest struct {
	RequesterID string                   `json:"requester_id"`
	Title       string                   `json:"title"`
	Description string                   `json:"description"`
	Category    domain.ComplaintCategory `json:"category"`
	Priority    domain.ComplaintPriority `json:"priority"`
}

// UpdateComplaintRequest payload for partial staff edits.
type UpdateComplaintRequest struct {
	Title       *string                   `json:"title"`
	Description *string                   `json:"description"`
	Priority    *domain.ComplaintPriority `json:"priority"`
}

// UpdateStatusRequest payload.
type UpdateStatusRequest struct {
	Status domain.ComplaintStatus `json:"status"`
	Notes  string                 `json:"notes"`
}

// AssignRequest payload.
type AssignRequest struct {
	WorkerID string `json:"worker_id"`
}

// ReopenRequest payload.
type ReopenRequest struct {
	ActorID string `json:"actor_id"`
	Reason  string `json:"reason"`
}

// BulkAssignRequest payload.
type BulkAssignRequest struct {
	ComplaintIDs []string `json:"complaint_ids"`
	WorkerID     string   `json:"worker_id"`
}

// BulkStatusRequest payload.
type BulkStatusRequest struct {
	ComplaintIDs []string               `json:"complaint_ids"`
	Status       domain.ComplaintStatus `json:"status"`
	Notes        string                 `json:"notes"`
}

// ComplaintResponse is the full complaint representation.
type ComplaintResponse struct {
	ID          string                   `json:"id"`
	RequesterID string                   `json:"requester_id"`
	Title       string                   `json:"title"`
	Description string                   `json:"description"`
	Category    domain.ComplaintCategory `json:"category"`
	Priority    domain.ComplaintPriority `json:"priority"`
	Status      domain.ComplaintStatus   `json:"status"`
	AssignedTo  *string                  `json:"assigned_to"`
	SLADeadline time.Time                `json:"sla_deadline"`
	SLAElapsed  float64                  `json:"sla_percent_elapsed"`
	ResolvedAt  *time.Time               `json:"resolved_at"`
	IsOverdue   bool                     `json:"is_overdue"`
	IsEscalated bool                     `json:"is_escalated"`
	IsRecurring bool                     `json:"is_recurring"`
	CreatedAt   time.Time                `json:"created_at"`
	UpdatedAt   time.Time                `json:"updated_at"`
}

// StatusHistoryResponse is one audit trail entry.
type StatusHistoryResponse struct {
	ID             string                  `json:"id"`
	PreviousStatus *domain.ComplaintStatus `json:"previous_status"`
	NewStatus      domain.ComplaintStatus  `json:"new_status"`
	ActorID        string                  `json:"actor_id"`
	Notes          string                  `json:"notes,omitempty"`
	CreatedAt      time.Time               `json:"created_at"`
}

// FromComplaint maps a domain complaint to its response shape. The elapsed
// percentage is frozen at resolution time for resolved complaints.
func FromComplaint(c *domain.Complaint) ComplaintResponse {
	at := time.Now()
	if c.ResolvedAt != nil {
		at = *c.ResolvedAt
	}
	return ComplaintResponse{
		ID:          c.ID,
		RequesterID: c.RequesterID,
		Title:       c.Title,
		Description: c.Description,
		Category:    c.Category,
		Priority:    c.Priority,
		Status:      c.Status,
		AssignedTo:  c.AssignedTo,
		SLADeadline: c.SLADeadline,
		SLAElapsed:  sla.PercentElapsed(c.CreatedAt, c.SLADeadline, at),
		ResolvedAt:  c.ResolvedAt,
		IsOverdue:   c.IsOverdue,
		IsEscalated: c.IsEscalated,
		IsRecurring: c.IsRecurring,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

// FromHistory maps a history entry to its response shape.
func FromHistory(h *domain.StatusHistory) StatusHistoryResponse {
	return StatusHistoryResponse{
		ID:             h.ID,
		PreviousStatus: h.PreviousStatus,
		NewStatus:      h.NewStatus,
		ActorID:        h.ActorID,
		Notes:          h.Notes,
		CreatedAt:      h.CreatedAt,
	}
}
