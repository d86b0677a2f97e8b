package events

import (
	"time"

	"github.com/spec-kit/complaint-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventComplaintCreated   EventType = "complaint_created"
	EventStatusChanged      EventType = "complaint_status_changed"
	EventPriorityChanged    EventType = "complaint_priority_changed"
	EventComplaintAssigned  EventType = "complaint_assigned"
	EventComplaintReopened  EventType = "complaint_reopened"
	EventComplaintEscalated EventType = "complaint_escalated"
	EventSLABreach          EventType = "sla_breach"
	EventDeadlineReminder   EventType = "deadline_reminder"
)

// Event represents a domain event emitted by services and sweeps.
type Event struct {
	ID          string      `json:"id"`
	Type        EventType   `json:"type"`
	ComplaintID string      `json:"complaint_id,omitempty"`
	ActorID     string      `json:"actor_id,omitempty"`
	Timestamp   time.Time   `json:"timestamp"`
	Payload     interface{} `json:"payload"`
}

// ComplaintCreatedPayload payload.
type ComplaintCreatedPayload struct {
	RequesterID string                   `json:"requester_id"`
	Category    domain.ComplaintCategory `json:"category"`
	Priority    domain.ComplaintPriority `json:"priority"`
	Title       string                   `json:"title"`
}

// StatusChangedPayload payload.
type StatusChangedPayload struct {
	RequesterID string                 `json:"requester_id"`
	OldStatus   domain.ComplaintStatus `json:"old_status"`
	NewStatus   domain.ComplaintStatus `json:"new_status"`
	Notes       string                 `json:"notes,omitempty"`
}

// PriorityChangedPayload payload.
type PriorityChangedPayload struct {
	RequesterID string                   `json:"requester_id"`
	OldPriority domain.ComplaintPriority `json:"old_priority"`
	NewPriority domain.ComplaintPriority `json:"new_priority"`
}

// ComplaintAssignedPayload payload.
type ComplaintAssignedPayload struct {
	RequesterID string `json:"requester_id"`
	WorkerID    string `json:"worker_id"`
}

// ComplaintReopenedPayload payload.
type ComplaintReopenedPayload struct {
	RequesterID string `json:"requester_id"`
	Reason      string `json:"reason"`
}

// ComplaintEscalatedPayload payload.
type ComplaintEscalatedPayload struct {
	RequesterID string  `json:"requester_id"`
	AssignedTo  *string `json:"assigned_to,omitempty"`
	Reason      string  `json:"reason"`
}

// SLABreachPayload carries the aggregate result of one overdue-flagging sweep.
type SLABreachPayload struct {
	BreachedCount int `json:"breached_count"`
}

// DeadlineReminderPayload payload.
type DeadlineReminderPayload struct {
	WorkerID string    `json:"worker_id"`
	Deadline time.Time `json:"deadline"`
}
