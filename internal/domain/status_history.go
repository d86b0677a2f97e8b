package domain

import "time"

// StatusHistory is an append-only audit trail entry recorded once per status
// change. PreviousStatus is nil for the creation entry. Rows are never
// mutated; they are removed only when the owning complaint is hard-deleted.
type StatusHistory struct {
	ID             string
	ComplaintID    string
	PreviousStatus *ComplaintStatus
	NewStatus      ComplaintStatus
	ActorID        string
	Notes          string
	CreatedAt      time.Time
}
