package notification

import "context"

// Kind enumerates notification intent categories.
type Kind string

const (
	KindAssigned        Kind = "ASSIGNED"
	KindStatusUpdate    Kind = "STATUS_UPDATE"
	KindResolved        Kind = "RESOLVED"
	KindReminder        Kind = "REMINDER"
	KindSLABreach       Kind = "SLA_BREACH"
	KindFeedbackRequest Kind = "FEEDBACK_REQUEST"
	KindEscalation      Kind = "ESCALATION"
)

// Intent is the ephemeral value object handed to the notification sink.
// Delivery, persistence and read/unread state are entirely the sink
// consumer's responsibility; the engine does not retry.
type Intent struct {
	RecipientID string `json:"recipient_id"`
	ComplaintID string `json:"complaint_id,omitempty"`
	Kind        Kind   `json:"kind"`
	Message     string `json:"message"`
}

// Sink accepts intents produced by the engine.
type Sink interface {
	Deliver(ctx context.Context, intent Intent) error
}
