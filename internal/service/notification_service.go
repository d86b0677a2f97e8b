package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spec-kit/complaint-service/internal/domain"
	"github.com/spec-kit/complaint-service/internal/events"
	"github.com/spec-kit/complaint-service/internal/notification"
	"github.com/spec-kit/complaint-service/internal/repository"
)

// NotificationService turns domain events into notification intents and
// hands them to the sink. Delivery failures are logged, never retried.
type NotificationService struct {
	dispatcher events.Dispatcher
	workers    repository.WorkerRepository
	sink       notification.Sink
	logger     *zap.Logger
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, workers repository.WorkerRepository, sink notification.Sink, logger *zap.Logger) *NotificationService {
	return &NotificationService{
		dispatcher: dispatcher,
		workers:    workers,
		sink:       sink,
		logger:     logger,
	}
}

// RegisterHandlers subscribes to all intent-producing events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventComplaintCreated, n.handleCreated)
	n.dispatcher.Subscribe(events.EventStatusChanged, n.handleStatusChanged)
	n.dispatcher.Subscribe(events.EventPriorityChanged, n.handlePriorityChanged)
	n.dispatcher.Subscribe(events.EventComplaintAssigned, n.handleAssigned)
	n.dispatcher.Subscribe(events.EventComplaintReopened, n.handleReopened)
	n.dispatcher.Subscribe(events.EventComplaintEscalated, n.handleEscalated)
	n.dispatcher.Subscribe(events.EventSLABreach, n.handleSLABreach)
	n.dispatcher.Subscribe(events.EventDeadlineReminder, n.handleReminder)
}

func (n *NotificationService) handleCreated(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.ComplaintCreatedPayload)
	if !ok {
		return nil
	}
	n.deliver(ctx, notification.Intent{
		RecipientID: payload.RequesterID,
		ComplaintID: event.ComplaintID,
		Kind:        notification.KindStatusUpdate,
		Message:     fmt.Sprintf("Your complaint %q has been registered", payload.Title),
	})
	return nil
}

func (n *NotificationService) handleStatusChanged(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.StatusChangedPayload)
	if !ok {
		return nil
	}
	kind := notification.KindStatusUpdate
	message := fmt.Sprintf("Your complaint status changed from %s to %s", payload.OldStatus, payload.NewStatus)
	if payload.NewStatus == domain.ComplaintStatusResolved {
		kind = notification.KindResolved
		message = "Your complaint has been resolved"
	}
	n.deliver(ctx, notification.Intent{
		RecipientID: payload.RequesterID,
		ComplaintID: event.ComplaintID,
		Kind:        kind,
		Message:     message,
	})
	if payload.NewStatus == domain.ComplaintStatusResolved {
		n.deliver(ctx, notification.Intent{
			RecipientID: payload.RequesterID,
			ComplaintID: event.ComplaintID,
			Kind:        notification.KindFeedbackRequest,
			Message:     "Please share feedback on how your complaint was handled",
		})
	}
	return nil
}

func (n *NotificationService) handlePriorityChanged(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.PriorityChangedPayload)
	if !ok {
		return nil
	}
	n.deliver(ctx, notification.Intent{
		RecipientID: payload.RequesterID,
		ComplaintID: event.ComplaintID,
		Kind:        notification.KindStatusUpdate,
		Message:     fmt.Sprintf("Your complaint priority changed from %s to %s", payload.OldPriority, payload.NewPriority),
	})
	return nil
}

func (n *NotificationService) handleAssigned(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.ComplaintAssignedPayload)
	if !ok {
		return nil
	}
	n.deliver(ctx, notification.Intent{
		RecipientID: payload.WorkerID,
		ComplaintID: event.ComplaintID,
		Kind:        notification.KindAssigned,
		Message:     "A complaint has been assigned to you",
	})
	n.deliver(ctx, notification.Intent{
		RecipientID: payload.RequesterID,
		ComplaintID: event.ComplaintID,
		Kind:        notification.KindAssigned,
		Message:     "Your complaint has been assigned to a staff member",
	})
	return nil
}

func (n *NotificationService) handleReopened(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.ComplaintReopenedPayload)
	if !ok {
		return nil
	}
	n.deliver(ctx, notification.Intent{
		RecipientID: payload.RequesterID,
		ComplaintID: event.ComplaintID,
		Kind:        notification.KindStatusUpdate,
		Message:     fmt.Sprintf("Your complaint has been reopened: %s", payload.Reason),
	})
	return nil
}

func (n *NotificationService) handleEscalated(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.ComplaintEscalatedPayload)
	if !ok {
		return nil
	}
	admins, err := n.workers.ListByRole(ctx, domain.WorkerRoleAdmin)
	if err != nil {
		n.logger.Warn("listing admins for escalation notice failed", zap.Error(err))
	}
	for _, admin := range admins {
		n.deliver(ctx, notification.Intent{
			RecipientID: admin.ID,
			ComplaintID: event.ComplaintID,
			Kind:        notification.KindEscalation,
			Message:     fmt.Sprintf("Complaint escalated: %s", payload.Reason),
		})
	}
	if payload.AssignedTo != nil {
		n.deliver(ctx, notification.Intent{
			RecipientID: *payload.AssignedTo,
			ComplaintID: event.ComplaintID,
			Kind:        notification.KindEscalation,
			Message:     fmt.Sprintf("A complaint assigned to you was escalated: %s", payload.Reason),
		})
	}
	return nil
}

func (n *NotificationService) handleSLABreach(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.SLABreachPayload)
	if !ok {
		return nil
	}
	admins, err := n.workers.ListByRole(ctx, domain.WorkerRoleAdmin)
	if err != nil {
		n.logger.Warn("listing admins for SLA breach notice failed", zap.Error(err))
		return nil
	}
	for _, admin := range admins {
		n.deliver(ctx, notification.Intent{
			RecipientID: admin.ID,
			Kind:        notification.KindSLABreach,
			Message:     fmt.Sprintf("%d complaints breached their SLA deadline", payload.BreachedCount),
		})
	}
	return nil
}

func (n *NotificationService) handleReminder(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.DeadlineReminderPayload)
	if !ok {
		return nil
	}
	n.deliver(ctx, notification.Intent{
		RecipientID: payload.WorkerID,
		ComplaintID: event.ComplaintID,
		Kind:        notification.KindReminder,
		Message:     fmt.Sprintf("Complaint SLA deadline at %s is approaching", payload.Deadline.Format("15:04 Jan 2")),
	})
	return nil
}

func (n *NotificationService) deliver(ctx context.Context, intent notification.Intent) {
	if n.sink == nil {
		return
	}
	if err := n.sink.Deliver(ctx, intent); err != nil {
		n.logger.Warn("intent delivery failed",
			zap.String("kind", string(intent.Kind)),
			zap.String("recipient_id", intent.RecipientID),
			zap.Error(err))
	}
}
