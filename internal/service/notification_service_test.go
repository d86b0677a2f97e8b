package service

import (
	"context"
	"sync"
	"testing"

	"go.uber.org/zap"

	"github.com/spec-kit/complaint-service/internal/domain"
	"github.com/spec-kit/complaint-service/internal/events"
	"github.com/spec-kit/complaint-service/internal/notification"
)

type captureSink struct {
	mu      sync.Mutex
	intents []notification.Intent
}

func (s *captureSink) Deliver(ctx context.Context, intent notification.Intent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.intents = append(s.intents, intent)
	return nil
}

func (s *captureSink) byKind(k notification.Kind) []notification.Intent {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []notification.Intent
	for _, i := range s.intents {
		if i.Kind == k {
			out = append(out, i)
		}
	}
	return out
}

func newNotificationFixture() (events.Dispatcher, *fakeWorkerRepo, *captureSink) {
	dispatcher := events.NewInMemoryDispatcher()
	workers := newFakeWorkerRepo()
	sink := &captureSink{}
	svc := NewNotificationService(dispatcher, workers, sink, zap.NewNop())
	svc.RegisterHandlers()
	return dispatcher, workers, sink
}

func TestResolutionSendsFeedbackRequest(t *testing.T) {
	dispatcher, _, sink := newNotificationFixture()

	_ = dispatcher.Publish(context.Background(), events.Event{
		Type:        events.EventStatusChanged,
		ComplaintID: "c-1",
		Payload: events.StatusChangedPayload{
			RequesterID: "requester-1",
			OldStatus:   domain.ComplaintStatusInProgress,
			NewStatus:   domain.ComplaintStatusResolved,
		},
	})

	if got := sink.byKind(notification.KindResolved); len(got) != 1 {
		t.Fatalf("resolved intents = %d, want 1", len(got))
	}
	feedback := sink.byKind(notification.KindFeedbackRequest)
	if len(feedback) != 1 {
		t.Fatalf("feedback intents = %d, want 1", len(feedback))
	}
	if feedback[0].RecipientID != "requester-1" {
		t.Fatalf("feedback recipient = %s, want requester-1", feedback[0].RecipientID)
	}
}

func TestNonResolvedStatusChangeSkipsFeedback(t *testing.T) {
	dispatcher, _, sink := newNotificationFixture()

	_ = dispatcher.Publish(context.Background(), events.Event{
		Type:        events.EventStatusChanged,
		ComplaintID: "c-1",
		Payload: events.StatusChangedPayload{
			RequesterID: "requester-1",
			OldStatus:   domain.ComplaintStatusOpen,
			NewStatus:   domain.ComplaintStatusInProgress,
		},
	})

	if len(sink.byKind(notification.KindStatusUpdate)) != 1 {
		t.Fatal("status update intent not produced")
	}
	if len(sink.byKind(notification.KindFeedbackRequest)) != 0 {
		t.Fatal("feedback requested before resolution")
	}
}

func TestPriorityChangeNotifiesRequester(t *testing.T) {
	dispatcher, _, sink := newNotificationFixture()

	_ = dispatcher.Publish(context.Background(), events.Event{
		Type:        events.EventPriorityChanged,
		ComplaintID: "c-1",
		Payload: events.PriorityChangedPayload{
			RequesterID: "requester-1",
			OldPriority: domain.ComplaintPriorityLow,
			NewPriority: domain.ComplaintPriorityCritical,
		},
	})

	updates := sink.byKind(notification.KindStatusUpdate)
	if len(updates) != 1 {
		t.Fatalf("status update intents = %d, want 1", len(updates))
	}
	if updates[0].RecipientID != "requester-1" {
		t.Fatalf("recipient = %s, want requester-1", updates[0].RecipientID)
	}
	if updates[0].Message != "Your complaint priority changed from LOW to CRITICAL" {
		t.Fatalf("message = %q", updates[0].Message)
	}
}

func TestAssignmentNotifiesBothParties(t *testing.T) {
	dispatcher, _, sink := newNotificationFixture()

	_ = dispatcher.Publish(context.Background(), events.Event{
		Type:        events.EventComplaintAssigned,
		ComplaintID: "c-1",
		Payload: events.ComplaintAssignedPayload{
			RequesterID: "requester-1",
			WorkerID:    "w-1",
		},
	})

	assigned := sink.byKind(notification.KindAssigned)
	if len(assigned) != 2 {
		t.Fatalf("assigned intents = %d, want worker and requester", len(assigned))
	}
	recipients := map[string]bool{}
	for _, i := range assigned {
		recipients[i.RecipientID] = true
	}
	if !recipients["w-1"] || !recipients["requester-1"] {
		t.Fatalf("recipients = %v, want w-1 and requester-1", recipients)
	}
}

func TestEscalationFansOutToAdminsAndAssignee(t *testing.T) {
	dispatcher, workers, sink := newNotificationFixture()
	workers.put(&domain.Worker{ID: "admin-1", Role: domain.WorkerRoleAdmin})
	workers.put(&domain.Worker{ID: "admin-2", Role: domain.WorkerRoleAdmin})
	workers.put(&domain.Worker{ID: "w-1", Role: domain.WorkerRoleStaff})

	assignee := "w-1"
	_ = dispatcher.Publish(context.Background(), events.Event{
		Type:        events.EventComplaintEscalated,
		ComplaintID: "c-1",
		Payload: events.ComplaintEscalatedPayload{
			RequesterID: "requester-1",
			AssignedTo:  &assignee,
			Reason:      "Overdue by 3h",
		},
	})

	escalations := sink.byKind(notification.KindEscalation)
	if len(escalations) != 3 {
		t.Fatalf("escalation intents = %d, want 2 admins + assignee", len(escalations))
	}
}

func TestSLABreachNotifiesAdmins(t *testing.T) {
	dispatcher, workers, sink := newNotificationFixture()
	workers.put(&domain.Worker{ID: "admin-1", Role: domain.WorkerRoleAdmin})

	_ = dispatcher.Publish(context.Background(), events.Event{
		Type:    events.EventSLABreach,
		Payload: events.SLABreachPayload{BreachedCount: 4},
	})

	breaches := sink.byKind(notification.KindSLABreach)
	if len(breaches) != 1 {
		t.Fatalf("breach intents = %d, want 1", len(breaches))
	}
	if breaches[0].Message != "4 complaints breached their SLA deadline" {
		t.Fatalf("message = %q", breaches[0].Message)
	}
}
