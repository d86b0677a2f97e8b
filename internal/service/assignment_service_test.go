package service

import (
	"context"
	"testing"

	"github.com/spec-kit/complaint-service/internal/domain"
	apperrors "github.com/spec-kit/complaint-service/pkg/util"
)

func newAssignmentFixture() (*AssignmentService, *fakeComplaintRepo, *fakeWorkerRepo) {
	complaints := newFakeComplaintRepo()
	workers := newFakeWorkerRepo()
	workflow := NewWorkflowService(WorkflowDependencies{
		ComplaintRepo: complaints,
		WorkerRepo:    workers,
		HistoryRepo:   newFakeHistoryRepo(),
		Dispatcher:    &recordingDispatcher{},
	})
	svc := NewAssignmentService(AssignmentDependencies{
		ComplaintRepo: complaints,
		WorkerRepo:    workers,
		Workflow:      workflow,
	})
	return svc, complaints, workers
}

func staffWorker(id string, expertise *string) *domain.Worker {
	return &domain.Worker{
		ID:           id,
		Name:         id,
		Role:         domain.WorkerRoleStaff,
		Expertise:    expertise,
		Availability: domain.AvailabilityAvailable,
	}
}

func strPtr(s string) *string { return &s }

func TestAutoAssignPicksLowestWorkload(t *testing.T) {
	svc, complaints, workers := newAssignmentFixture()
	seedComplaint(complaints, "c-1", domain.ComplaintStatusOpen)
	workers.put(staffWorker("w-1", nil))
	workers.put(staffWorker("w-2", nil))
	workers.put(staffWorker("w-3", nil))
	workers.workloads["w-1"] = 5
	workers.workloads["w-2"] = 0
	workers.workloads["w-3"] = 2

	got, err := svc.AutoAssign(context.Background(), "c-1", Actor{ID: "admin-1", Admin: true})
	if err != nil {
		t.Fatalf("auto assign: %v", err)
	}
	if *got.AssignedTo != "w-2" {
		t.Fatalf("assigned_to = %s, want w-2 (lowest workload)", *got.AssignedTo)
	}
}

func TestAutoAssignTieBreaksOnLowestWorkerID(t *testing.T) {
	svc, complaints, workers := newAssignmentFixture()
	seedComplaint(complaints, "c-1", domain.ComplaintStatusOpen)
	workers.put(staffWorker("w-2", nil))
	workers.put(staffWorker("w-1", nil))
	workers.put(staffWorker("w-3", nil))
	workers.workloads["w-1"] = 1
	workers.workloads["w-2"] = 1
	workers.workloads["w-3"] = 1

	got, err := svc.AutoAssign(context.Background(), "c-1", Actor{ID: "admin-1", Admin: true})
	if err != nil {
		t.Fatalf("auto assign: %v", err)
	}
	if *got.AssignedTo != "w-1" {
		t.Fatalf("assigned_to = %s, want w-1 (tie break)", *got.AssignedTo)
	}
}

func TestAutoAssignPrefersExpertiseMatch(t *testing.T) {
	svc, complaints, workers := newAssignmentFixture()
	c := seedComplaint(complaints, "c-1", domain.ComplaintStatusOpen)
	c.Category = domain.CategoryPlumbing
	complaints.put(c)

	// The generalist has a lower workload, but the expertise group wins as
	// a whole. Matching is case-insensitive.
	workers.put(staffWorker("w-1", nil))
	workers.put(staffWorker("w-2", strPtr("plumbing")))
	workers.workloads["w-1"] = 0
	workers.workloads["w-2"] = 7

	got, err := svc.AutoAssign(context.Background(), "c-1", Actor{ID: "admin-1", Admin: true})
	if err != nil {
		t.Fatalf("auto assign: %v", err)
	}
	if *got.AssignedTo != "w-2" {
		t.Fatalf("assigned_to = %s, want w-2 (expertise match)", *got.AssignedTo)
	}
}

func TestAutoAssignFallsBackWithoutExpertiseMatch(t *testing.T) {
	svc, complaints, workers := newAssignmentFixture()
	c := seedComplaint(complaints, "c-1", domain.ComplaintStatusOpen)
	c.Category = domain.CategoryIT
	complaints.put(c)

	workers.put(staffWorker("w-1", strPtr("PLUMBING")))
	workers.put(staffWorker("w-2", nil))
	workers.workloads["w-1"] = 3
	workers.workloads["w-2"] = 1

	got, err := svc.AutoAssign(context.Background(), "c-1", Actor{ID: "admin-1", Admin: true})
	if err != nil {
		t.Fatalf("auto assign: %v", err)
	}
	if *got.AssignedTo != "w-2" {
		t.Fatalf("assigned_to = %s, want w-2", *got.AssignedTo)
	}
}

func TestAutoAssignNoAvailableStaff(t *testing.T) {
	svc, complaints, workers := newAssignmentFixture()
	seedComplaint(complaints, "c-1", domain.ComplaintStatusOpen)

	offline := staffWorker("w-1", nil)
	offline.Availability = domain.AvailabilityOffline
	workers.put(offline)
	workers.put(&domain.Worker{ID: "w-2", Role: domain.WorkerRoleAdmin, Availability: domain.AvailabilityAvailable})

	_, err := svc.AutoAssign(context.Background(), "c-1", Actor{ID: "admin-1", Admin: true})
	if apperrors.CodeOf(err) != apperrors.CodeNoAvailableStaff {
		t.Fatalf("code = %s, want NO_AVAILABLE_STAFF", apperrors.CodeOf(err))
	}
}

func TestBulkAssignPartialSuccess(t *testing.T) {
	svc, complaints, workers := newAssignmentFixture()
	seedComplaint(complaints, "c-1", domain.ComplaintStatusOpen)
	seedComplaint(complaints, "c-2", domain.ComplaintStatusOpen)
	workers.put(staffWorker("w-1", nil))

	result := svc.BulkAssign(context.Background(), []string{"c-1", "missing", "c-2"}, "w-1", Actor{ID: "admin-1", Admin: true})
	if len(result.Succeeded) != 2 {
		t.Fatalf("succeeded = %v, want 2 entries", result.Succeeded)
	}
	if _, ok := result.Failed["missing"]; !ok {
		t.Fatalf("failed map missing entry for unknown id: %v", result.Failed)
	}

	for _, id := range []string{"c-1", "c-2"} {
		got, _ := complaints.GetByID(context.Background(), id)
		if got.AssignedTo == nil || *got.AssignedTo != "w-1" {
			t.Fatalf("%s not assigned despite partial success contract", id)
		}
	}
}

func TestBulkUpdateStatusIsolatesFailures(t *testing.T) {
	svc, complaints, _ := newAssignmentFixture()
	seedComplaint(complaints, "c-1", domain.ComplaintStatusAssigned)
	seedComplaint(complaints, "c-2", domain.ComplaintStatusResolved)
	seedComplaint(complaints, "c-3", domain.ComplaintStatusAssigned)

	result := svc.BulkUpdateStatus(context.Background(), []string{"c-1", "c-2", "c-3"}, domain.ComplaintStatusInProgress, Actor{ID: "staff-1"}, "")
	if len(result.Succeeded) != 2 {
		t.Fatalf("succeeded = %v, want c-1 and c-3", result.Succeeded)
	}
	if _, ok := result.Failed["c-2"]; !ok {
		t.Fatalf("resolved complaint should fail the transition: %v", result.Failed)
	}

	got, _ := complaints.GetByID(context.Background(), "c-3")
	if got.Status != domain.ComplaintStatusInProgress {
		t.Fatalf("c-3 status = %s, want IN_PROGRESS", got.Status)
	}
}
