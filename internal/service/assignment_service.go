package service

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/complaint-service/internal/domain"
	"github.com/spec-kit/complaint-service/internal/repository"
	apperrors "github.com/spec-kit/complaint-service/pkg/util"
)

// AssignmentService selects workers for complaints based on expertise and
// current workload.
type AssignmentService struct {
	complaints repository.ComplaintRepository
	workers    repository.WorkerRepository
	workflow   *WorkflowService
}

// AssignmentDependencies bundles dependencies.
type AssignmentDependencies struct {
	ComplaintRepo repository.ComplaintRepository
	WorkerRepo    repository.WorkerRepository
	Workflow      *WorkflowService
}

// NewAssignmentService creates the service.
func NewAssignmentService(deps AssignmentDependencies) *AssignmentService {
	return &AssignmentService{
		complaints: deps.ComplaintRepo,
		workers:    deps.WorkerRepo,
		workflow:   deps.Workflow,
	}
}

// BulkResult reports per-id outcomes of a bulk operation. A failure on one
// id never rolls back prior successes; partial success is the contract.
type BulkResult struct {
	Succeeded []string          `json:"succeeded"`
	Failed    map[string]string `json:"failed"`
}

// AutoAssign picks the best available staff member for the complaint and
// delegates to the workflow Assign operation. Candidates whose expertise
// matches the complaint category are preferred as a group; within the pool
// the lowest workload wins, ties broken by lowest worker id for determinism.
func (s *AssignmentService) AutoAssign(ctx context.Context, complaintID string, actor Actor) (*domain.Complaint, error) {
	complaint, err := s.complaints.GetByID(ctx, complaintID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("complaint", map[string]any{"complaint_id": complaintID})
		}
		return nil, apperrors.MapError(err)
	}

	candidates, err := s.workers.ListAssignable(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if len(candidates) == 0 {
		return nil, apperrors.NewNoAvailableStaff()
	}

	pool := preferByExpertise(candidates, complaint.Category)

	ids := make([]string, 0, len(pool))
	for _, w := range pool {
		ids = append(ids, w.ID)
	}
	workloads, err := s.workers.Workloads(ctx, ids)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	chosen := pickLeastLoaded(pool, workloads)
	return s.workflow.Assign(ctx, complaint.ID, chosen.ID, actor)
}

// BulkAssign assigns a list of complaints to one worker, isolating per-id
// failures.
func (s *AssignmentService) BulkAssign(ctx context.Context, complaintIDs []string, workerID string, actor Actor) BulkResult {
	result := BulkResult{Failed: map[string]string{}}
	for _, id := range complaintIDs {
		if _, err := s.workflow.Assign(ctx, id, workerID, actor); err != nil {
			result.Failed[id] = apperrors.ToDomainError(err).Message
			continue
		}
		result.Succeeded = append(result.Succeeded, id)
	}
	return result
}

// BulkUpdateStatus applies one status transition to each id independently.
func (s *AssignmentService) BulkUpdateStatus(ctx context.Context, complaintIDs []string, target domain.ComplaintStatus, actor Actor, notes string) BulkResult {
	result := BulkResult{Failed: map[string]string{}}
	for _, id := range complaintIDs {
		if _, err := s.workflow.Transition(ctx, id, target, actor, notes); err != nil {
			result.Failed[id] = apperrors.ToDomainError(err).Message
			continue
		}
		result.Succeeded = append(result.Succeeded, id)
	}
	return result
}

// preferByExpertise narrows candidates to those whose expertise matches the
// category (case-insensitive) when any do; otherwise the full set stands.
func preferByExpertise(candidates []domain.Worker, category domain.ComplaintCategory) []domain.Worker {
	matching := make([]domain.Worker, 0, len(candidates))
	for _, w := range candidates {
		if w.Expertise != nil && strings.EqualFold(*w.Expertise, string(category)) {
			matching = append(matching, w)
		}
	}
	if len(matching) > 0 {
		return matching
	}
	return candidates
}

func pickLeastLoaded(pool []domain.Worker, workloads map[string]int) domain.Worker {
	sorted := append([]domain.Worker{}, pool...)
	sort.Slice(sorted, func(i, j int) bool {
		li, lj := workloads[sorted[i].ID], workloads[sorted[j].ID]
		if li != lj {
			return li < lj
		}
		return sorted[i].ID < sorted[j].ID
	})
	return sorted[0]
}
