package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/complaint-service/internal/api/dto"
	"github.com/spec-kit/complaint-service/internal/auth"
	"github.com/spec-kit/complaint-service/internal/domain"
	"github.com/spec-kit/complaint-service/internal/service"
	apperrors "github.com/spec-kit/complaint-service/pkg/util"
)

// ComplaintsHandler manages complaint endpoints.
type ComplaintsHandler struct {
	complaints *service.ComplaintService
	workflow   *service.WorkflowService
	assignment *service.AssignmentService
}

// NewComplaintsHandler constructs handler.
func NewComplaintsHandler(complaints *service.ComplaintService, workflow *service.WorkflowService, assignment *service.AssignmentService) *ComplaintsHandler {
	return &ComplaintsHandler{complaints: complaints, workflow: workflow, assignment: assignment}
}

// Create POST /complaints. Public: requesters are identified by the id they
// submit, authentication of requesters happens upstream.
func (h *ComplaintsHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateComplaintRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	complaint, err := h.complaints.Create(c.Context(), service.ComplaintCreateInput{
		RequesterID: req.RequesterID,
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Priority:    req.Priority,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.FromComplaint(complaint)})
}

// List GET /complaints.
func (h *ComplaintsHandler) List(c *fiber.Ctx) error {
	input := parseComplaintQuery(c)
	complaints, err := h.complaints.List(c.Context(), input)
	if err != nil {
		return err
	}
	items := make([]dto.ComplaintResponse, 0, len(complaints))
	for i := range complaints {
		items = append(items, dto.FromComplaint(&complaints[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Get GET /complaints/:id.
func (h *ComplaintsHandler) Get(c *fiber.Ctx) error {
	complaint, err := h.complaints.Get(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromComplaint(complaint)})
}

// Update PATCH /complaints/:id.
func (h *ComplaintsHandler) Update(c *fiber.Ctx) error {
	actor, err := requireActor(c)
	if err != nil {
		return err
	}
	var req dto.UpdateComplaintRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	complaint, err := h.complaints.Update(c.Context(), c.Params("id"), service.ComplaintUpdateInput{
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
	}, actor)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromComplaint(complaint)})
}

// Delete DELETE /complaints/:id.
func (h *ComplaintsHandler) Delete(c *fiber.Ctx) error {
	if err := h.complaints.Delete(c.Context(), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// UpdateStatus POST /complaints/:id/status.
func (h *ComplaintsHandler) UpdateStatus(c *fiber.Ctx) error {
	actor, err := requireActor(c)
	if err != nil {
		return err
	}
	var req dto.UpdateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if !domain.ValidStatus(req.Status) {
		return apperrors.NewValidationError("unknown status", map[string]any{"status": req.Status})
	}

	complaint, err := h.workflow.Transition(c.Context(), c.Params("id"), req.Status, actor, req.Notes)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromComplaint(complaint)})
}

// Assign POST /complaints/:id/assign.
func (h *ComplaintsHandler) Assign(c *fiber.Ctx) error {
	actor, err := requireActor(c)
	if err != nil {
		return err
	}
	var req dto.AssignRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if strings.TrimSpace(req.WorkerID) == "" {
		return apperrors.NewValidationError("worker_id required", nil)
	}

	complaint, err := h.workflow.Assign(c.Context(), c.Params("id"), req.WorkerID, actor)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromComplaint(complaint)})
}

// AutoAssign POST /complaints/:id/auto-assign.
func (h *ComplaintsHandler) AutoAssign(c *fiber.Ctx) error {
	actor, err := requireActor(c)
	if err != nil {
		return err
	}
	complaint, err := h.assignment.AutoAssign(c.Context(), c.Params("id"), actor)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromComplaint(complaint)})
}

// Reopen POST /complaints/:id/reopen. Public: the original requester may
// reopen without a worker account, so the actor id travels in the payload.
func (h *ComplaintsHandler) Reopen(c *fiber.Ctx) error {
	var req dto.ReopenRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if strings.TrimSpace(req.ActorID) == "" {
		return apperrors.NewValidationError("actor_id required", nil)
	}

	actor := service.Actor{ID: req.ActorID}
	if principal, ok := auth.PrincipalFromContext(c); ok && principal.Worker != nil {
		actor = service.Actor{ID: principal.Worker.ID, Admin: principal.Admin()}
	}

	complaint, err := h.workflow.Reopen(c.Context(), c.Params("id"), req.Reason, actor)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromComplaint(complaint)})
}

// History GET /complaints/:id/history.
func (h *ComplaintsHandler) History(c *fiber.Ctx) error {
	limit := parseQueryInt(c.Query("limit"), 50)
	offset := parseQueryInt(c.Query("offset"), 0)
	entries, err := h.complaints.History(c.Context(), c.Params("id"), limit, offset)
	if err != nil {
		return err
	}
	items := make([]dto.StatusHistoryResponse, 0, len(entries))
	for i := range entries {
		items = append(items, dto.FromHistory(&entries[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// BulkAssign POST /complaints/bulk/assign.
func (h *ComplaintsHandler) BulkAssign(c *fiber.Ctx) error {
	actor, err := requireActor(c)
	if err != nil {
		return err
	}
	var req dto.BulkAssignRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if len(req.ComplaintIDs) == 0 || strings.TrimSpace(req.WorkerID) == "" {
		return apperrors.NewValidationError("complaint_ids and worker_id required", nil)
	}

	result := h.assignment.BulkAssign(c.Context(), req.ComplaintIDs, req.WorkerID, actor)
	return c.JSON(fiber.Map{"data": result})
}

// BulkUpdateStatus POST /complaints/bulk/status.
func (h *ComplaintsHandler) BulkUpdateStatus(c *fiber.Ctx) error {
	actor, err := requireActor(c)
	if err != nil {
		return err
	}
	var req dto.BulkStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if len(req.ComplaintIDs) == 0 {
		return apperrors.NewValidationError("complaint_ids required", nil)
	}
	if !domain.ValidStatus(req.Status) {
		return apperrors.NewValidationError("unknown status", map[string]any{"status": req.Status})
	}

	result := h.assignment.BulkUpdateStatus(c.Context(), req.ComplaintIDs, req.Status, actor, req.Notes)
	return c.JSON(fiber.Map{"data": result})
}

func requireActor(c *fiber.Ctx) (service.Actor, error) {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.Worker == nil {
		return service.Actor{}, apperrors.NewUnauthorized("worker required")
	}
	return service.Actor{ID: principal.Worker.ID, Admin: principal.Admin()}, nil
}

func parseComplaintQuery(c *fiber.Ctx) service.ComplaintListInput {
	input := service.ComplaintListInput{}
	if requester := c.Query("requester_id"); requester != "" {
		input.RequesterID = &requester
	}
	if assigned := c.Query("assigned_to"); assigned != "" {
		input.AssignedTo = &assigned
	}
	if statusStr := c.Query("status"); statusStr != "" {
		for _, part := range strings.Split(statusStr, ",") {
			input.Statuses = append(input.Statuses, domain.ComplaintStatus(strings.TrimSpace(part)))
		}
	}
	if priorityStr := c.Query("priority"); priorityStr != "" {
		for _, part := range strings.Split(priorityStr, ",") {
			input.Priorities = append(input.Priorities, domain.ComplaintPriority(strings.TrimSpace(part)))
		}
	}
	if categoryStr := c.Query("category"); categoryStr != "" {
		for _, part := range strings.Split(categoryStr, ",") {
			input.Categories = append(input.Categories, domain.ComplaintCategory(strings.TrimSpace(part)))
		}
	}
	input.Page = parseQueryInt(c.Query("page"), 0)
	input.PageSize = parseQueryInt(c.Query("page_size"), 0)
	return input
}

func parseQueryInt(val string, def int) int {
	if val == "" {
		return def
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return def
	}
	return parsed
}
