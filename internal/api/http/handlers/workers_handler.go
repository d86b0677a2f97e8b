package handlers

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/complaint-service/internal/api/dto"
	"github.com/spec-kit/complaint-service/internal/domain"
	"github.com/spec-kit/complaint-service/internal/repository"
	"github.com/spec-kit/complaint-service/internal/service"
	apperrors "github.com/spec-kit/complaint-service/pkg/util"
)

// WorkersHandler manages worker account endpoints.
type WorkersHandler struct {
	workers *service.WorkerService
}

// NewWorkersHandler constructs handler.
func NewWorkersHandler(workers *service.WorkerService) *WorkersHandler {
	return &WorkersHandler{workers: workers}
}

// Register POST /workers.
func (h *WorkersHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterWorkerRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	worker, err := h.workers.Register(c.Context(), service.WorkerRegisterInput{
		Name:      req.Name,
		Email:     req.Email,
		Password:  req.Password,
		Role:      req.Role,
		Expertise: req.Expertise,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.FromWorker(worker)})
}

// Login POST /workers/login.
func (h *WorkersHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		return apperrors.NewValidationError("email and password required", nil)
	}

	token, expiresAt, worker, err := h.workers.Login(c.Context(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.LoginResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		Worker:    dto.FromWorker(worker),
	}})
}

// List GET /workers.
func (h *WorkersHandler) List(c *fiber.Ctx) error {
	filter := repository.WorkerFilter{}
	if role := c.Query("role"); role != "" {
		workerRole := domain.WorkerRole(role)
		filter.Role = &workerRole
	}
	if availabilityStr := c.Query("availability"); availabilityStr != "" {
		for _, part := range strings.Split(availabilityStr, ",") {
			filter.Availability = append(filter.Availability, domain.WorkerAvailability(strings.TrimSpace(part)))
		}
	}
	filter.Limit = parseQueryInt(c.Query("limit"), 50)
	filter.Offset = parseQueryInt(c.Query("offset"), 0)

	workers, err := h.workers.List(c.Context(), filter)
	if err != nil {
		return err
	}
	items := make([]dto.WorkerResponse, 0, len(workers))
	for i := range workers {
		items = append(items, dto.FromWorker(&workers[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// UpdateAvailability PATCH /workers/:id/availability.
func (h *WorkersHandler) UpdateAvailability(c *fiber.Ctx) error {
	actor, err := requireActor(c)
	if err != nil {
		return err
	}
	var req dto.UpdateAvailabilityRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	if err := h.workers.UpdateAvailability(c.Context(), actor, c.Params("id"), req.Availability); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}
