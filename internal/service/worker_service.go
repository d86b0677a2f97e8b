package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/complaint-service/internal/auth"
	"github.com/spec-kit/complaint-service/internal/domain"
	"github.com/spec-kit/complaint-service/internal/repository"
	apperrors "github.com/spec-kit/complaint-service/pkg/util"
)

// WorkerService manages worker accounts and availability.
type WorkerService struct {
	workers    repository.WorkerRepository
	tokens     *auth.TokenManager
	bcryptCost int
}

// NewWorkerService constructs the service.
func NewWorkerService(workers repository.WorkerRepository, tokens *auth.TokenManager, bcryptCost int) *WorkerService {
	return &WorkerService{workers: workers, tokens: tokens, bcryptCost: bcryptCost}
}

// TokenManager exposes the underlying token manager for middleware wiring.
func (s *WorkerService) TokenManager() *auth.TokenManager {
	return s.tokens
}

// WorkerRegisterInput describes registration payload.
type WorkerRegisterInput struct {
	Name      string
	Email     string
	Password  string
	Role      domain.WorkerRole
	Expertise *string
}

// Register creates a worker account.
func (s *WorkerService) Register(ctx context.Context, input WorkerRegisterInput) (*domain.Worker, error) {
	if strings.TrimSpace(input.Name) == "" || strings.TrimSpace(input.Email) == "" || input.Password == "" {
		return nil, apperrors.NewValidationError("name, email and password are required", nil)
	}
	if input.Role != domain.WorkerRoleStaff && input.Role != domain.WorkerRoleAdmin {
		input.Role = domain.WorkerRoleStaff
	}

	if existing, err := s.workers.GetByEmail(ctx, input.Email); err == nil && existing != nil {
		return nil, apperrors.NewConflict("email already registered", map[string]any{"email": input.Email})
	} else if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.MapError(err)
	}

	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	worker := &domain.Worker{
		Name:         strings.TrimSpace(input.Name),
		Email:        strings.ToLower(strings.TrimSpace(input.Email)),
		PasswordHash: hash,
		Role:         input.Role,
		Expertise:    input.Expertise,
		Availability: domain.AvailabilityAvailable,
	}
	if err := s.workers.Create(ctx, worker); err != nil {
		return nil, apperrors.MapError(err)
	}
	return worker, nil
}

// Login validates credentials and issues an access token.
func (s *WorkerService) Login(ctx context.Context, email, password string) (string, time.Time, *domain.Worker, error) {
	worker, err := s.workers.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", time.Time{}, nil, apperrors.NewUnauthorized("invalid credentials")
		}
		return "", time.Time{}, nil, apperrors.MapError(err)
	}
	if err := auth.ComparePassword(worker.PasswordHash, password); err != nil {
		return "", time.Time{}, nil, apperrors.NewUnauthorized("invalid credentials")
	}
	token, expiresAt, err := s.tokens.GenerateToken(worker.ID, worker.Role)
	if err != nil {
		return "", time.Time{}, nil, apperrors.MapError(err)
	}
	return token, expiresAt, worker, nil
}

// List returns workers matching the filter.
func (s *WorkerService) List(ctx context.Context, filter repository.WorkerFilter) ([]domain.Worker, error) {
	list, err := s.workers.List(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return list, nil
}

// UpdateAvailability changes a worker's availability. Workers may change
// their own; admins may change anyone's.
func (s *WorkerService) UpdateAvailability(ctx context.Context, actor Actor, workerID string, availability domain.WorkerAvailability) error {
	if !domain.ValidAvailability(availability) {
		return apperrors.NewValidationError("unknown availability", map[string]any{"availability": availability})
	}
	if actor.ID != workerID && !actor.Admin {
		return apperrors.NewForbidden("cannot change another worker's availability")
	}
	if err := s.workers.UpdateAvailability(ctx, workerID, availability); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("worker", map[string]any{"worker_id": workerID})
		}
		return apperrors.MapError(err)
	}
	return nil
}
