package dto

import (
	"time"

	"github.com/spec-kit/complaint-service/internal/domain"
)

// RegisterWorkerRequest payload.
type RegisterWorkerRequest struct {
	Name      string            `json:"name"`
	Email     string            `json:"email"`
	Password  string            `json:"password"`
	Role      domain.WorkerRole `json:"role"`
	Expertise *string           `json:"expertise"`
}

// LoginRequest payload.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse carries the issued access token.
type LoginResponse struct {
	Token     string         `json:"token"`
	ExpiresAt time.Time      `json:"expires_at"`
	Worker    WorkerResponse `json:"worker"`
}

// UpdateAvailabilityRequest payload.
type UpdateAvailabilityRequest struct {
	Availability domain.WorkerAvailability `json:"availability"`
}

// WorkerResponse is the public worker representation.
type WorkerResponse struct {
	ID           string                    `json:"id"`
	Name         string                    `json:"name"`
	Email        string                    `json:"email"`
	Role         domain.WorkerRole         `json:"role"`
	Expertise    *string                   `json:"expertise"`
	Availability domain.WorkerAvailability `json:"availability"`
	CreatedAt    time.Time                 `json:"created_at"`
}

// FromWorker maps a domain worker to its response shape.
func FromWorker(w *domain.Worker) WorkerResponse {
	return WorkerResponse{
		ID:           w.ID,
		Name:         w.Name,
		Email:        w.Email,
		Role:         w.Role,
		Expertise:    w.Expertise,
		Availability: w.Availability,
		CreatedAt:    w.CreatedAt,
	}
}
