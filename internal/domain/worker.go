package domain

import "time"

// WorkerRole enumerates internal operator roles.
type WorkerRole string

const (
	WorkerRoleStaff WorkerRole = "STAFF"
	WorkerRoleAdmin WorkerRole = "ADMIN"
)

// WorkerAvailability enumerates a worker's availability for assignment.
type WorkerAvailability string

const (
	AvailabilityAvailable WorkerAvailability = "AVAILABLE"
	AvailabilityBusy      WorkerAvailability = "BUSY"
	AvailabilityOffline   WorkerAvailability = "OFFLINE"
)

// Worker models a staff member or administrator. Expertise is an optional
// category tag used to prefer matching workers during auto-assignment.
// Complaints reference workers weakly; deleting a worker never deletes
// complaints.
type Worker struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         WorkerRole
	Expertise    *string
	Availability WorkerAvailability
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ValidAvailability reports whether a is a known availability value.
func ValidAvailability(a WorkerAvailability) bool {
	switch a {
	case AvailabilityAvailable, AvailabilityBusy, AvailabilityOffline:
		return true
	}
	return false
}
