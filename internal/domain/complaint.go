package domain

import "time"

// ComplaintStatus enumerates lifecycle states for complaints.
type ComplaintStatus string

const (
	ComplaintStatusOpen       ComplaintStatus = "OPEN"
	ComplaintStatusAssigned   ComplaintStatus = "ASSIGNED"
	ComplaintStatusInProgress ComplaintStatus = "IN_PROGRESS"
	ComplaintStatusResolved   ComplaintStatus = "RESOLVED"
)

// ComplaintPriority enumerates SLA urgency.
type ComplaintPriority string

const (
	ComplaintPriorityLow      ComplaintPriority = "LOW"
	ComplaintPriorityMedium   ComplaintPriority = "MEDIUM"
	ComplaintPriorityHigh     ComplaintPriority = "HIGH"
	ComplaintPriorityCritical ComplaintPriority = "CRITICAL"
)

// ComplaintCategory enumerates service areas a complaint belongs to.
type ComplaintCategory string

const (
	CategoryPlumbing   ComplaintCategory = "PLUMBING"
	CategoryElectrical ComplaintCategory = "ELECTRICAL"
	CategoryFacility   ComplaintCategory = "FACILITY"
	CategoryIT         ComplaintCategory = "IT"
	CategoryOther      ComplaintCategory = "OTHER"
)

// Complaint is the aggregate for service requests tracked against an SLA.
//
// SLADeadline is always derived from CreatedAt plus the priority's SLA
// duration; a priority change re-bases it from CreatedAt, never from the
// moment of the edit. IsOverdue and IsEscalated are one-way markers set by
// the periodic sweeps; only reopen clears them.
type Complaint struct {
	ID          string
	RequesterID string
	Title       string
	Description string
	Category    ComplaintCategory
	Priority    ComplaintPriority
	Status      ComplaintStatus
	AssignedTo  *string
	SLADeadline time.Time
	ResolvedAt  *time.Time
	IsOverdue   bool
	IsEscalated bool
	IsRecurring bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// PriorityWeight returns the workload weight of a priority. Workload is the
// weighted count of a worker's unresolved assigned complaints.
func PriorityWeight(p ComplaintPriority) int {
	switch p {
	case ComplaintPriorityCritical:
		return 4
	case ComplaintPriorityHigh:
		return 3
	case ComplaintPriorityMedium:
		return 2
	default:
		return 1
	}
}

// ValidPriority reports whether p is a known priority value.
func ValidPriority(p ComplaintPriority) bool {
	switch p {
	case ComplaintPriorityLow, ComplaintPriorityMedium, ComplaintPriorityHigh, ComplaintPriorityCritical:
		return true
	}
	return false
}

// ValidCategory reports whether c is a known category value.
func ValidCategory(c ComplaintCategory) bool {
	switch c {
	case CategoryPlumbing, CategoryElectrical, CategoryFacility, CategoryIT, CategoryOther:
		return true
	}
	return false
}

// ValidStatus reports whether s is a known status value.
func ValidStatus(s ComplaintStatus) bool {
	switch s {
	case ComplaintStatusOpen, ComplaintStatusAssigned, ComplaintStatusInProgress, ComplaintStatusResolved:
		return true
	}
	return false
}
