package entity

import "github.com/google/uuid"

// ApplicationFilter is a domain-level filter for listing applications.
// Used by repository layer to avoid coupling with delivery DTOs.
type ApplicationFilter struct {
	Status     ApplicationStatus // optional exact status
	ReviewerID *uuid.UUID        // current-cycle assignee
	Limit      int
	Offset     int
}

// ReviewerWorkload pairs a reviewer with their active assignment count
type ReviewerWorkload struct {
	ReviewerID uuid.UUID
	Workload   int64
}
