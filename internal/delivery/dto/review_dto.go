package dto

import (
	"time"

	"github.com/google/uuid"
)

// Request DTOs

// DecisionRequest records a component decision. Status and comment are
// checked by the workflow so their errors carry workflow codes.
type DecisionRequest struct {
	Status  string `json:"status"`
	Comment string `json:"comment"`
}

type AssignRequest struct {
	ReviewerID string `json:"reviewer_id" validate:"required,uuid"`
}

// Response DTOs

type ComponentResponse struct {
	ID        uuid.UUID  `json:"id"`
	Kind      string     `json:"kind"`
	Cycle     int        `json:"cycle"`
	Status    string     `json:"status"`
	Checklist []string   `json:"checklist"`
	Archived  bool       `json:"archived"`
	DecidedBy *uuid.UUID `json:"decided_by,omitempty"`
	DecidedAt *time.Time `json:"decided_at,omitempty"`
}

type CommentResponse struct {
	ID        int64         `json:"id"`
	Author    *UserResponse `json:"author,omitempty"`
	AuthorID  uuid.UUID     `json:"author_id"`
	Decision  string        `json:"decision,omitempty"`
	Body      string        `json:"body"`
	CreatedAt time.Time     `json:"created_at"`
}

type AssignmentResponse struct {
	ID            uuid.UUID     `json:"id"`
	ApplicationID uuid.UUID     `json:"application_id"`
	Cycle         int           `json:"cycle"`
	Reviewer      *UserResponse `json:"reviewer,omitempty"`
	ReviewerID    uuid.UUID     `json:"reviewer_id"`
	AssignedBy    *uuid.UUID    `json:"assigned_by,omitempty"`
	AssignedAt    time.Time     `json:"assigned_at"`
}

type WorkloadResponse struct {
	ReviewerID uuid.UUID `json:"reviewer_id"`
	Workload   int64     `json:"workload"`
}
