package dto

import (
	"time"

	"github.com/sameerjoshi/docsimus-physicians-sub001/internal/domain/entity"

	"github.com/google/uuid"
)

// Request DTOs

type ListApplicationsRequest struct {
	Status string `json:"status" validate:"omitempty,oneof=draft submitted under_review verified rejected"`
	Page   int    `json:"page" validate:"gte=1"`
	Limit  int    `json:"limit" validate:"gte=1,lte=100"`
}

type RejectApplicationRequest struct {
	Reason string `json:"reason" validate:"required,max=2000"`
}

// Response DTOs

type ApplicationResponse struct {
	ID              uuid.UUID               `json:"id"`
	PhysicianID     uuid.UUID               `json:"physician_id"`
	Physician       *UserResponse           `json:"physician,omitempty"`
	Status          string                  `json:"status"`
	Cycle           int                     `json:"cycle"`
	Draft           entity.ApplicationDraft `json:"draft"`
	SubmittedAt     *time.Time              `json:"submitted_at,omitempty"`
	VerifiedAt      *time.Time              `json:"verified_at,omitempty"`
	RejectedAt      *time.Time              `json:"rejected_at,omitempty"`
	RejectionReason *string                 `json:"rejection_reason,omitempty"`
	CreatedAt       time.Time               `json:"created_at"`
	UpdatedAt       time.Time               `json:"updated_at"`
}

type ReadinessResponse struct {
	Sections   map[string]bool `json:"sections"`
	Incomplete []string        `json:"incomplete"`
	Ready      bool            `json:"ready"`
}

type DocumentSlotResponse struct {
	Kind         string     `json:"kind"`
	Status       string     `json:"status"`
	OriginalName string     `json:"original_name,omitempty"`
	ContentType  string     `json:"content_type,omitempty"`
	SizeBytes    int64      `json:"size_bytes"`
	UploadedAt   *time.Time `json:"uploaded_at,omitempty"`
}

type ApplicationDetailResponse struct {
	Application ApplicationResponse    `json:"application"`
	Readiness   ReadinessResponse      `json:"readiness"`
	Documents   []DocumentSlotResponse `json:"documents"`
	Components  []ComponentResponse    `json:"components"`
	Assignment  *AssignmentResponse    `json:"assignment,omitempty"`
	History     []AuditLogResponse     `json:"history"`
}
