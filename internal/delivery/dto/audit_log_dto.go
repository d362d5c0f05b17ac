package dto

import (
	"time"

	"github.com/google/uuid"
)

// Request DTOs

type AuditLogListRequest struct {
	Page  int `json:"page" validate:"gte=1"`
	Limit int `json:"limit" validate:"gte=1,lte=100"`
}

// Response DTOs

type AuditLogResponse struct {
	ID            int64                  `json:"id"`
	User          *UserResponse          `json:"user,omitempty"`
	ApplicationID *uuid.UUID             `json:"application_id,omitempty"`
	Action        string                 `json:"action"`
	Metadata      map[string]interface{} `json:"metadata,omitempty"`
	CreatedAt     time.Time              `json:"created_at"`
}

type AuditLogListResponse struct {
	Logs  []AuditLogResponse `json:"logs"`
	Total int64              `json:"total"`
}
