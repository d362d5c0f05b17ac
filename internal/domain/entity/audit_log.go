package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// AuditLog represents one application-level entry of the workflow audit trail
type AuditLog struct {
	ID            int64             `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID        *uuid.UUID        `gorm:"type:uuid;index" json:"user_id,omitempty"`
	ApplicationID *uuid.UUID        `gorm:"type:uuid;index" json:"application_id,omitempty"`
	Action        string            `gorm:"type:varchar(100);not null;index" json:"action"`
	Metadata      datatypes.JSONMap `json:"metadata,omitempty"`
	CreatedAt     time.Time         `gorm:"autoCreateTime;index" json:"created_at"`

	// Relationships
	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (AuditLog) TableName() string {
	return "audit_logs"
}

// Common audit actions
const (
	AuditActionUserRegister      = "user.register"
	AuditActionReviewerCreate    = "reviewer.create"
	AuditActionSectionSave       = "application.section_save"
	AuditActionDocumentUpload    = "application.document_upload"
	AuditActionApplicationSubmit = "application.submit"
	AuditActionApplicationAssign = "application.assign"
	AuditActionApplicationVerify = "application.verify"
	AuditActionApplicationReject = "application.reject"
	AuditActionApplicationReopen = "application.reopen"
	AuditActionComponentDecide   = "component.decide"
)
