package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ApplicationStatus represents the lifecycle status of an onboarding application
type ApplicationStatus string

const (
	ApplicationStatusDraft       ApplicationStatus = "draft"
	ApplicationStatusSubmitted   ApplicationStatus = "submitted"
	ApplicationStatusUnderReview ApplicationStatus = "under_review"
	ApplicationStatusVerified    ApplicationStatus = "verified"
	ApplicationStatusRejected    ApplicationStatus = "rejected"
)

func (s ApplicationStatus) Valid() bool {
	switch s {
	case ApplicationStatusDraft, ApplicationStatusSubmitted, ApplicationStatusUnderReview,
		ApplicationStatusVerified, ApplicationStatusRejected:
		return true
	}
	return false
}

// IsTerminal reports whether review of the current cycle has ended
func (s ApplicationStatus) IsTerminal() bool {
	return s == ApplicationStatusVerified || s == ApplicationStatusRejected
}

// InReview reports whether reviewers may act on the application
func (s ApplicationStatus) InReview() bool {
	return s == ApplicationStatusSubmitted || s == ApplicationStatusUnderReview
}

// Application is one physician's onboarding submission and its review record
type Application struct {
	ID              uuid.UUID                            `gorm:"type:uuid;primaryKey" json:"id"`
	PhysicianID     uuid.UUID                            `gorm:"type:uuid;uniqueIndex;not null" json:"physician_id"`
	Status          ApplicationStatus                    `gorm:"type:varchar(20);not null;default:'draft';index" json:"status"`
	Draft           datatypes.JSONType[ApplicationDraft] `gorm:"not null" json:"draft"`
	Cycle           int                                  `gorm:"not null;default:1" json:"cycle"`
	Version         int                                  `gorm:"not null;default:1" json:"version"`
	SubmittedAt     *time.Time                           `gorm:"index" json:"submitted_at,omitempty"`
	VerifiedAt      *time.Time                           `json:"verified_at,omitempty"`
	RejectedAt      *time.Time                           `json:"rejected_at,omitempty"`
	RejectionReason *string                              `gorm:"type:text" json:"rejection_reason,omitempty"`
	CreatedAt       time.Time                            `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time                            `gorm:"autoUpdateTime" json:"updated_at"`

	// Relationships
	Physician User `gorm:"foreignKey:PhysicianID" json:"physician,omitempty"`
}

func (Application) TableName() string {
	return "applications"
}

func (a *Application) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	if a.Status == "" {
		a.Status = ApplicationStatusDraft
	}
	if a.Cycle == 0 {
		a.Cycle = 1
	}
	if a.Version == 0 {
		a.Version = 1
	}
	return nil
}

// DraftData returns the current draft object
func (a *Application) DraftData() ApplicationDraft {
	return a.Draft.Data()
}

// SetDraft replaces the draft object
func (a *Application) SetDraft(draft ApplicationDraft) {
	a.Draft = datatypes.NewJSONType(draft)
}

// IsDraft checks if the application is still editable by the physician
func (a *Application) IsDraft() bool {
	return a.Status == ApplicationStatusDraft
}

// AcceptsUploads checks if document slots may be (re)uploaded
func (a *Application) AcceptsUploads() bool {
	return a.Status == ApplicationStatusDraft || a.Status == ApplicationStatusRejected
}

// OwnedBy checks if the application belongs to the given physician
func (a *Application) OwnedBy(userID uuid.UUID) bool {
	return a.PhysicianID == userID
}
