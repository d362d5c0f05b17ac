package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Assignment binds one reviewer to one application for a review cycle.
// The unique (application_id, cycle) index allows one active assignment.
type Assignment struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	ApplicationID uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_assignments_application_cycle" json:"application_id"`
	Cycle         int        `gorm:"not null;uniqueIndex:idx_assignments_application_cycle" json:"cycle"`
	ReviewerID    uuid.UUID  `gorm:"type:uuid;not null;index" json:"reviewer_id"`
	AssignedBy    *uuid.UUID `gorm:"type:uuid" json:"assigned_by,omitempty"`
	AssignedAt    time.Time  `gorm:"not null" json:"assigned_at"`

	// Relationships
	Reviewer *User `gorm:"foreignKey:ReviewerID" json:"reviewer,omitempty"`
}

func (Assignment) TableName() string {
	return "assignments"
}

func (a *Assignment) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
