package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ComponentKind identifies an independently reviewable unit of an application
type ComponentKind string

const (
	ComponentKindPersonalInfo        ComponentKind = "personal_info"
	ComponentKindMedicalRegistration ComponentKind = "medical_registration"
	ComponentKindDocuments           ComponentKind = "documents"
	ComponentKindVideoVerification   ComponentKind = "video_verification"
)

// ComponentKinds lists the components created for every review cycle
var ComponentKinds = []ComponentKind{
	ComponentKindPersonalInfo,
	ComponentKindMedicalRegistration,
	ComponentKindDocuments,
	ComponentKindVideoVerification,
}

var componentChecklists = map[ComponentKind][]string{
	ComponentKindPersonalInfo: {
		"Full name matches identity proof",
		"Date of birth matches identity proof",
		"Phone number reachable",
		"Address matches address proof",
	},
	ComponentKindMedicalRegistration: {
		"Registration number exists in council records",
		"Council matches registration certificate",
		"Specialization supported by qualification",
	},
	ComponentKindDocuments: {
		"Documents are legible",
		"Documents are unexpired",
		"Names on documents are consistent",
	},
	ComponentKindVideoVerification: {
		"Face matches identity proof",
		"Physician confirmed registration details live",
	},
}

// Checklist returns the ordered review criteria for the component kind.
// Criteria are descriptive; reviewers accept or reject the whole component.
func (k ComponentKind) Checklist() []string {
	items := componentChecklists[k]
	out := make([]string, len(items))
	copy(out, items)
	return out
}

// ComponentStatus represents the verification status of a component
type ComponentStatus string

const (
	ComponentStatusPending  ComponentStatus = "pending"
	ComponentStatusVerified ComponentStatus = "verified"
	ComponentStatusRejected ComponentStatus = "rejected"
)

// IsDecision reports whether the status is a reviewer decision
func (s ComponentStatus) IsDecision() bool {
	return s == ComponentStatusVerified || s == ComponentStatusRejected
}

// Component is the verification record of one part of a submitted application
type Component struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	ApplicationID uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_components_application_cycle_kind" json:"application_id"`
	Cycle         int             `gorm:"not null;uniqueIndex:idx_components_application_cycle_kind" json:"cycle"`
	Kind          ComponentKind   `gorm:"type:varchar(50);not null;uniqueIndex:idx_components_application_cycle_kind" json:"kind"`
	Status        ComponentStatus `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	DecidedBy     *uuid.UUID      `gorm:"type:uuid" json:"decided_by,omitempty"`
	DecidedAt     *time.Time      `json:"decided_at,omitempty"`
	CreatedAt     time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time       `gorm:"autoUpdateTime" json:"updated_at"`

	// Relationships
	Comments []ComponentComment `gorm:"foreignKey:ComponentID" json:"comments,omitempty"`
}

func (Component) TableName() string {
	return "components"
}

func (c *Component) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if c.Status == "" {
		c.Status = ComponentStatusPending
	}
	return nil
}

// NewPendingComponents creates one pending component per kind for a cycle
func NewPendingComponents(applicationID uuid.UUID, cycle int) []Component {
	components := make([]Component, 0, len(ComponentKinds))
	for _, kind := range ComponentKinds {
		components = append(components, Component{
			ApplicationID: applicationID,
			Cycle:         cycle,
			Kind:          kind,
			Status:        ComponentStatusPending,
		})
	}
	return components
}

// ComponentComment is one immutable entry of a component's audit trail
type ComponentComment struct {
	ID          int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	ComponentID uuid.UUID `gorm:"type:uuid;not null;index" json:"component_id"`
	AuthorID    uuid.UUID `gorm:"type:uuid;not null" json:"author_id"`
	Decision    string    `gorm:"type:varchar(20)" json:"decision,omitempty"`
	Body        string    `gorm:"type:text;not null" json:"body"`
	CreatedAt   time.Time `gorm:"autoCreateTime;index" json:"created_at"`

	// Relationships
	Author *User `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
}

func (ComponentComment) TableName() string {
	return "component_comments"
}
