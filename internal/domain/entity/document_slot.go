package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DocumentKind identifies one required document upload target
type DocumentKind string

const (
	DocumentKindMedicalDegree           DocumentKind = "medical_degree"
	DocumentKindRegistrationCertificate DocumentKind = "registration_certificate"
	DocumentKindIdentityProof           DocumentKind = "identity_proof"
	DocumentKindAddressProof            DocumentKind = "address_proof"
)

// DocumentKinds is the fixed set of required kinds, in display order
var DocumentKinds = []DocumentKind{
	DocumentKindMedicalDegree,
	DocumentKindRegistrationCertificate,
	DocumentKindIdentityProof,
	DocumentKindAddressProof,
}

func (k DocumentKind) Valid() bool {
	for _, kind := range DocumentKinds {
		if k == kind {
			return true
		}
	}
	return false
}

// DocumentStatus represents the upload state of a slot
type DocumentStatus string

const (
	DocumentStatusNotUploaded DocumentStatus = "not_uploaded"
	DocumentStatusUploaded    DocumentStatus = "uploaded"
)

// DocumentSlot tracks the upload of one required document kind
type DocumentSlot struct {
	ID            uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	ApplicationID uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:idx_document_slots_application_kind" json:"application_id"`
	Kind          DocumentKind   `gorm:"type:varchar(50);not null;uniqueIndex:idx_document_slots_application_kind" json:"kind"`
	Status        DocumentStatus `gorm:"type:varchar(20);not null;default:'not_uploaded'" json:"status"`
	FileRef       string         `gorm:"type:text" json:"file_ref,omitempty"`
	OriginalName  string         `gorm:"type:varchar(255)" json:"original_name,omitempty"`
	ContentType   string         `gorm:"type:varchar(100)" json:"content_type,omitempty"`
	SizeBytes     int64          `gorm:"not null;default:0" json:"size_bytes"`
	UploadedAt    *time.Time     `json:"uploaded_at,omitempty"`
	CreatedAt     time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
}

func (DocumentSlot) TableName() string {
	return "document_slots"
}

func (d *DocumentSlot) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	if d.Status == "" {
		d.Status = DocumentStatusNotUploaded
	}
	return nil
}

// IsUploaded checks if the slot holds a file
func (d *DocumentSlot) IsUploaded() bool {
	return d.Status == DocumentStatusUploaded
}

// NewEmptySlots creates one not-uploaded slot per required kind
func NewEmptySlots(applicationID uuid.UUID) []DocumentSlot {
	slots := make([]DocumentSlot, 0, len(DocumentKinds))
	for _, kind := range DocumentKinds {
		slots = append(slots, DocumentSlot{
			ApplicationID: applicationID,
			Kind:          kind,
			Status:        DocumentStatusNotUploaded,
		})
	}
	return slots
}

// CountUploaded returns how many slots hold a file
func CountUploaded(slots []DocumentSlot) int {
	count := 0
	for i := range slots {
		if slots[i].IsUploaded() {
			count++
		}
	}
	return count
}
