package repository

import (
	"context"
	"time"

	"github.com/sameerjoshi/docsimus-physicians-sub001/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ComponentRepository interface {
	CreateBatch(ctx context.Context, db *gorm.DB, components []entity.Component) error
	FindByID(ctx context.Context, db *gorm.DB, id uuid.UUID) (*entity.Component, error)
	// FindByApplicationID returns the components of one cycle, or of every
	// cycle when cycle is nil, oldest cycle first.
	FindByApplicationID(ctx context.Context, db *gorm.DB, applicationID uuid.UUID, cycle *int) ([]entity.Component, error)
	UpdateDecision(ctx context.Context, db *gorm.DB, id uuid.UUID, status entity.ComponentStatus, decidedBy uuid.UUID, decidedAt time.Time) (int64, error)
}

type CommentRepository interface {
	Create(ctx context.Context, db *gorm.DB, comment *entity.ComponentComment) error
	FindByComponentID(ctx context.Context, db *gorm.DB, componentID uuid.UUID) ([]entity.ComponentComment, error)
}
