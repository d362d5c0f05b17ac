package repository

import (
	"context"

	"github.com/sameerjoshi/docsimus-physicians-sub001/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AssignmentRepository interface {
	Create(ctx context.Context, db *gorm.DB, assignment *entity.Assignment) error
	FindActive(ctx context.Context, db *gorm.DB, applicationID uuid.UUID, cycle int) (*entity.Assignment, error)
	// CountActiveByReviewer counts current-cycle assignments whose application
	// is not yet verified or rejected.
	CountActiveByReviewer(ctx context.Context, db *gorm.DB, reviewerID uuid.UUID) (int64, error)
	WorkloadByReviewer(ctx context.Context, db *gorm.DB) ([]entity.ReviewerWorkload, error)
}
