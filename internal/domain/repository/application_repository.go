package repository

import (
	"context"

	"github.com/sameerjoshi/docsimus-physicians-sub001/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ApplicationRepository interface {
	Create(ctx context.Context, db *gorm.DB, application *entity.Application) error
	FindByID(ctx context.Context, db *gorm.DB, id uuid.UUID) (*entity.Application, error)
	FindByPhysicianID(ctx context.Context, db *gorm.DB, physicianID uuid.UUID) (*entity.Application, error)
	FindAll(ctx context.Context, db *gorm.DB, filter *entity.ApplicationFilter) ([]entity.Application, int64, error)
	FindUnassigned(ctx context.Context, db *gorm.DB) ([]entity.Application, error)
	// UpdateIfVersion writes status, timestamps, draft and cycle only when the
	// stored version still equals expectedVersion, and bumps the version.
	// Returns affected rows: 1 = written, 0 = lost a concurrent update.
	UpdateIfVersion(ctx context.Context, db *gorm.DB, application *entity.Application, expectedVersion int) (int64, error)
	// TouchIfStatus bumps the version when the stored version and status still
	// match, serializing writes to child records against status changes.
	TouchIfStatus(ctx context.Context, db *gorm.DB, id uuid.UUID, expectedVersion int, statuses ...entity.ApplicationStatus) (int64, error)
}
