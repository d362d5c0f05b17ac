package repository

import (
	"context"

	"github.com/sameerjoshi/docsimus-physicians-sub001/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type DocumentSlotRepository interface {
	CreateBatch(ctx context.Context, db *gorm.DB, slots []entity.DocumentSlot) error
	FindByApplicationID(ctx context.Context, db *gorm.DB, applicationID uuid.UUID) ([]entity.DocumentSlot, error)
	FindByApplicationAndKind(ctx context.Context, db *gorm.DB, applicationID uuid.UUID, kind entity.DocumentKind) (*entity.DocumentSlot, error)
	Update(ctx context.Context, db *gorm.DB, slot *entity.DocumentSlot) error
	CountUploaded(ctx context.Context, db *gorm.DB, applicationID uuid.UUID) (int64, error)
}
