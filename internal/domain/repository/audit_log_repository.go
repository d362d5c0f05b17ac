package repository

import (
	"context"

	"github.com/sameerjoshi/docsimus-physicians-sub001/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AuditLogRepository interface {
	Create(ctx context.Context, db *gorm.DB, log *entity.AuditLog) error
	FindAll(ctx context.Context, db *gorm.DB, limit, offset int) ([]entity.AuditLog, int64, error)
	FindByID(ctx context.Context, db *gorm.DB, id int64) (*entity.AuditLog, error)
	FindByApplicationID(ctx context.Context, db *gorm.DB, applicationID uuid.UUID) ([]entity.AuditLog, error)
}
