package repository

import (
	"context"

	"github.com/sameerjoshi/docsimus-physicians-sub001/internal/domain/entity"

	"gorm.io/gorm"
)

type RoleRepository interface {
	FindByName(ctx context.Context, db *gorm.DB, name string) (*entity.Role, error)
	FindAll(ctx context.Context, db *gorm.DB) ([]entity.Role, error)
	// EnsureDefaults inserts any built-in role that is missing. Rows that
	// already exist keep their descriptions.
	EnsureDefaults(ctx context.Context, db *gorm.DB) error
}
