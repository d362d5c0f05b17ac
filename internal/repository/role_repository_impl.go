package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/sameerjoshi/docsimus-physicians-sub001/internal/domain/entity"
	domainRepo "github.com/sameerjoshi/docsimus-physicians-sub001/internal/domain/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type roleRepository struct{}

func NewRoleRepository() domainRepo.RoleRepository {
	return &roleRepository{}
}

func (r *roleRepository) FindByName(ctx context.Context, db *gorm.DB, name string) (*entity.Role, error) {
	var role entity.Role
	name = strings.ToLower(strings.TrimSpace(name))
	if err := db.WithContext(ctx).Where("role_name = ?", name).First(&role).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &role, nil
}

func (r *roleRepository) FindAll(ctx context.Context, db *gorm.DB) ([]entity.Role, error) {
	var roles []entity.Role
	if err := db.WithContext(ctx).Order("id ASC").Find(&roles).Error; err != nil {
		return nil, err
	}
	return roles, nil
}

func (r *roleRepository) EnsureDefaults(ctx context.Context, db *gorm.DB) error {
	roles := make([]entity.Role, len(entity.DefaultRoles))
	copy(roles, entity.DefaultRoles)
	return db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Omit("Users").
		Create(&roles).Error
}
