package repository

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/sameerjoshi/docsimus-physicians-sub001/internal/domain/entity"
	domainRepo "github.com/sameerjoshi/docsimus-physicians-sub001/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type componentRepository struct{}

func NewComponentRepository() domainRepo.ComponentRepository {
	return &componentRepository{}
}

func (r *componentRepository) CreateBatch(ctx context.Context, db *gorm.DB, components []entity.Component) error {
	if len(components) == 0 {
		return nil
	}
	return db.WithContext(ctx).Omit("Comments").Create(&components).Error
}

func (r *componentRepository) FindByID(ctx context.Context, db *gorm.DB, id uuid.UUID) (*entity.Component, error) {
	var component entity.Component
	err := db.WithContext(ctx).Where("id = ?", id).First(&component).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &component, nil
}

func (r *componentRepository) FindByApplicationID(ctx context.Context, db *gorm.DB, applicationID uuid.UUID, cycle *int) ([]entity.Component, error) {
	var components []entity.Component
	query := db.WithContext(ctx).Where("application_id = ?", applicationID)
	if cycle != nil {
		query = query.Where("cycle = ?", *cycle)
	}
	if err := query.Find(&components).Error; err != nil {
		return nil, err
	}

	rank := make(map[entity.ComponentKind]int, len(entity.ComponentKinds))
	for i, kind := range entity.ComponentKinds {
		rank[kind] = i
	}
	sort.SliceStable(components, func(i, j int) bool {
		if components[i].Cycle != components[j].Cycle {
			return components[i].Cycle < components[j].Cycle
		}
		return rank[components[i].Kind] < rank[components[j].Kind]
	})
	return components, nil
}

// UpdateDecision overwrites the component status. Concurrent decisions are
// last-write-wins; every decision is kept in the comment trail.
func (r *componentRepository) UpdateDecision(ctx context.Context, db *gorm.DB, id uuid.UUID, status entity.ComponentStatus, decidedBy uuid.UUID, decidedAt time.Time) (int64, error) {
	result := db.WithContext(ctx).Model(&entity.Component{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     status,
			"decided_by": decidedBy,
			"decided_at": decidedAt,
			"updated_at": time.Now().UTC(),
		})
	return result.RowsAffected, result.Error
}

type commentRepository struct{}

func NewCommentRepository() domainRepo.CommentRepository {
	return &commentRepository{}
}

func (r *commentRepository) Create(ctx context.Context, db *gorm.DB, comment *entity.ComponentComment) error {
	return db.WithContext(ctx).Omit("Author").Create(comment).Error
}

// FindByComponentID returns the trail in insertion order.
func (r *commentRepository) FindByComponentID(ctx context.Context, db *gorm.DB, componentID uuid.UUID) ([]entity.ComponentComment, error) {
	var comments []entity.ComponentComment
	err := db.WithContext(ctx).
		Preload("Author").
		Where("component_id = ?", componentID).
		Order("created_at ASC, id ASC").
		Find(&comments).Error
	if err != nil {
		return nil, err
	}
	return comments, nil
}
