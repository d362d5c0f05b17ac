package repository

import (
	"context"
	"errors"
	"time"

	"github.com/sameerjoshi/docsimus-physicians-sub001/internal/domain/entity"
	domainRepo "github.com/sameerjoshi/docsimus-physicians-sub001/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type applicationRepository struct{}

func NewApplicationRepository() domainRepo.ApplicationRepository {
	return &applicationRepository{}
}

func (r *applicationRepository) Create(ctx context.Context, db *gorm.DB, application *entity.Application) error {
	return db.WithContext(ctx).Omit("Physician").Create(application).Error
}

func (r *applicationRepository) FindByID(ctx context.Context, db *gorm.DB, id uuid.UUID) (*entity.Application, error) {
	var application entity.Application
	err := db.WithContext(ctx).Preload("Physician").Where("id = ?", id).First(&application).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &application, nil
}

func (r *applicationRepository) FindByPhysicianID(ctx context.Context, db *gorm.DB, physicianID uuid.UUID) (*entity.Application, error) {
	var application entity.Application
	err := db.WithContext(ctx).Preload("Physician").Where("physician_id = ?", physicianID).First(&application).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &application, nil
}

// FindAll returns one page of applications matching the filter plus the
// total number of matches.
func (r *applicationRepository) FindAll(ctx context.Context, db *gorm.DB, filter *entity.ApplicationFilter) ([]entity.Application, int64, error) {
	var applications []entity.Application
	var total int64

	if err := applyApplicationFilter(db.WithContext(ctx).Model(&entity.Application{}), filter).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query := applyApplicationFilter(db.WithContext(ctx).Model(&entity.Application{}), filter).
		Select("applications.*").
		Preload("Physician").
		Order("applications.created_at DESC")
	if filter != nil && filter.Limit > 0 {
		query = query.Limit(filter.Limit).Offset(filter.Offset)
	}
	if err := query.Find(&applications).Error; err != nil {
		return nil, 0, err
	}

	return applications, total, nil
}

func applyApplicationFilter(query *gorm.DB, filter *entity.ApplicationFilter) *gorm.DB {
	if filter == nil {
		return query
	}
	if filter.Status != "" {
		query = query.Where("applications.status = ?", filter.Status)
	}
	if filter.ReviewerID != nil {
		query = query.
			Joins("JOIN assignments ON assignments.application_id = applications.id AND assignments.cycle = applications.cycle").
			Where("assignments.reviewer_id = ?", *filter.ReviewerID)
	}
	return query
}

// FindUnassigned returns submitted applications without a current-cycle
// assignment, oldest submission first.
func (r *applicationRepository) FindUnassigned(ctx context.Context, db *gorm.DB) ([]entity.Application, error) {
	var applications []entity.Application
	err := db.WithContext(ctx).
		Preload("Physician").
		Where("applications.status = ?", entity.ApplicationStatusSubmitted).
		Where("NOT EXISTS (SELECT 1 FROM assignments WHERE assignments.application_id = applications.id AND assignments.cycle = applications.cycle)").
		Order("applications.submitted_at ASC, applications.id ASC").
		Find(&applications).Error
	if err != nil {
		return nil, err
	}
	return applications, nil
}

// UpdateIfVersion atomically writes the workflow columns ONLY if nobody else
// changed the application since it was read.
func (r *applicationRepository) UpdateIfVersion(ctx context.Context, db *gorm.DB, application *entity.Application, expectedVersion int) (int64, error) {
	result := db.WithContext(ctx).Model(&entity.Application{}).
		Where("id = ? AND version = ?", application.ID, expectedVersion).
		Updates(map[string]interface{}{
			"status":           application.Status,
			"draft":            application.Draft,
			"cycle":            application.Cycle,
			"submitted_at":     application.SubmittedAt,
			"verified_at":      application.VerifiedAt,
			"rejected_at":      application.RejectedAt,
			"rejection_reason": application.RejectionReason,
			"version":          expectedVersion + 1,
			"updated_at":       time.Now().UTC(),
		})
	if result.Error == nil && result.RowsAffected == 1 {
		application.Version = expectedVersion + 1
	}
	return result.RowsAffected, result.Error
}

func (r *applicationRepository) TouchIfStatus(ctx context.Context, db *gorm.DB, id uuid.UUID, expectedVersion int, statuses ...entity.ApplicationStatus) (int64, error) {
	allowed := make([]string, 0, len(statuses))
	for _, s := range statuses {
		allowed = append(allowed, string(s))
	}
	result := db.WithContext(ctx).Model(&entity.Application{}).
		Where("id = ? AND version = ? AND status IN ?", id, expectedVersion, allowed).
		Updates(map[string]interface{}{
			"version":    gorm.Expr("version + 1"),
			"updated_at": time.Now().UTC(),
		})
	return result.RowsAffected, result.Error
}
