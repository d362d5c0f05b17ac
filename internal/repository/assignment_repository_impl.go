package repository

import (
	"context"
	"errors"

	"github.com/sameerjoshi/docsimus-physicians-sub001/internal/domain/entity"
	domainRepo "github.com/sameerjoshi/docsimus-physicians-sub001/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const activeAssignmentJoin = "JOIN applications ON applications.id = assignments.application_id AND applications.cycle = assignments.cycle"

var closedStatuses = []string{
	string(entity.ApplicationStatusVerified),
	string(entity.ApplicationStatusRejected),
}

type assignmentRepository struct{}

func NewAssignmentRepository() domainRepo.AssignmentRepository {
	return &assignmentRepository{}
}

func (r *assignmentRepository) Create(ctx context.Context, db *gorm.DB, assignment *entity.Assignment) error {
	return db.WithContext(ctx).Omit("Reviewer").Create(assignment).Error
}

func (r *assignmentRepository) FindActive(ctx context.Context, db *gorm.DB, applicationID uuid.UUID, cycle int) (*entity.Assignment, error) {
	var assignment entity.Assignment
	err := db.WithContext(ctx).
		Preload("Reviewer").
		Where("application_id = ? AND cycle = ?", applicationID, cycle).
		First(&assignment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &assignment, nil
}

func (r *assignmentRepository) CountActiveByReviewer(ctx context.Context, db *gorm.DB, reviewerID uuid.UUID) (int64, error) {
	var count int64
	err := db.WithContext(ctx).Model(&entity.Assignment{}).
		Joins(activeAssignmentJoin).
		Where("assignments.reviewer_id = ? AND applications.status NOT IN ?", reviewerID, closedStatuses).
		Count(&count).Error
	return count, err
}

// WorkloadByReviewer returns active workloads of reviewers holding at least
// one open assignment. Reviewers without rows have a workload of zero.
func (r *assignmentRepository) WorkloadByReviewer(ctx context.Context, db *gorm.DB) ([]entity.ReviewerWorkload, error) {
	var rows []entity.ReviewerWorkload
	err := db.WithContext(ctx).Model(&entity.Assignment{}).
		Select("assignments.reviewer_id AS reviewer_id, COUNT(*) AS workload").
		Joins(activeAssignmentJoin).
		Where("applications.status NOT IN ?", closedStatuses).
		Group("assignments.reviewer_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
