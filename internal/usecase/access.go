package usecase

import (
	"context"

	"github.com/sameerjoshi/docsimus-physicians-sub001/internal/domain/apperror"
	"github.com/sameerjoshi/docsimus-physicians-sub001/internal/domain/entity"
	"github.com/sameerjoshi/docsimus-physicians-sub001/internal/domain/repository"
	"github.com/sameerjoshi/docsimus-physicians-sub001/internal/service"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	ErrForbidden           = apperror.New(apperror.CodeForbidden, "you don't have permission to perform this action")
	ErrNotOwner            = apperror.New(apperror.CodeForbidden, "application does not belong to you")
	ErrNotAssignedReviewer = apperror.New(apperror.CodeForbidden, "application is assigned to another reviewer")
	ErrApplicationNotFound = apperror.New(apperror.CodeNotFound, "application not found")
	ErrConcurrentUpdate    = apperror.New(apperror.CodeStorageFailure, "application changed concurrently, please retry")
)

// staff are the roles allowed to review.
var staff = []string{entity.RoleAdmin, entity.RoleReviewer}

func findApplication(ctx context.Context, db *gorm.DB, repo repository.ApplicationRepository, log *logrus.Logger, id uuid.UUID) (*entity.Application, error) {
	application, err := repo.FindByID(ctx, db, id)
	if err != nil {
		log.Warnf("Failed to find application %s: %+v", id, err)
		return nil, apperror.Storage("failed to load application", err)
	}
	if application == nil {
		return nil, ErrApplicationNotFound
	}
	return application, nil
}

// canView lets staff read any application and physicians read their own.
func canView(authz service.Authorizer, actor entity.Actor, application *entity.Application) error {
	if authz.HasRole(actor, staff...) {
		return nil
	}
	if authz.HasRole(actor, entity.RolePhysician) && application.OwnedBy(actor.UserID) {
		return nil
	}
	return ErrForbidden
}

// checkReviewerScope stops a reviewer from acting on an application that
// another reviewer holds in the current cycle. Admins are never scoped.
func checkReviewerScope(ctx context.Context, db *gorm.DB, repo repository.AssignmentRepository, log *logrus.Logger, actor entity.Actor, application *entity.Application) error {
	if actor.IsAdmin() {
		return nil
	}
	active, err := repo.FindActive(ctx, db, application.ID, application.Cycle)
	if err != nil {
		log.Warnf("Failed to find assignment for application %s: %+v", application.ID, err)
		return apperror.Storage("failed to load assignment", err)
	}
	if active != nil && active.ReviewerID != actor.UserID {
		return ErrNotAssignedReviewer
	}
	return nil
}
