package usecase

import (
	"context"
	"time"

	"github.com/sameerjoshi/docsimus-physicians-sub001/internal/domain/apperror"
	"github.com/sameerjoshi/docsimus-physicians-sub001/internal/domain/entity"
	"github.com/sameerjoshi/docsimus-physicians-sub001/internal/domain/repository"
	"github.com/sameerjoshi/docsimus-physicians-sub001/internal/domain/workflow"
	"github.com/sameerjoshi/docsimus-physicians-sub001/internal/service"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var (
	ErrReviewerNotFound    = apperror.New(apperror.CodeNotFound, "reviewer not found")
	ErrNoReviewerAvailable = apperror.New(apperror.CodeNotFound, "no active reviewer is available")
	ErrAlreadyAssigned     = apperror.New(apperror.CodeAlreadyAssigned, "application already has a reviewer")
	ErrClaimForOthers      = apperror.New(apperror.CodeForbidden, "reviewers can only assign applications to themselves")
)

type AssignmentUsecase interface {
	Assign(ctx context.Context, actor entity.Actor, applicationID, reviewerID uuid.UUID) (*entity.Assignment, error)
	AutoAssign(ctx context.Context, actor entity.Actor, applicationID uuid.UUID) (*entity.Assignment, error)
	WorkloadOf(ctx context.Context, actor entity.Actor, reviewerID uuid.UUID) (int64, error)
	ListUnassigned(ctx context.Context, actor entity.Actor) ([]entity.Application, error)
	ListAssignedTo(ctx context.Context, actor entity.Actor, reviewerID uuid.UUID) ([]entity.Application, error)
}

type assignmentUsecase struct {
	db              *gorm.DB
	log             *logrus.Logger
	authz           service.Authorizer
	auditService    service.AuditService
	notifier        service.Notifier
	applicationRepo repository.ApplicationRepository
	assignmentRepo  repository.AssignmentRepository
	userRepo        repository.UserRepository
}

func NewAssignmentUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	authz service.Authorizer,
	auditService service.AuditService,
	notifier service.Notifier,
	applicationRepo repository.ApplicationRepository,
	assignmentRepo repository.AssignmentRepository,
	userRepo repository.UserRepository,
) AssignmentUsecase {
	return &assignmentUsecase{
		db:              db,
		log:             log,
		authz:           authz,
		auditService:    auditService,
		notifier:        notifier,
		applicationRepo: applicationRepo,
		assignmentRepo:  assignmentRepo,
		userRepo:        userRepo,
	}
}

// pickReviewer chooses the reviewer inside the assigning transaction.
type pickReviewer func(tx *gorm.DB) (*entity.User, error)

// Assign binds a reviewer to a submitted application. Admins assign anyone;
// reviewers may only claim an application for themselves.
func (u *assignmentUsecase) Assign(ctx context.Context, actor entity.Actor, applicationID, reviewerID uuid.UUID) (*entity.Assignment, error) {
	if !u.authz.HasRole(actor, staff...) {
		return nil, ErrForbidden
	}
	if !actor.IsAdmin() && reviewerID != actor.UserID {
		return nil, ErrClaimForOthers
	}

	return u.assign(ctx, actor, applicationID, "assign application", func(tx *gorm.DB) (*entity.User, error) {
		return u.findReviewer(ctx, tx, reviewerID)
	})
}

// AutoAssign hands the application to the active reviewer with the lowest
// workload. Ties go to the longest-standing reviewer.
func (u *assignmentUsecase) AutoAssign(ctx context.Context, actor entity.Actor, applicationID uuid.UUID) (*entity.Assignment, error) {
	if !u.authz.HasRole(actor, entity.RoleAdmin) {
		return nil, ErrForbidden
	}

	return u.assign(ctx, actor, applicationID, "auto-assign application", func(tx *gorm.DB) (*entity.User, error) {
		reviewers, err := u.userRepo.FindActiveReviewers(ctx, tx)
		if err != nil {
			u.log.Warnf("Failed to find active reviewers: %+v", err)
			return nil, apperror.Storage("failed to load reviewers", err)
		}
		workloads, err := u.assignmentRepo.WorkloadByReviewer(ctx, tx)
		if err != nil {
			u.log.Warnf("Failed to compute reviewer workload: %+v", err)
			return nil, apperror.Storage("failed to compute workload", err)
		}
		reviewer := leastLoaded(reviewers, workloads)
		if reviewer == nil {
			return nil, ErrNoReviewerAvailable
		}
		return reviewer, nil
	})
}

func (u *assignmentUsecase) assign(ctx context.Context, actor entity.Actor, applicationID uuid.UUID, op string, pick pickReviewer) (*entity.Assignment, error) {
	var (
		created  *entity.Assignment
		assigned *entity.Application
		reviewer *entity.User
	)
	err := withRetry(ctx, u.db, u.log, op, func(tx *gorm.DB) error {
		application, err := findApplication(ctx, tx, u.applicationRepo, u.log, applicationID)
		if err != nil {
			return err
		}

		active, err := u.assignmentRepo.FindActive(ctx, tx, application.ID, application.Cycle)
		if err != nil {
			u.log.Warnf("Failed to find assignment for application %s: %+v", application.ID, err)
			return apperror.Storage("failed to load assignment", err)
		}
		if active != nil {
			return ErrAlreadyAssigned
		}
		if _, err := workflow.Transition(application.Status, workflow.EventAssign); err != nil {
			return err
		}

		reviewer, err = pick(tx)
		if err != nil {
			return err
		}

		assignment := &entity.Assignment{
			ApplicationID: application.ID,
			Cycle:         application.Cycle,
			ReviewerID:    reviewer.ID,
			AssignedBy:    &actor.UserID,
			AssignedAt:    time.Now().UTC(),
		}
		if err := u.assignmentRepo.Create(ctx, tx, assignment); err != nil {
			if isDuplicateKeyError(err, "idx_assignments_application_cycle") {
				return ErrAlreadyAssigned
			}
			u.log.Warnf("Failed to create assignment for application %s: %+v", application.ID, err)
			return apperror.Storage("failed to create assignment", err)
		}

		from := application.Status
		if err := workflow.Apply(application, workflow.EventAssign, assignment.AssignedAt, ""); err != nil {
			return err
		}
		rows, err := u.applicationRepo.UpdateIfVersion(ctx, tx, application, application.Version)
		if err != nil {
			u.log.Warnf("Failed to update application %s: %+v", application.ID, err)
			return apperror.Storage("failed to update application", err)
		}
		if rows == 0 {
			return errStaleVersion
		}

		if err := u.auditService.LogTransition(ctx, tx, actor.UserID, application, entity.AuditActionApplicationAssign, from, datatypes.JSONMap{
			"reviewer_id": reviewer.ID.String(),
		}); err != nil {
			return apperror.Storage("failed to write audit log", err)
		}

		assignment.Reviewer = reviewer
		created = assignment
		assigned = application
		return nil
	})
	if err != nil {
		return nil, err
	}

	u.log.Infof("Application %s assigned to reviewer %s", assigned.ID, reviewer.ID)
	_ = u.notifier.Notify(ctx, newEvent(service.EventApplicationAssigned, actor, assigned, reviewer, ""))
	return created, nil
}

// WorkloadOf counts the open current-cycle assignments of a reviewer.
// Reviewers may only see their own count.
func (u *assignmentUsecase) WorkloadOf(ctx context.Context, actor entity.Actor, reviewerID uuid.UUID) (int64, error) {
	if err := u.checkSelfOrAdmin(actor, reviewerID); err != nil {
		return 0, err
	}
	if _, err := u.findReviewer(ctx, u.db, reviewerID); err != nil {
		return 0, err
	}

	count, err := u.assignmentRepo.CountActiveByReviewer(ctx, u.db, reviewerID)
	if err != nil {
		u.log.Warnf("Failed to count workload of reviewer %s: %+v", reviewerID, err)
		return 0, apperror.Storage("failed to count workload", err)
	}
	return count, nil
}

// ListUnassigned returns the review queue, oldest submission first.
func (u *assignmentUsecase) ListUnassigned(ctx context.Context, actor entity.Actor) ([]entity.Application, error) {
	if !u.authz.HasRole(actor, staff...) {
		return nil, ErrForbidden
	}

	applications, err := u.applicationRepo.FindUnassigned(ctx, u.db)
	if err != nil {
		u.log.Warnf("Failed to list unassigned applications: %+v", err)
		return nil, apperror.Storage("failed to list unassigned applications", err)
	}
	return applications, nil
}

func (u *assignmentUsecase) ListAssignedTo(ctx context.Context, actor entity.Actor, reviewerID uuid.UUID) ([]entity.Application, error) {
	if err := u.checkSelfOrAdmin(actor, reviewerID); err != nil {
		return nil, err
	}

	applications, _, err := u.applicationRepo.FindAll(ctx, u.db, &entity.ApplicationFilter{ReviewerID: &reviewerID})
	if err != nil {
		u.log.Warnf("Failed to list applications of reviewer %s: %+v", reviewerID, err)
		return nil, apperror.Storage("failed to list assigned applications", err)
	}
	return applications, nil
}

func (u *assignmentUsecase) checkSelfOrAdmin(actor entity.Actor, reviewerID uuid.UUID) error {
	if !u.authz.HasRole(actor, staff...) {
		return ErrForbidden
	}
	if !actor.IsAdmin() && actor.UserID != reviewerID {
		return ErrForbidden
	}
	return nil
}

func (u *assignmentUsecase) findReviewer(ctx context.Context, db *gorm.DB, id uuid.UUID) (*entity.User, error) {
	user, err := u.userRepo.FindByID(ctx, db, id)
	if err != nil {
		u.log.Warnf("Failed to find reviewer %s: %+v", id, err)
		return nil, apperror.Storage("failed to load reviewer", err)
	}
	if user == nil || !user.CanReview() {
		return nil, ErrReviewerNotFound
	}
	return user, nil
}

// leastLoaded returns the reviewer with the fewest open assignments. The
// reviewers slice is ordered by seniority, which settles ties.
func leastLoaded(reviewers []entity.User, workloads []entity.ReviewerWorkload) *entity.User {
	load := make(map[uuid.UUID]int64, len(workloads))
	for _, w := range workloads {
		load[w.ReviewerID] = w.Workload
	}

	var best *entity.User
	var bestLoad int64
	for i := range reviewers {
		if !reviewers[i].CanReview() {
			continue
		}
		l := load[reviewers[i].ID]
		if best == nil || l < bestLoad {
			best = &reviewers[i]
			bestLoad = l
		}
	}
	return best
}
