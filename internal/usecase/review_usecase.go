package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/sameerjoshi/docsimus-physicians-sub001/internal/domain/apperror"
	"github.com/sameerjoshi/docsimus-physicians-sub001/internal/domain/entity"
	"github.com/sameerjoshi/docsimus-physicians-sub001/internal/domain/repository"
	"github.com/sameerjoshi/docsimus-physicians-sub001/internal/service"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var (
	ErrComponentNotFound = apperror.New(apperror.CodeNotFound, "component not found")
	ErrCommentRequired   = apperror.New(apperror.CodeCommentRequired, "a comment is required for every decision")
	ErrInvalidDecision   = apperror.New(apperror.CodeInvalidTransition, "decision must be verified or rejected")
	ErrComponentArchived = apperror.New(apperror.CodeApplicationLocked, "component belongs to a closed review cycle")
	ErrReviewClosed      = apperror.New(apperror.CodeApplicationLocked, "application is not under review")
)

type ReviewUsecase interface {
	Decide(ctx context.Context, actor entity.Actor, componentID uuid.UUID, status entity.ComponentStatus, comment string) (*entity.Component, error)
	History(ctx context.Context, actor entity.Actor, componentID uuid.UUID) ([]entity.ComponentComment, error)
	ListComponents(ctx context.Context, actor entity.Actor, applicationID uuid.UUID, includeArchived bool) ([]entity.Component, int, error)
}

type reviewUsecase struct {
	db              *gorm.DB
	log             *logrus.Logger
	authz           service.Authorizer
	auditService    service.AuditService
	applicationRepo repository.ApplicationRepository
	componentRepo   repository.ComponentRepository
	commentRepo     repository.CommentRepository
	assignmentRepo  repository.AssignmentRepository
}

func NewReviewUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	authz service.Authorizer,
	auditService service.AuditService,
	applicationRepo repository.ApplicationRepository,
	componentRepo repository.ComponentRepository,
	commentRepo repository.CommentRepository,
	assignmentRepo repository.AssignmentRepository,
) ReviewUsecase {
	return &reviewUsecase{
		db:              db,
		log:             log,
		authz:           authz,
		auditService:    auditService,
		applicationRepo: applicationRepo,
		componentRepo:   componentRepo,
		commentRepo:     commentRepo,
		assignmentRepo:  assignmentRepo,
	}
}

// Decide records a reviewer decision on one component. The status is
// overwritten (last write wins) and the comment is appended in the same
// transaction, so repeating a decision grows the trail without losing it.
func (u *reviewUsecase) Decide(ctx context.Context, actor entity.Actor, componentID uuid.UUID, status entity.ComponentStatus, comment string) (*entity.Component, error) {
	if !u.authz.HasRole(actor, staff...) {
		return nil, ErrForbidden
	}
	comment = strings.TrimSpace(comment)

	var decided *entity.Component
	err := withRetry(ctx, u.db, u.log, "decide component", func(tx *gorm.DB) error {
		component, err := u.findComponent(ctx, tx, componentID)
		if err != nil {
			return err
		}
		application, err := findApplication(ctx, tx, u.applicationRepo, u.log, component.ApplicationID)
		if err != nil {
			return err
		}
		if err := checkReviewerScope(ctx, tx, u.assignmentRepo, u.log, actor, application); err != nil {
			return err
		}
		if comment == "" {
			return ErrCommentRequired
		}
		if !status.IsDecision() {
			return ErrInvalidDecision
		}
		if component.Cycle != application.Cycle {
			return ErrComponentArchived
		}
		if !application.Status.InReview() {
			return ErrReviewClosed
		}

		// Bumping the version orders this decision against verify and
		// reject of the same application.
		rows, err := u.applicationRepo.TouchIfStatus(ctx, tx, application.ID, application.Version,
			entity.ApplicationStatusSubmitted, entity.ApplicationStatusUnderReview)
		if err != nil {
			u.log.Warnf("Failed to lock application %s: %+v", application.ID, err)
			return apperror.Storage("failed to update application", err)
		}
		if rows == 0 {
			return errStaleVersion
		}

		now := time.Now().UTC()
		if _, err := u.componentRepo.UpdateDecision(ctx, tx, component.ID, status, actor.UserID, now); err != nil {
			u.log.Warnf("Failed to update component %s: %+v", component.ID, err)
			return apperror.Storage("failed to update component", err)
		}
		if err := u.commentRepo.Create(ctx, tx, &entity.ComponentComment{
			ComponentID: component.ID,
			AuthorID:    actor.UserID,
			Decision:    string(status),
			Body:        comment,
		}); err != nil {
			u.log.Warnf("Failed to append comment to component %s: %+v", component.ID, err)
			return apperror.Storage("failed to append comment", err)
		}

		if err := u.auditService.Log(ctx, tx, &actor.UserID, &application.ID, entity.AuditActionComponentDecide, datatypes.JSONMap{
			"component_id": component.ID.String(),
			"kind":         string(component.Kind),
			"from":         string(component.Status),
			"to":           string(status),
			"cycle":        component.Cycle,
		}); err != nil {
			return apperror.Storage("failed to write audit log", err)
		}

		component.Status = status
		component.DecidedBy = &actor.UserID
		component.DecidedAt = &now
		decided = component
		return nil
	})
	if err != nil {
		return nil, err
	}

	u.log.Infof("Component %s (%s) marked %s by %s", decided.ID, decided.Kind, status, actor.UserID)
	return decided, nil
}

// History returns the comment trail of a component, oldest first.
func (u *reviewUsecase) History(ctx context.Context, actor entity.Actor, componentID uuid.UUID) ([]entity.ComponentComment, error) {
	component, err := u.findComponent(ctx, u.db, componentID)
	if err != nil {
		return nil, err
	}
	application, err := findApplication(ctx, u.db, u.applicationRepo, u.log, component.ApplicationID)
	if err != nil {
		return nil, err
	}
	if err := canView(u.authz, actor, application); err != nil {
		return nil, err
	}

	comments, err := u.commentRepo.FindByComponentID(ctx, u.db, component.ID)
	if err != nil {
		u.log.Warnf("Failed to find comments of component %s: %+v", component.ID, err)
		return nil, apperror.Storage("failed to load comments", err)
	}
	return comments, nil
}

// ListComponents returns the current cycle's components, or every cycle's
// when includeArchived is set, together with the current cycle number.
func (u *reviewUsecase) ListComponents(ctx context.Context, actor entity.Actor, applicationID uuid.UUID, includeArchived bool) ([]entity.Component, int, error) {
	application, err := findApplication(ctx, u.db, u.applicationRepo, u.log, applicationID)
	if err != nil {
		return nil, 0, err
	}
	if err := canView(u.authz, actor, application); err != nil {
		return nil, 0, err
	}

	var cycle *int
	if !includeArchived {
		cycle = &application.Cycle
	}
	components, err := u.componentRepo.FindByApplicationID(ctx, u.db, application.ID, cycle)
	if err != nil {
		u.log.Warnf("Failed to find components of application %s: %+v", application.ID, err)
		return nil, 0, apperror.Storage("failed to load components", err)
	}
	return components, application.Cycle, nil
}

func (u *reviewUsecase) findComponent(ctx context.Context, db *gorm.DB, id uuid.UUID) (*entity.Component, error) {
	component, err := u.componentRepo.FindByID(ctx, db, id)
	if err != nil {
		u.log.Warnf("Failed to find component %s: %+v", id, err)
		return nil, apperror.Storage("failed to load component", err)
	}
	if component == nil {
		return nil, ErrComponentNotFound
	}
	return component, nil
}
