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
	"golang.org/x/sync/errgroup"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var (
	ErrInvalidSection      = apperror.New(apperror.CodeInvalidKind, "unknown application section")
	ErrSectionNotEditable  = apperror.New(apperror.CodeInvalidKind, "documents are managed through uploads")
	ErrApplicationLocked   = apperror.New(apperror.CodeApplicationLocked, "application can no longer be edited")
	ErrNoApplicationForYou = apperror.New(apperror.CodeNotFound, "you have no onboarding application")
)

// ApplicationDetail is everything a screen needs about one application.
type ApplicationDetail struct {
	Application *entity.Application
	Readiness   workflow.Readiness
	Slots       []entity.DocumentSlot
	Components  []entity.Component
	Assignment  *entity.Assignment
	History     []entity.AuditLog
}

type ApplicationUsecase interface {
	SaveSection(ctx context.Context, actor entity.Actor, applicationID uuid.UUID, section entity.Section, data entity.ApplicationDraft) (*entity.Application, error)
	SubmitApplication(ctx context.Context, actor entity.Actor, applicationID uuid.UUID) (*entity.Application, error)
	ReopenApplication(ctx context.Context, actor entity.Actor, applicationID uuid.UUID) (*entity.Application, error)
	VerifyApplication(ctx context.Context, actor entity.Actor, applicationID uuid.UUID) (*entity.Application, error)
	RejectApplication(ctx context.Context, actor entity.Actor, applicationID uuid.UUID, reason string) (*entity.Application, error)
	GetApplication(ctx context.Context, actor entity.Actor, applicationID uuid.UUID) (*ApplicationDetail, error)
	GetMyApplication(ctx context.Context, actor entity.Actor) (*ApplicationDetail, error)
	FindMyApplication(ctx context.Context, actor entity.Actor) (*entity.Application, error)
	GetReadiness(ctx context.Context, actor entity.Actor, applicationID uuid.UUID) (workflow.Readiness, error)
	ListApplications(ctx context.Context, actor entity.Actor, filter entity.ApplicationFilter) ([]entity.Application, int64, error)
}

type applicationUsecase struct {
	db              *gorm.DB
	log             *logrus.Logger
	authz           service.Authorizer
	policy          workflow.PolicyProvider
	auditService    service.AuditService
	notifier        service.Notifier
	applicationRepo repository.ApplicationRepository
	slotRepo        repository.DocumentSlotRepository
	componentRepo   repository.ComponentRepository
	assignmentRepo  repository.AssignmentRepository
	auditLogRepo    repository.AuditLogRepository
}

func NewApplicationUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	authz service.Authorizer,
	policy workflow.PolicyProvider,
	auditService service.AuditService,
	notifier service.Notifier,
	applicationRepo repository.ApplicationRepository,
	slotRepo repository.DocumentSlotRepository,
	componentRepo repository.ComponentRepository,
	assignmentRepo repository.AssignmentRepository,
	auditLogRepo repository.AuditLogRepository,
) ApplicationUsecase {
	return &applicationUsecase{
		db:              db,
		log:             log,
		authz:           authz,
		policy:          policy,
		auditService:    auditService,
		notifier:        notifier,
		applicationRepo: applicationRepo,
		slotRepo:        slotRepo,
		componentRepo:   componentRepo,
		assignmentRepo:  assignmentRepo,
		auditLogRepo:    auditLogRepo,
	}
}

// SaveSection replaces one section of the draft. Only the owning physician
// may edit, and only while the application is a draft.
func (u *applicationUsecase) SaveSection(ctx context.Context, actor entity.Actor, applicationID uuid.UUID, section entity.Section, data entity.ApplicationDraft) (*entity.Application, error) {
	if !u.authz.HasRole(actor, entity.RolePhysician) {
		return nil, ErrForbidden
	}

	var saved *entity.Application
	err := withRetry(ctx, u.db, u.log, "save section", func(tx *gorm.DB) error {
		application, err := findApplication(ctx, tx, u.applicationRepo, u.log, applicationID)
		if err != nil {
			return err
		}
		if !application.OwnedBy(actor.UserID) {
			return ErrNotOwner
		}
		if !section.Valid() {
			return ErrInvalidSection
		}
		if !section.Editable() {
			return ErrSectionNotEditable
		}
		if !application.IsDraft() {
			return ErrApplicationLocked
		}

		draft, ok := application.DraftData().WithSection(section, data)
		if !ok {
			return ErrSectionNotEditable
		}
		application.SetDraft(draft)

		if err := u.updateIfVersion(ctx, tx, application); err != nil {
			return err
		}

		if err := u.auditService.Log(ctx, tx, &actor.UserID, &application.ID, entity.AuditActionSectionSave, datatypes.JSONMap{
			"section": string(section),
		}); err != nil {
			return apperror.Storage("failed to write audit log", err)
		}

		saved = application
		return nil
	})
	if err != nil {
		return nil, err
	}

	return saved, nil
}

// SubmitApplication moves a complete draft to submitted and opens the
// pending components of the current review cycle.
func (u *applicationUsecase) SubmitApplication(ctx context.Context, actor entity.Actor, applicationID uuid.UUID) (*entity.Application, error) {
	if !u.authz.HasRole(actor, entity.RolePhysician) {
		return nil, ErrForbidden
	}

	var submitted *entity.Application
	err := withRetry(ctx, u.db, u.log, "submit application", func(tx *gorm.DB) error {
		application, err := findApplication(ctx, tx, u.applicationRepo, u.log, applicationID)
		if err != nil {
			return err
		}
		if !application.OwnedBy(actor.UserID) {
			return ErrNotOwner
		}
		if _, err := workflow.Transition(application.Status, workflow.EventSubmit); err != nil {
			return err
		}

		readiness, err := u.readiness(ctx, tx, application)
		if err != nil {
			return err
		}
		if err := workflow.SubmitGuard(readiness); err != nil {
			return err
		}

		from := application.Status
		if err := workflow.Apply(application, workflow.EventSubmit, time.Now(), ""); err != nil {
			return err
		}
		if err := u.updateIfVersion(ctx, tx, application); err != nil {
			return err
		}

		if err := u.componentRepo.CreateBatch(ctx, tx, entity.NewPendingComponents(application.ID, application.Cycle)); err != nil {
			u.log.Warnf("Failed to create components for application %s: %+v", application.ID, err)
			return apperror.Storage("failed to create components", err)
		}

		if err := u.auditService.LogTransition(ctx, tx, actor.UserID, application, entity.AuditActionApplicationSubmit, from, nil); err != nil {
			return apperror.Storage("failed to write audit log", err)
		}

		submitted = application
		return nil
	})
	if err != nil {
		return nil, err
	}

	u.log.Infof("Application %s submitted (cycle %d)", submitted.ID, submitted.Cycle)
	u.notify(ctx, service.EventApplicationSubmitted, actor, submitted, nil, "")
	return submitted, nil
}

// ReopenApplication returns a rejected application to draft and starts a
// new review cycle. Components and the assignment of the previous cycle
// stay on record as history.
func (u *applicationUsecase) ReopenApplication(ctx context.Context, actor entity.Actor, applicationID uuid.UUID) (*entity.Application, error) {
	if !u.authz.HasRole(actor, entity.RolePhysician) {
		return nil, ErrForbidden
	}

	var reopened *entity.Application
	err := withRetry(ctx, u.db, u.log, "reopen application", func(tx *gorm.DB) error {
		application, err := findApplication(ctx, tx, u.applicationRepo, u.log, applicationID)
		if err != nil {
			return err
		}
		if !application.OwnedBy(actor.UserID) {
			return ErrNotOwner
		}

		from := application.Status
		previousReason := ""
		if application.RejectionReason != nil {
			previousReason = *application.RejectionReason
		}
		if err := workflow.Apply(application, workflow.EventReopen, time.Now(), ""); err != nil {
			return err
		}
		if err := u.updateIfVersion(ctx, tx, application); err != nil {
			return err
		}

		if err := u.auditService.LogTransition(ctx, tx, actor.UserID, application, entity.AuditActionApplicationReopen, from, datatypes.JSONMap{
			"previous_reason": previousReason,
		}); err != nil {
			return apperror.Storage("failed to write audit log", err)
		}

		reopened = application
		return nil
	})
	if err != nil {
		return nil, err
	}

	u.log.Infof("Application %s reopened, now in cycle %d", reopened.ID, reopened.Cycle)
	return reopened, nil
}

// VerifyApplication accepts the application. Under the strict policy every
// component of the current cycle must be verified first.
func (u *applicationUsecase) VerifyApplication(ctx context.Context, actor entity.Actor, applicationID uuid.UUID) (*entity.Application, error) {
	if !u.authz.HasRole(actor, staff...) {
		return nil, ErrForbidden
	}

	policy := u.policy.Policy()
	var verified *entity.Application
	err := withRetry(ctx, u.db, u.log, "verify application", func(tx *gorm.DB) error {
		application, err := findApplication(ctx, tx, u.applicationRepo, u.log, applicationID)
		if err != nil {
			return err
		}
		if err := checkReviewerScope(ctx, tx, u.assignmentRepo, u.log, actor, application); err != nil {
			return err
		}
		if _, err := workflow.Transition(application.Status, workflow.EventVerify); err != nil {
			return err
		}

		cycle := application.Cycle
		components, err := u.componentRepo.FindByApplicationID(ctx, tx, application.ID, &cycle)
		if err != nil {
			u.log.Warnf("Failed to find components for application %s: %+v", application.ID, err)
			return apperror.Storage("failed to load components", err)
		}
		if err := workflow.VerifyGuard(policy, components); err != nil {
			return err
		}

		from := application.Status
		if err := workflow.Apply(application, workflow.EventVerify, time.Now(), ""); err != nil {
			return err
		}
		if err := u.updateIfVersion(ctx, tx, application); err != nil {
			return err
		}

		if err := u.auditService.LogTransition(ctx, tx, actor.UserID, application, entity.AuditActionApplicationVerify, from, datatypes.JSONMap{
			"policy": string(policy.VerificationMode),
		}); err != nil {
			return apperror.Storage("failed to write audit log", err)
		}

		verified = application
		return nil
	})
	if err != nil {
		return nil, err
	}

	u.log.Infof("Application %s verified by %s", verified.ID, actor.UserID)
	u.notify(ctx, service.EventApplicationVerified, actor, verified, nil, "")
	return verified, nil
}

// RejectApplication ends the current review cycle with a reason the
// physician can act on.
func (u *applicationUsecase) RejectApplication(ctx context.Context, actor entity.Actor, applicationID uuid.UUID, reason string) (*entity.Application, error) {
	if !u.authz.HasRole(actor, staff...) {
		return nil, ErrForbidden
	}

	var rejected *entity.Application
	err := withRetry(ctx, u.db, u.log, "reject application", func(tx *gorm.DB) error {
		application, err := findApplication(ctx, tx, u.applicationRepo, u.log, applicationID)
		if err != nil {
			return err
		}
		if err := checkReviewerScope(ctx, tx, u.assignmentRepo, u.log, actor, application); err != nil {
			return err
		}

		from := application.Status
		if err := workflow.Apply(application, workflow.EventReject, time.Now(), reason); err != nil {
			return err
		}
		if err := u.updateIfVersion(ctx, tx, application); err != nil {
			return err
		}

		if err := u.auditService.LogTransition(ctx, tx, actor.UserID, application, entity.AuditActionApplicationReject, from, datatypes.JSONMap{
			"reason": *application.RejectionReason,
		}); err != nil {
			return apperror.Storage("failed to write audit log", err)
		}

		rejected = application
		return nil
	})
	if err != nil {
		return nil, err
	}

	u.log.Infof("Application %s rejected by %s", rejected.ID, actor.UserID)
	u.notify(ctx, service.EventApplicationRejected, actor, rejected, nil, *rejected.RejectionReason)
	return rejected, nil
}

func (u *applicationUsecase) GetApplication(ctx context.Context, actor entity.Actor, applicationID uuid.UUID) (*ApplicationDetail, error) {
	application, err := findApplication(ctx, u.db, u.applicationRepo, u.log, applicationID)
	if err != nil {
		return nil, err
	}
	if err := canView(u.authz, actor, application); err != nil {
		return nil, err
	}
	return u.detail(ctx, application)
}

func (u *applicationUsecase) GetMyApplication(ctx context.Context, actor entity.Actor) (*ApplicationDetail, error) {
	application, err := u.FindMyApplication(ctx, actor)
	if err != nil {
		return nil, err
	}
	return u.detail(ctx, application)
}

// FindMyApplication resolves the calling physician's application.
func (u *applicationUsecase) FindMyApplication(ctx context.Context, actor entity.Actor) (*entity.Application, error) {
	if !u.authz.HasRole(actor, entity.RolePhysician) {
		return nil, ErrForbidden
	}

	application, err := u.applicationRepo.FindByPhysicianID(ctx, u.db, actor.UserID)
	if err != nil {
		u.log.Warnf("Failed to find application of physician %s: %+v", actor.UserID, err)
		return nil, apperror.Storage("failed to load application", err)
	}
	if application == nil {
		return nil, ErrNoApplicationForYou
	}
	return application, nil
}

// detail loads the parts of an application concurrently.
func (u *applicationUsecase) detail(ctx context.Context, application *entity.Application) (*ApplicationDetail, error) {
	detail := &ApplicationDetail{Application: application}
	cycle := application.Cycle

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slots, err := u.slotRepo.FindByApplicationID(gctx, u.db, application.ID)
		if err != nil {
			return err
		}
		detail.Slots = slots
		return nil
	})
	g.Go(func() error {
		components, err := u.componentRepo.FindByApplicationID(gctx, u.db, application.ID, &cycle)
		if err != nil {
			return err
		}
		detail.Components = components
		return nil
	})
	g.Go(func() error {
		assignment, err := u.assignmentRepo.FindActive(gctx, u.db, application.ID, cycle)
		if err != nil {
			return err
		}
		detail.Assignment = assignment
		return nil
	})
	g.Go(func() error {
		history, err := u.auditLogRepo.FindByApplicationID(gctx, u.db, application.ID)
		if err != nil {
			return err
		}
		detail.History = history
		return nil
	})
	if err := g.Wait(); err != nil {
		u.log.Warnf("Failed to load application %s detail: %+v", application.ID, err)
		return nil, apperror.Storage("failed to load application detail", err)
	}

	detail.Readiness = workflow.Evaluate(workflow.SectionData{
		Draft:             application.DraftData(),
		UploadedDocuments: entity.CountUploaded(detail.Slots),
		MinDocuments:      u.policy.Policy().MinDocuments,
	})
	return detail, nil
}

// GetReadiness recomputes section completion from the stored draft and
// document slots. Readiness is never persisted.
func (u *applicationUsecase) GetReadiness(ctx context.Context, actor entity.Actor, applicationID uuid.UUID) (workflow.Readiness, error) {
	application, err := findApplication(ctx, u.db, u.applicationRepo, u.log, applicationID)
	if err != nil {
		return workflow.Readiness{}, err
	}
	if err := canView(u.authz, actor, application); err != nil {
		return workflow.Readiness{}, err
	}
	return u.readiness(ctx, u.db, application)
}

func (u *applicationUsecase) ListApplications(ctx context.Context, actor entity.Actor, filter entity.ApplicationFilter) ([]entity.Application, int64, error) {
	if !u.authz.HasRole(actor, staff...) {
		return nil, 0, ErrForbidden
	}
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, 0, apperror.New(apperror.CodeInvalidKind, "unknown application status")
	}

	applications, total, err := u.applicationRepo.FindAll(ctx, u.db, &filter)
	if err != nil {
		u.log.Warnf("Failed to list applications: %+v", err)
		return nil, 0, apperror.Storage("failed to list applications", err)
	}
	return applications, total, nil
}

func (u *applicationUsecase) readiness(ctx context.Context, db *gorm.DB, application *entity.Application) (workflow.Readiness, error) {
	uploaded, err := u.slotRepo.CountUploaded(ctx, db, application.ID)
	if err != nil {
		u.log.Warnf("Failed to count documents for application %s: %+v", application.ID, err)
		return workflow.Readiness{}, apperror.Storage("failed to count documents", err)
	}
	return workflow.Evaluate(workflow.SectionData{
		Draft:             application.DraftData(),
		UploadedDocuments: int(uploaded),
		MinDocuments:      u.policy.Policy().MinDocuments,
	}), nil
}

// updateIfVersion writes the application, reporting errStaleVersion when
// another transaction got there first.
func (u *applicationUsecase) updateIfVersion(ctx context.Context, tx *gorm.DB, application *entity.Application) error {
	rows, err := u.applicationRepo.UpdateIfVersion(ctx, tx, application, application.Version)
	if err != nil {
		u.log.Warnf("Failed to update application %s: %+v", application.ID, err)
		return apperror.Storage("failed to update application", err)
	}
	if rows == 0 {
		return errStaleVersion
	}
	return nil
}

func (u *applicationUsecase) notify(ctx context.Context, eventType service.EventType, actor entity.Actor, application *entity.Application, reviewer *entity.User, reason string) {
	_ = u.notifier.Notify(ctx, newEvent(eventType, actor, application, reviewer, reason))
}

func newEvent(eventType service.EventType, actor entity.Actor, application *entity.Application, reviewer *entity.User, reason string) service.Event {
	event := service.Event{
		Type:           eventType,
		ApplicationID:  application.ID,
		Cycle:          application.Cycle,
		PhysicianID:    application.PhysicianID,
		PhysicianEmail: application.Physician.Email,
		PhysicianName:  application.Physician.FullName,
		ActorID:        actor.UserID,
		Reason:         reason,
		OccurredAt:     time.Now().UTC(),
	}
	if reviewer != nil {
		reviewerID := reviewer.ID
		event.ReviewerID = &reviewerID
		event.ReviewerEmail = reviewer.Email
		event.ReviewerName = reviewer.FullName
	}
	return event
}
