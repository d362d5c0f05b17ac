package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/sameerjoshi/docsimus-physicians-sub001/internal/domain/apperror"
	"github.com/sameerjoshi/docsimus-physicians-sub001/internal/domain/entity"
	"github.com/sameerjoshi/docsimus-physicians-sub001/internal/domain/repository"
	"github.com/sameerjoshi/docsimus-physicians-sub001/internal/infrastructure/storage"
	"github.com/sameerjoshi/docsimus-physicians-sub001/internal/service"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var (
	ErrInvalidDocumentKind = apperror.New(apperror.CodeInvalidKind, "unknown document kind")
	ErrUnsupportedFile     = apperror.New(apperror.CodeUnsupportedFile, "only PDF, JPEG and PNG files are accepted")
	ErrFileTooLarge        = apperror.New(apperror.CodeUnsupportedFile, "file exceeds the maximum upload size")
	ErrEmptyFile           = apperror.New(apperror.CodeUnsupportedFile, "file is empty")
	ErrDocumentNotFound    = apperror.New(apperror.CodeNotFound, "document has not been uploaded")
)

// allowedContentTypes are the document formats reviewers can open.
var allowedContentTypes = []string{"application/pdf", "image/jpeg", "image/png"}

// StoredFile describes content already written to the file store.
type StoredFile struct {
	Ref          string
	OriginalName string
	ContentType  string
	Size         int64
}

type DocumentUsecase interface {
	RegisterUpload(ctx context.Context, actor entity.Actor, applicationID uuid.UUID, kind entity.DocumentKind, file StoredFile) (*entity.DocumentSlot, error)
	UploadDocument(ctx context.Context, actor entity.Actor, applicationID uuid.UUID, kind entity.DocumentKind, filename string, content []byte) (*entity.DocumentSlot, error)
	ListSlots(ctx context.Context, actor entity.Actor, applicationID uuid.UUID) ([]entity.DocumentSlot, error)
	OpenDocument(ctx context.Context, actor entity.Actor, applicationID uuid.UUID, kind entity.DocumentKind) (*entity.DocumentSlot, []byte, error)
}

type documentUsecase struct {
	db              *gorm.DB
	log             *logrus.Logger
	authz           service.Authorizer
	auditService    service.AuditService
	fileStore       storage.FileStore
	maxBytes        int64
	applicationRepo repository.ApplicationRepository
	slotRepo        repository.DocumentSlotRepository
}

func NewDocumentUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	authz service.Authorizer,
	auditService service.AuditService,
	fileStore storage.FileStore,
	maxBytes int64,
	applicationRepo repository.ApplicationRepository,
	slotRepo repository.DocumentSlotRepository,
) DocumentUsecase {
	return &documentUsecase{
		db:              db,
		log:             log,
		authz:           authz,
		auditService:    auditService,
		fileStore:       fileStore,
		maxBytes:        maxBytes,
		applicationRepo: applicationRepo,
		slotRepo:        slotRepo,
	}
}

// RegisterUpload marks the slot of kind as uploaded with file, replacing
// any previous file. It is serialized against submit through the
// application version, so a document can never land on a submitted
// application.
func (u *documentUsecase) RegisterUpload(ctx context.Context, actor entity.Actor, applicationID uuid.UUID, kind entity.DocumentKind, file StoredFile) (*entity.DocumentSlot, error) {
	if !u.authz.HasRole(actor, entity.RolePhysician) {
		return nil, ErrForbidden
	}

	var slot *entity.DocumentSlot
	var previousRef string
	err := withRetry(ctx, u.db, u.log, "register upload", func(tx *gorm.DB) error {
		application, err := u.checkUploadable(ctx, tx, actor, applicationID, kind)
		if err != nil {
			return err
		}

		current, err := u.slotRepo.FindByApplicationAndKind(ctx, tx, application.ID, kind)
		if err != nil {
			u.log.Warnf("Failed to find %s slot for application %s: %+v", kind, application.ID, err)
			return apperror.Storage("failed to load document slot", err)
		}

		rows, err := u.applicationRepo.TouchIfStatus(ctx, tx, application.ID, application.Version,
			entity.ApplicationStatusDraft, entity.ApplicationStatusRejected)
		if err != nil {
			u.log.Warnf("Failed to lock application %s: %+v", application.ID, err)
			return apperror.Storage("failed to update application", err)
		}
		if rows == 0 {
			return errStaleVersion
		}

		now := time.Now().UTC()
		if current == nil {
			current = &entity.DocumentSlot{ApplicationID: application.ID, Kind: kind}
		}
		previousRef = current.FileRef
		current.Status = entity.DocumentStatusUploaded
		current.FileRef = file.Ref
		current.OriginalName = file.OriginalName
		current.ContentType = file.ContentType
		current.SizeBytes = file.Size
		current.UploadedAt = &now

		if err := u.slotRepo.Update(ctx, tx, current); err != nil {
			u.log.Warnf("Failed to update %s slot for application %s: %+v", kind, application.ID, err)
			return apperror.Storage("failed to update document slot", err)
		}

		if err := u.auditService.Log(ctx, tx, &actor.UserID, &application.ID, entity.AuditActionDocumentUpload, datatypes.JSONMap{
			"kind":     string(kind),
			"replaced": previousRef != "",
		}); err != nil {
			return apperror.Storage("failed to write audit log", err)
		}

		slot = current
		return nil
	})
	if err != nil {
		return nil, err
	}

	if previousRef != "" && previousRef != file.Ref {
		if err := u.fileStore.Remove(ctx, previousRef); err != nil {
			u.log.Warnf("Failed to remove replaced file %s: %+v", previousRef, err)
		}
	}
	return slot, nil
}

// UploadDocument validates and stores raw file content, then registers it.
// The stored file is removed again when registration fails.
func (u *documentUsecase) UploadDocument(ctx context.Context, actor entity.Actor, applicationID uuid.UUID, kind entity.DocumentKind, filename string, content []byte) (*entity.DocumentSlot, error) {
	if !u.authz.HasRole(actor, entity.RolePhysician) {
		return nil, ErrForbidden
	}
	if _, err := u.checkUploadable(ctx, u.db, actor, applicationID, kind); err != nil {
		return nil, err
	}

	if len(content) == 0 {
		return nil, ErrEmptyFile
	}
	if u.maxBytes > 0 && int64(len(content)) > u.maxBytes {
		return nil, ErrFileTooLarge
	}
	mtype := mimetype.Detect(content)
	if !mimetype.EqualsAny(mtype.String(), allowedContentTypes...) {
		return nil, ErrUnsupportedFile
	}

	ref, err := u.fileStore.Save(ctx, fmt.Sprintf("applications/%s/%s", applicationID, kind), mtype.Extension(), content)
	if err != nil {
		u.log.Warnf("Failed to store %s for application %s: %+v", kind, applicationID, err)
		return nil, apperror.Storage("failed to store file", err)
	}

	slot, err := u.RegisterUpload(ctx, actor, applicationID, kind, StoredFile{
		Ref:          ref,
		OriginalName: filename,
		ContentType:  mtype.String(),
		Size:         int64(len(content)),
	})
	if err != nil {
		if rmErr := u.fileStore.Remove(ctx, ref); rmErr != nil {
			u.log.Warnf("Failed to remove orphaned file %s: %+v", ref, rmErr)
		}
		return nil, err
	}

	return slot, nil
}

func (u *documentUsecase) ListSlots(ctx context.Context, actor entity.Actor, applicationID uuid.UUID) ([]entity.DocumentSlot, error) {
	application, err := findApplication(ctx, u.db, u.applicationRepo, u.log, applicationID)
	if err != nil {
		return nil, err
	}
	if err := canView(u.authz, actor, application); err != nil {
		return nil, err
	}

	slots, err := u.slotRepo.FindByApplicationID(ctx, u.db, application.ID)
	if err != nil {
		u.log.Warnf("Failed to find slots for application %s: %+v", application.ID, err)
		return nil, apperror.Storage("failed to load document slots", err)
	}
	return slots, nil
}

// OpenDocument returns the stored content of one uploaded document to
// anyone allowed to view the application.
func (u *documentUsecase) OpenDocument(ctx context.Context, actor entity.Actor, applicationID uuid.UUID, kind entity.DocumentKind) (*entity.DocumentSlot, []byte, error) {
	application, err := findApplication(ctx, u.db, u.applicationRepo, u.log, applicationID)
	if err != nil {
		return nil, nil, err
	}
	if err := canView(u.authz, actor, application); err != nil {
		return nil, nil, err
	}
	if !kind.Valid() {
		return nil, nil, ErrInvalidDocumentKind
	}

	slot, err := u.slotRepo.FindByApplicationAndKind(ctx, u.db, application.ID, kind)
	if err != nil {
		u.log.Warnf("Failed to find %s slot for application %s: %+v", kind, application.ID, err)
		return nil, nil, apperror.Storage("failed to load document slot", err)
	}
	if slot == nil || !slot.IsUploaded() {
		return nil, nil, ErrDocumentNotFound
	}

	content, err := u.fileStore.Open(ctx, slot.FileRef)
	if err != nil {
		u.log.Warnf("Failed to open %s for application %s: %+v", kind, application.ID, err)
		return nil, nil, apperror.Storage("failed to read document", err)
	}
	return slot, content, nil
}

// checkUploadable applies the ownership, kind and status rules in that
// order.
func (u *documentUsecase) checkUploadable(ctx context.Context, db *gorm.DB, actor entity.Actor, applicationID uuid.UUID, kind entity.DocumentKind) (*entity.Application, error) {
	application, err := findApplication(ctx, db, u.applicationRepo, u.log, applicationID)
	if err != nil {
		return nil, err
	}
	if !application.OwnedBy(actor.UserID) {
		return nil, ErrNotOwner
	}
	if !kind.Valid() {
		return nil, ErrInvalidDocumentKind
	}
	if !application.AcceptsUploads() {
		return nil, ErrApplicationLocked
	}
	return application, nil
}
