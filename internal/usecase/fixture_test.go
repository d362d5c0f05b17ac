package usecase

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sameerjoshi/docsimus-physicians-sub001/config"
	"github.com/sameerjoshi/docsimus-physicians-sub001/internal/delivery/dto"
	"github.com/sameerjoshi/docsimus-physicians-sub001/internal/domain/apperror"
	"github.com/sameerjoshi/docsimus-physicians-sub001/internal/domain/entity"
	domainRepo "github.com/sameerjoshi/docsimus-physicians-sub001/internal/domain/repository"
	"github.com/sameerjoshi/docsimus-physicians-sub001/internal/domain/workflow"
	"github.com/sameerjoshi/docsimus-physicians-sub001/internal/infrastructure/database"
	"github.com/sameerjoshi/docsimus-physicians-sub001/internal/infrastructure/storage"
	"github.com/sameerjoshi/docsimus-physicians-sub001/internal/repository"
	"github.com/sameerjoshi/docsimus-physicians-sub001/internal/service"
	"github.com/sameerjoshi/docsimus-physicians-sub001/pkg/jwt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"gorm.io/gorm"
)

var (
	pdfContent = []byte("%PDF-1.4\n1 0 obj\n<< /Type /Catalog >>\nendobj\ntrailer\n<< /Root 1 0 R >>\n%%EOF\n")
	pngContent = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")
)

type recordingNotifier struct {
	mu     sync.Mutex
	events []service.Event
}

func (n *recordingNotifier) Notify(ctx context.Context, event service.Event) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event)
	return nil
}

func (n *recordingNotifier) count(eventType service.EventType) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	count := 0
	for _, e := range n.events {
		if e.Type == eventType {
			count++
		}
	}
	return count
}

type memoryTokenStore struct {
	mu     sync.Mutex
	tokens map[string]bool
}

func newMemoryTokenStore() *memoryTokenStore {
	return &memoryTokenStore{tokens: make(map[string]bool)}
}

func memoryTokenKey(kind service.TokenKind, userID uuid.UUID, tokenID string) string {
	return fmt.Sprintf("%s:%s:%s", kind, userID, tokenID)
}

func (s *memoryTokenStore) Store(ctx context.Context, kind service.TokenKind, userID uuid.UUID, tokenID string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[memoryTokenKey(kind, userID, tokenID)] = true
	return nil
}

func (s *memoryTokenStore) Exists(ctx context.Context, kind service.TokenKind, userID uuid.UUID, tokenID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tokens[memoryTokenKey(kind, userID, tokenID)], nil
}

func (s *memoryTokenStore) Revoke(ctx context.Context, userID uuid.UUID, tokens map[service.TokenKind]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for kind, tokenID := range tokens {
		delete(s.tokens, memoryTokenKey(kind, userID, tokenID))
	}
	return nil
}

// flakyApplicationRepo passes through to the real repository but can be told
// to lose the next compare-and-set writes or to fail reads outright.
type flakyApplicationRepo struct {
	domainRepo.ApplicationRepository

	mu          sync.Mutex
	lostUpdates int
	lostTouches int
	findErr     error
	updateCalls int
}

func (r *flakyApplicationRepo) loseUpdates(n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lostUpdates = n
	r.updateCalls = 0
}

func (r *flakyApplicationRepo) loseTouches(n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lostTouches = n
}

func (r *flakyApplicationRepo) failFinds(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.findErr = err
}

func (r *flakyApplicationRepo) FindByID(ctx context.Context, db *gorm.DB, id uuid.UUID) (*entity.Application, error) {
	r.mu.Lock()
	err := r.findErr
	r.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return r.ApplicationRepository.FindByID(ctx, db, id)
}

func (r *flakyApplicationRepo) UpdateIfVersion(ctx context.Context, db *gorm.DB, application *entity.Application, expectedVersion int) (int64, error) {
	r.mu.Lock()
	r.updateCalls++
	lose := r.lostUpdates > 0
	if lose {
		r.lostUpdates--
	}
	r.mu.Unlock()
	if lose {
		return 0, nil
	}
	return r.ApplicationRepository.UpdateIfVersion(ctx, db, application, expectedVersion)
}

func (r *flakyApplicationRepo) TouchIfStatus(ctx context.Context, db *gorm.DB, id uuid.UUID, expectedVersion int, statuses ...entity.ApplicationStatus) (int64, error) {
	r.mu.Lock()
	lose := r.lostTouches > 0
	if lose {
		r.lostTouches--
	}
	r.mu.Unlock()
	if lose {
		return 0, nil
	}
	return r.ApplicationRepository.TouchIfStatus(ctx, db, id, expectedVersion, statuses...)
}

// testEnv wires the usecases to a private in-memory database and file store.
type testEnv struct {
	t        *testing.T
	ctx      context.Context
	db       *gorm.DB
	policy   *workflow.PolicyHolder
	files    storage.FileStore
	notifier *recordingNotifier
	tokens   *memoryTokenStore
	apps     *flakyApplicationRepo
	jwt      *jwt.JWTService
	auth     AuthUsecase
	audit    AuditLogUsecase
	workflow Workflow
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	log := logrus.New()
	log.SetOutput(io.Discard)

	db, err := database.NewSQLiteConnection(database.InMemory, "silent", log)
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if err := repository.NewRoleRepository().EnsureDefaults(context.Background(), db); err != nil {
		t.Fatalf("seed roles: %v", err)
	}

	env := &testEnv{
		t:        t,
		ctx:      context.Background(),
		db:       db,
		policy:   workflow.NewPolicyHolder(workflow.DefaultPolicy()),
		files:    storage.NewFileStore(afero.NewMemMapFs()),
		notifier: &recordingNotifier{},
		tokens:   newMemoryTokenStore(),
		apps:     &flakyApplicationRepo{ApplicationRepository: repository.NewApplicationRepository()},
		jwt: jwt.NewJWTService(config.JWTConfig{
			Secret:        "test-secret",
			AccessExpiry:  15 * time.Minute,
			RefreshExpiry: time.Hour,
		}),
	}

	authz := service.NewAuthorizer()
	userRepo := repository.NewUserRepository()
	roleRepo := repository.NewRoleRepository()
	applicationRepo := env.apps
	slotRepo := repository.NewDocumentSlotRepository()
	componentRepo := repository.NewComponentRepository()
	commentRepo := repository.NewCommentRepository()
	assignmentRepo := repository.NewAssignmentRepository()
	auditLogRepo := repository.NewAuditLogRepository()
	auditService := service.NewAuditService(log, auditLogRepo)

	env.auth = NewAuthUsecase(db, log, authz, auditService, env.tokens, env.jwt, userRepo, roleRepo, applicationRepo, slotRepo)
	env.audit = NewAuditLogUsecase(db, log, authz, auditLogRepo)
	env.workflow = NewWorkflow(
		NewApplicationUsecase(db, log, authz, env.policy, auditService, env.notifier, applicationRepo, slotRepo, componentRepo, assignmentRepo, auditLogRepo),
		NewDocumentUsecase(db, log, authz, auditService, env.files, 1<<20, applicationRepo, slotRepo),
		NewReviewUsecase(db, log, authz, auditService, applicationRepo, componentRepo, commentRepo, assignmentRepo),
		NewAssignmentUsecase(db, log, authz, auditService, env.notifier, applicationRepo, assignmentRepo, userRepo),
	)
	return env
}

// staffUser inserts an account directly, bypassing password hashing.
func (e *testEnv) staffUser(role string, name string) entity.Actor {
	e.t.Helper()
	roleIDs := map[string]int{
		entity.RoleAdmin:    entity.RoleIDAdmin,
		entity.RoleReviewer: entity.RoleIDReviewer,
	}
	user := &entity.User{
		RoleID:   roleIDs[role],
		Email:    strings.ToLower(name) + "@example.com",
		Password: "unused",
		FullName: name,
	}
	if err := repository.NewUserRepository().Create(e.ctx, e.db, user); err != nil {
		e.t.Fatalf("create %s %s: %v", role, name, err)
	}
	return entity.Actor{UserID: user.ID, Role: role}
}

func (e *testEnv) physician(name string) (entity.Actor, uuid.UUID) {
	e.t.Helper()
	resp, err := e.auth.RegisterPhysician(e.ctx, &dto.RegisterPhysicianRequest{
		Email:    strings.ToLower(name) + "@example.com",
		Password: "correct-horse",
		FullName: name,
	})
	if err != nil {
		e.t.Fatalf("register physician %s: %v", name, err)
	}
	return entity.Actor{UserID: resp.ID, Role: entity.RolePhysician}, *resp.ApplicationID
}

func completeDraft() entity.ApplicationDraft {
	fee := decimal.NewFromInt(500)
	return entity.ApplicationDraft{
		Personal: entity.PersonalInfo{
			FirstName:   "Asha",
			LastName:    "Rao",
			Phone:       "+91 98450 00000",
			DateOfBirth: "1985-04-12",
		},
		Address: entity.AddressInfo{
			AddressLine1: "12 MG Road",
			City:         "Bengaluru",
			State:        "Karnataka",
			PostalCode:   "560001",
		},
		Medical: entity.MedicalInfo{
			RegistrationNumber: "KMC-12345",
			Council:            "Karnataka Medical Council",
			Specialization:     "Cardiology",
		},
		Availability: entity.AvailabilityInfo{
			ConsultationFee: &fee,
			Languages:       []string{"en", "kn"},
		},
	}
}

func (e *testEnv) fillSections(actor entity.Actor, applicationID uuid.UUID) {
	e.t.Helper()
	draft := completeDraft()
	for _, section := range entity.Sections {
		if !section.Editable() {
			continue
		}
		if _, err := e.workflow.SaveSection(e.ctx, actor, applicationID, section, draft); err != nil {
			e.t.Fatalf("save %s: %v", section, err)
		}
	}
}

func (e *testEnv) upload(actor entity.Actor, applicationID uuid.UUID, kinds ...entity.DocumentKind) {
	e.t.Helper()
	for _, kind := range kinds {
		if _, err := e.workflow.UploadDocument(e.ctx, actor, applicationID, kind, string(kind)+".pdf", pdfContent); err != nil {
			e.t.Fatalf("upload %s: %v", kind, err)
		}
	}
}

// submittedApplication registers a physician and submits a complete
// application for them.
func (e *testEnv) submittedApplication(name string) (entity.Actor, uuid.UUID) {
	e.t.Helper()
	actor, applicationID := e.physician(name)
	e.fillSections(actor, applicationID)
	e.upload(actor, applicationID, entity.DocumentKinds[:3]...)
	if _, err := e.workflow.SubmitApplication(e.ctx, actor, applicationID); err != nil {
		e.t.Fatalf("submit: %v", err)
	}
	return actor, applicationID
}

func (e *testEnv) currentComponents(actor entity.Actor, applicationID uuid.UUID) []entity.Component {
	e.t.Helper()
	components, _, err := e.workflow.ListComponents(e.ctx, actor, applicationID, false)
	if err != nil {
		e.t.Fatalf("list components: %v", err)
	}
	return components
}

func (e *testEnv) application(actor entity.Actor, applicationID uuid.UUID) *entity.Application {
	e.t.Helper()
	detail, err := e.workflow.GetApplication(e.ctx, actor, applicationID)
	if err != nil {
		e.t.Fatalf("get application: %v", err)
	}
	return detail.Application
}

func assertCode(t *testing.T, err error, code apperror.Code) {
	t.Helper()
	if !apperror.IsCode(err, code) {
		t.Fatalf("expected %s error, got %v", code, err)
	}
}
