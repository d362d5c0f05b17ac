package usecase

import (
	"testing"

	"github.com/sameerjoshi/docsimus-physicians-sub001/internal/delivery/dto"
	"github.com/sameerjoshi/docsimus-physicians-sub001/internal/domain/apperror"
	"github.com/sameerjoshi/docsimus-physicians-sub001/internal/domain/entity"
	"github.com/sameerjoshi/docsimus-physicians-sub001/internal/repository"
	"github.com/sameerjoshi/docsimus-physicians-sub001/internal/service"
)

func TestRegisterPhysicianOpensDraftApplication(t *testing.T) {
	env := newTestEnv(t)
	physician, applicationID := env.physician("Bhavna")

	detail, err := env.workflow.GetMyApplication(env.ctx, physician)
	if err != nil {
		t.Fatalf("get my application: %v", err)
	}
	if detail.Application.ID != applicationID || detail.Application.Status != entity.ApplicationStatusDraft {
		t.Fatalf("unexpected application: %+v", detail.Application)
	}
	if detail.Application.Cycle != 1 || detail.Application.Version != 1 {
		t.Fatalf("expected fresh cycle and version, got %d/%d", detail.Application.Cycle, detail.Application.Version)
	}
	if len(detail.Slots) != len(entity.DocumentKinds) || entity.CountUploaded(detail.Slots) != 0 {
		t.Fatalf("expected %d empty slots, got %+v", len(entity.DocumentKinds), detail.Slots)
	}
	if detail.Readiness.Ready {
		t.Fatalf("empty draft must not be ready")
	}

	me, err := env.auth.GetCurrentUser(env.ctx, physician.UserID)
	if err != nil {
		t.Fatalf("current user: %v", err)
	}
	if me.Role != entity.RolePhysician || me.ApplicationID == nil || *me.ApplicationID != applicationID {
		t.Fatalf("unexpected current user: %+v", me)
	}
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	env := newTestEnv(t)
	env.physician("Chitra")

	_, err := env.auth.RegisterPhysician(env.ctx, &dto.RegisterPhysicianRequest{
		Email:    "  CHITRA@example.com ",
		Password: "another-password",
		FullName: "Chitra Again",
	})
	assertCode(t, err, apperror.CodeConflict)
}

func TestLoginRefreshAndLogout(t *testing.T) {
	env := newTestEnv(t)
	physician, _ := env.physician("Deepa")

	_, err := env.auth.Login(env.ctx, &dto.LoginRequest{Email: "deepa@example.com", Password: "wrong-password"})
	assertCode(t, err, apperror.CodeUnauthorized)

	tokens, err := env.auth.Login(env.ctx, &dto.LoginRequest{Email: "Deepa@Example.com", Password: "correct-horse"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	claims, err := env.jwt.ValidateToken(tokens.AccessToken)
	if err != nil {
		t.Fatalf("validate access token: %v", err)
	}
	if claims.UserID != physician.UserID || claims.Role != entity.RolePhysician {
		t.Fatalf("unexpected claims: %+v", claims)
	}

	_, err = env.auth.RefreshToken(env.ctx, &dto.RefreshTokenRequest{RefreshToken: tokens.AccessToken})
	assertCode(t, err, apperror.CodeUnauthorized)

	rotated, err := env.auth.RefreshToken(env.ctx, &dto.RefreshTokenRequest{RefreshToken: tokens.RefreshToken})
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}

	// The old refresh token was consumed by the rotation.
	_, err = env.auth.RefreshToken(env.ctx, &dto.RefreshTokenRequest{RefreshToken: tokens.RefreshToken})
	assertCode(t, err, apperror.CodeUnauthorized)

	refreshClaims, err := env.jwt.ValidateToken(rotated.RefreshToken)
	if err != nil {
		t.Fatalf("validate refresh token: %v", err)
	}
	accessClaims, err := env.jwt.ValidateToken(rotated.AccessToken)
	if err != nil {
		t.Fatalf("validate access token: %v", err)
	}
	if err := env.auth.Logout(env.ctx, physician.UserID, accessClaims.TokenID, refreshClaims.TokenID); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if ok, _ := env.tokens.Exists(env.ctx, service.TokenKindAccess, physician.UserID, accessClaims.TokenID); ok {
		t.Fatalf("expected access token revoked")
	}
	_, err = env.auth.RefreshToken(env.ctx, &dto.RefreshTokenRequest{RefreshToken: rotated.RefreshToken})
	assertCode(t, err, apperror.CodeUnauthorized)
}

func TestOnlyAdminsCreateReviewers(t *testing.T) {
	env := newTestEnv(t)
	admin := env.staffUser(entity.RoleAdmin, "Ajay")
	reviewer := env.staffUser(entity.RoleReviewer, "Rupa")
	req := &dto.CreateReviewerRequest{Email: "new.reviewer@example.com", Password: "password123", FullName: "New Reviewer"}

	_, err := env.auth.CreateReviewer(env.ctx, reviewer, req)
	assertCode(t, err, apperror.CodeForbidden)

	created, err := env.auth.CreateReviewer(env.ctx, admin, req)
	if err != nil {
		t.Fatalf("create reviewer: %v", err)
	}
	if created.Role != entity.RoleReviewer || created.ApplicationID != nil {
		t.Fatalf("unexpected reviewer: %+v", created)
	}

	logs, err := env.audit.GetAllAuditLogs(env.ctx, admin, &dto.AuditLogListRequest{Page: 1, Limit: 10})
	if err != nil {
		t.Fatalf("audit logs: %v", err)
	}
	if logs.Total != 1 || logs.Logs[0].Action != entity.AuditActionReviewerCreate {
		t.Fatalf("expected reviewer creation to be audited, got %+v", logs)
	}

	_, err = env.audit.GetAllAuditLogs(env.ctx, reviewer, &dto.AuditLogListRequest{Page: 1, Limit: 10})
	assertCode(t, err, apperror.CodeForbidden)
}

func TestRoleSeedingIsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	roleRepo := repository.NewRoleRepository()

	if err := roleRepo.EnsureDefaults(env.ctx, env.db); err != nil {
		t.Fatalf("second seed: %v", err)
	}
	roles, err := roleRepo.FindAll(env.ctx, env.db)
	if err != nil {
		t.Fatalf("find roles: %v", err)
	}
	if len(roles) != len(entity.DefaultRoles) {
		t.Fatalf("expected %d roles, got %d", len(entity.DefaultRoles), len(roles))
	}

	role, err := roleRepo.FindByName(env.ctx, env.db, " Reviewer ")
	if err != nil || role == nil || role.ID != entity.RoleIDReviewer {
		t.Fatalf("expected reviewer role, got %+v (%v)", role, err)
	}
	if role, _ := roleRepo.FindByName(env.ctx, env.db, "superuser"); role != nil {
		t.Fatalf("expected unknown role to be absent")
	}
}
