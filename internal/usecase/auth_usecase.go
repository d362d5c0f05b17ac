package usecase

import (
	"context"
	"strings"

	"github.com/sameerjoshi/docsimus-physicians-sub001/internal/converter"
	"github.com/sameerjoshi/docsimus-physicians-sub001/internal/delivery/dto"
	"github.com/sameerjoshi/docsimus-physicians-sub001/internal/domain/apperror"
	"github.com/sameerjoshi/docsimus-physicians-sub001/internal/domain/entity"
	"github.com/sameerjoshi/docsimus-physicians-sub001/internal/domain/repository"
	"github.com/sameerjoshi/docsimus-physicians-sub001/internal/service"
	"github.com/sameerjoshi/docsimus-physicians-sub001/pkg/jwt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var (
	ErrEmailAlreadyExists = apperror.New(apperror.CodeConflict, "email already exists")
	ErrInvalidCredentials = apperror.New(apperror.CodeUnauthorized, "invalid email or password")
	ErrInvalidToken       = apperror.New(apperror.CodeUnauthorized, "invalid or expired token")
	ErrTokenRevoked       = apperror.New(apperror.CodeUnauthorized, "token has been revoked")
	ErrAccountDisabled    = apperror.New(apperror.CodeForbidden, "account is disabled")
	ErrUserNotFound       = apperror.New(apperror.CodeNotFound, "user not found")
	ErrRoleNotFound       = apperror.New(apperror.CodeNotFound, "role not found")
)

type AuthUsecase interface {
	RegisterPhysician(ctx context.Context, req *dto.RegisterPhysicianRequest) (*dto.UserResponse, error)
	CreateReviewer(ctx context.Context, actor entity.Actor, req *dto.CreateReviewerRequest) (*dto.UserResponse, error)
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error)
	Logout(ctx context.Context, userID uuid.UUID, accessTokenID, refreshTokenID string) error
	RefreshToken(ctx context.Context, req *dto.RefreshTokenRequest) (*dto.TokenResponse, error)
	GetCurrentUser(ctx context.Context, userID uuid.UUID) (*dto.UserResponse, error)
}

type authUsecase struct {
	db              *gorm.DB
	log             *logrus.Logger
	authz           service.Authorizer
	auditService    service.AuditService
	tokenStore      service.TokenStore
	jwtService      *jwt.JWTService
	userRepo        repository.UserRepository
	roleRepo        repository.RoleRepository
	applicationRepo repository.ApplicationRepository
	slotRepo        repository.DocumentSlotRepository
}

func NewAuthUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	authz service.Authorizer,
	auditService service.AuditService,
	tokenStore service.TokenStore,
	jwtService *jwt.JWTService,
	userRepo repository.UserRepository,
	roleRepo repository.RoleRepository,
	applicationRepo repository.ApplicationRepository,
	slotRepo repository.DocumentSlotRepository,
) AuthUsecase {
	return &authUsecase{
		db:              db,
		log:             log,
		authz:           authz,
		auditService:    auditService,
		tokenStore:      tokenStore,
		jwtService:      jwtService,
		userRepo:        userRepo,
		roleRepo:        roleRepo,
		applicationRepo: applicationRepo,
		slotRepo:        slotRepo,
	}
}

// RegisterPhysician creates the account together with an empty draft
// application and its document slots.
func (u *authUsecase) RegisterPhysician(ctx context.Context, req *dto.RegisterPhysicianRequest) (*dto.UserResponse, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		u.log.Warnf("Failed to hash password: %+v", err)
		return nil, err
	}

	user := &entity.User{
		Email:    normalizeEmail(req.Email),
		Password: string(hashedPassword),
		FullName: strings.TrimSpace(req.FullName),
	}
	application := &entity.Application{}

	err = runInTx(ctx, u.db, func(tx *gorm.DB) error {
		if err := u.createUser(ctx, tx, user, entity.RolePhysician); err != nil {
			return err
		}

		application.PhysicianID = user.ID
		application.SetDraft(entity.ApplicationDraft{})
		if err := u.applicationRepo.Create(ctx, tx, application); err != nil {
			u.log.Warnf("Failed to create application: %+v", err)
			return apperror.Storage("failed to create application", err)
		}
		if err := u.slotRepo.CreateBatch(ctx, tx, entity.NewEmptySlots(application.ID)); err != nil {
			u.log.Warnf("Failed to create document slots: %+v", err)
			return apperror.Storage("failed to create document slots", err)
		}

		if err := u.auditService.Log(ctx, tx, &user.ID, &application.ID, entity.AuditActionUserRegister, datatypes.JSONMap{
			"role": entity.RolePhysician,
		}); err != nil {
			return apperror.Storage("failed to write audit log", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	u.log.Infof("Physician %s registered with application %s", user.ID, application.ID)
	resp := converter.UserToResponse(user)
	resp.ApplicationID = &application.ID
	return resp, nil
}

// CreateReviewer adds a reviewer account. Admin only.
func (u *authUsecase) CreateReviewer(ctx context.Context, actor entity.Actor, req *dto.CreateReviewerRequest) (*dto.UserResponse, error) {
	if !u.authz.HasRole(actor, entity.RoleAdmin) {
		return nil, ErrForbidden
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		u.log.Warnf("Failed to hash password: %+v", err)
		return nil, err
	}

	user := &entity.User{
		Email:    normalizeEmail(req.Email),
		Password: string(hashedPassword),
		FullName: strings.TrimSpace(req.FullName),
	}

	err = runInTx(ctx, u.db, func(tx *gorm.DB) error {
		if err := u.createUser(ctx, tx, user, entity.RoleReviewer); err != nil {
			return err
		}
		if err := u.auditService.Log(ctx, tx, &actor.UserID, nil, entity.AuditActionReviewerCreate, datatypes.JSONMap{
			"reviewer_id": user.ID.String(),
		}); err != nil {
			return apperror.Storage("failed to write audit log", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	u.log.Infof("Reviewer %s created by %s", user.ID, actor.UserID)
	return converter.UserToResponse(user), nil
}

func (u *authUsecase) Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error) {
	// Read-only, no transaction needed
	user, err := u.userRepo.FindByEmail(ctx, u.db, normalizeEmail(req.Email))
	if err != nil {
		u.log.Warnf("Failed to find user by email: %+v", err)
		return nil, apperror.Storage("failed to load user", err)
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	if !user.Active() {
		return nil, ErrAccountDisabled
	}

	return u.issueTokens(ctx, user)
}

// Logout revokes the presented access token and, when known, its refresh
// token.
func (u *authUsecase) Logout(ctx context.Context, userID uuid.UUID, accessTokenID, refreshTokenID string) error {
	if err := u.tokenStore.Revoke(ctx, userID, map[service.TokenKind]string{
		service.TokenKindAccess:  accessTokenID,
		service.TokenKindRefresh: refreshTokenID,
	}); err != nil {
		u.log.Warnf("Failed to revoke tokens: %+v", err)
		return apperror.Storage("failed to revoke tokens", err)
	}
	return nil
}

// RefreshToken rotates the refresh token. The role is re-read so a changed
// or disabled account takes effect on the next refresh.
func (u *authUsecase) RefreshToken(ctx context.Context, req *dto.RefreshTokenRequest) (*dto.TokenResponse, error) {
	claims, err := u.jwtService.ValidateToken(req.RefreshToken)
	if err != nil || claims.TokenType != jwt.RefreshToken {
		return nil, ErrInvalidToken
	}

	exists, err := u.tokenStore.Exists(ctx, service.TokenKindRefresh, claims.UserID, claims.TokenID)
	if err != nil {
		u.log.Warnf("Failed to check refresh token: %+v", err)
		return nil, apperror.Storage("failed to check refresh token", err)
	}
	if !exists {
		return nil, ErrTokenRevoked
	}

	if err := u.tokenStore.Revoke(ctx, claims.UserID, map[service.TokenKind]string{
		service.TokenKindRefresh: claims.TokenID,
	}); err != nil {
		u.log.Warnf("Failed to delete old refresh token: %+v", err)
		return nil, apperror.Storage("failed to rotate refresh token", err)
	}

	user, err := u.userRepo.FindByID(ctx, u.db, claims.UserID)
	if err != nil {
		u.log.Warnf("Failed to find user by ID: %+v", err)
		return nil, apperror.Storage("failed to load user", err)
	}
	if user == nil {
		return nil, ErrInvalidToken
	}
	if !user.Active() {
		return nil, ErrAccountDisabled
	}

	return u.issueTokens(ctx, user)
}

func (u *authUsecase) GetCurrentUser(ctx context.Context, userID uuid.UUID) (*dto.UserResponse, error) {
	user, err := u.userRepo.FindByID(ctx, u.db, userID)
	if err != nil {
		u.log.Warnf("Failed to find user by ID: %+v", err)
		return nil, apperror.Storage("failed to load user", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	resp := converter.UserToResponse(user)
	if user.RoleID == entity.RoleIDPhysician {
		application, err := u.applicationRepo.FindByPhysicianID(ctx, u.db, user.ID)
		if err != nil {
			u.log.Warnf("Failed to find application of physician %s: %+v", user.ID, err)
			return nil, apperror.Storage("failed to load application", err)
		}
		if application != nil {
			resp.ApplicationID = &application.ID
		}
	}
	return resp, nil
}

// createUser inserts user with the named role, resolved from the roles table.
func (u *authUsecase) createUser(ctx context.Context, tx *gorm.DB, user *entity.User, roleName string) error {
	role, err := u.roleRepo.FindByName(ctx, tx, roleName)
	if err != nil {
		u.log.Warnf("Failed to find role %s: %+v", roleName, err)
		return apperror.Storage("failed to load role", err)
	}
	if role == nil {
		return ErrRoleNotFound
	}
	user.RoleID = role.ID
	user.Role = *role

	if err := u.userRepo.Create(ctx, tx, user); err != nil {
		if isDuplicateKeyError(err, "email") {
			return ErrEmailAlreadyExists
		}
		u.log.Warnf("Failed to create user: %+v", err)
		return apperror.Storage("failed to create user", err)
	}
	return nil
}

func (u *authUsecase) issueTokens(ctx context.Context, user *entity.User) (*dto.TokenResponse, error) {
	role := user.RoleName()

	accessToken, accessTokenID, err := u.jwtService.GenerateAccessToken(user.ID, user.Email, role)
	if err != nil {
		u.log.Warnf("Failed to generate access token: %+v", err)
		return nil, err
	}
	refreshToken, refreshTokenID, err := u.jwtService.GenerateRefreshToken(user.ID, user.Email, role)
	if err != nil {
		u.log.Warnf("Failed to generate refresh token: %+v", err)
		return nil, err
	}

	if err := u.tokenStore.Store(ctx, service.TokenKindAccess, user.ID, accessTokenID, u.jwtService.GetAccessExpiry()); err != nil {
		u.log.Warnf("Failed to store access token: %+v", err)
		return nil, apperror.Storage("failed to store access token", err)
	}
	if err := u.tokenStore.Store(ctx, service.TokenKindRefresh, user.ID, refreshTokenID, u.jwtService.GetRefreshExpiry()); err != nil {
		u.log.Warnf("Failed to store refresh token: %+v", err)
		return nil, apperror.Storage("failed to store refresh token", err)
	}

	return &dto.TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(u.jwtService.GetAccessExpiry().Seconds()),
	}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
