package handler

import (
	"encoding/json"
	"net/http"

	"github.com/sameerjoshi/docsimus-physicians-sub001/internal/delivery/dto"
	"github.com/sameerjoshi/docsimus-physicians-sub001/internal/delivery/http/middleware"
	"github.com/sameerjoshi/docsimus-physicians-sub001/internal/usecase"
	"github.com/sameerjoshi/docsimus-physicians-sub001/pkg/jwt"
	"github.com/sameerjoshi/docsimus-physicians-sub001/pkg/response"
	"github.com/sameerjoshi/docsimus-physicians-sub001/pkg/validator"

	"github.com/google/uuid"
)

// AuthHandler serves account endpoints. Only physicians sign themselves up;
// reviewer accounts come from the admin routes.
type AuthHandler struct {
	authUsecase usecase.AuthUsecase
	validator   *validator.CustomValidator
	jwtService  *jwt.JWTService
}

func NewAuthHandler(authUsecase usecase.AuthUsecase, validator *validator.CustomValidator, jwtService *jwt.JWTService) *AuthHandler {
	return &AuthHandler{
		authUsecase: authUsecase,
		validator:   validator,
		jwtService:  jwtService,
	}
}

// RegisterPhysician creates the account together with its draft application.
func (h *AuthHandler) RegisterPhysician(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterPhysicianRequest
	if !decodeBody(w, r, h.validator, &req) {
		return
	}

	user, err := h.authUsecase.RegisterPhysician(r.Context(), &req)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Success(w, http.StatusCreated, "Physician registered successfully", user)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if !decodeBody(w, r, h.validator, &req) {
		return
	}

	tokens, err := h.authUsecase.Login(r.Context(), &req)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Success(w, http.StatusOK, "Login successful", tokens)
}

// RefreshToken exchanges a refresh token for a new pair; the old refresh
// token stops working.
func (h *AuthHandler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	var req dto.RefreshTokenRequest
	if !decodeBody(w, r, h.validator, &req) {
		return
	}

	tokens, err := h.authUsecase.RefreshToken(r.Context(), &req)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Success(w, http.StatusOK, "Token refreshed successfully", tokens)
}

// Logout revokes the access token of the request and, when the body carries
// one belonging to the same user, the refresh token too.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	accessTokenID, ok := middleware.GetTokenIDFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Invalid token")
		return
	}

	var req struct {
		RefreshToken string `json:"refresh_token"`
	}
	_ = json.NewDecoder(r.Body).Decode(&req)

	err := h.authUsecase.Logout(r.Context(), actor.UserID, accessTokenID, h.refreshTokenID(req.RefreshToken, actor.UserID))
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Success(w, http.StatusOK, "Logout successful", nil)
}

func (h *AuthHandler) refreshTokenID(token string, owner uuid.UUID) string {
	if token == "" {
		return ""
	}
	claims, err := h.jwtService.ValidateToken(token)
	if err != nil || claims.UserID != owner || claims.TokenType != jwt.RefreshToken {
		return ""
	}
	return claims.TokenID
}

func (h *AuthHandler) GetCurrentUser(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	user, err := h.authUsecase.GetCurrentUser(r.Context(), actor.UserID)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Success(w, http.StatusOK, "User retrieved successfully", user)
}
