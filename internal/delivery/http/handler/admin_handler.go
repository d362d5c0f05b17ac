package handler

import (
	"net/http"

	"github.com/sameerjoshi/docsimus-physicians-sub001/internal/converter"
	"github.com/sameerjoshi/docsimus-physicians-sub001/internal/delivery/dto"
	"github.com/sameerjoshi/docsimus-physicians-sub001/internal/usecase"
	"github.com/sameerjoshi/docsimus-physicians-sub001/pkg/response"
	"github.com/sameerjoshi/docsimus-physicians-sub001/pkg/validator"

	"github.com/google/uuid"
)

type AdminHandler struct {
	authUsecase usecase.AuthUsecase
	workflow    usecase.Workflow
	validator   *validator.CustomValidator
}

func NewAdminHandler(authUsecase usecase.AuthUsecase, workflow usecase.Workflow, validator *validator.CustomValidator) *AdminHandler {
	return &AdminHandler{
		authUsecase: authUsecase,
		workflow:    workflow,
		validator:   validator,
	}
}

// CreateReviewer handles POST /admin/reviewers
func (h *AdminHandler) CreateReviewer(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	var req dto.CreateReviewerRequest
	if !decodeBody(w, r, h.validator, &req) {
		return
	}

	user, err := h.authUsecase.CreateReviewer(r.Context(), actor, &req)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, http.StatusCreated, "Reviewer created successfully", user)
}

// Workload handles GET /admin/reviewers/{id}/workload
func (h *AdminHandler) Workload(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	id, ok := uuidVar(w, r, "id", "reviewer")
	if !ok {
		return
	}

	workload, err := h.workflow.WorkloadOf(r.Context(), actor, id)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, http.StatusOK, "Workload retrieved successfully", dto.WorkloadResponse{
		ReviewerID: id,
		Workload:   workload,
	})
}

// Assign handles POST /admin/applications/{id}/assign
func (h *AdminHandler) Assign(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	id, ok := uuidVar(w, r, "id", "application")
	if !ok {
		return
	}

	var req dto.AssignRequest
	if !decodeBody(w, r, h.validator, &req) {
		return
	}

	assignment, err := h.workflow.Assign(r.Context(), actor, id, uuid.MustParse(req.ReviewerID))
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, http.StatusOK, "Application assigned successfully", converter.AssignmentToResponse(assignment))
}

// AutoAssign handles POST /admin/applications/{id}/auto-assign
func (h *AdminHandler) AutoAssign(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	id, ok := uuidVar(w, r, "id", "application")
	if !ok {
		return
	}

	assignment, err := h.workflow.AutoAssign(r.Context(), actor, id)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, http.StatusOK, "Application assigned successfully", converter.AssignmentToResponse(assignment))
}
