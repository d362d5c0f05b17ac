package handler

import (
	"encoding/json"
	"net/http"

	"github.com/sameerjoshi/docsimus-physicians-sub001/internal/converter"
	"github.com/sameerjoshi/docsimus-physicians-sub001/internal/delivery/dto"
	"github.com/sameerjoshi/docsimus-physicians-sub001/internal/domain/entity"
	"github.com/sameerjoshi/docsimus-physicians-sub001/internal/usecase"
	"github.com/sameerjoshi/docsimus-physicians-sub001/pkg/response"
	"github.com/sameerjoshi/docsimus-physicians-sub001/pkg/validator"

	"github.com/gorilla/mux"
)

// ReviewHandler serves reviewers and admins working the review queue.
type ReviewHandler struct {
	workflow  usecase.Workflow
	validator *validator.CustomValidator
}

func NewReviewHandler(workflow usecase.Workflow, validator *validator.CustomValidator) *ReviewHandler {
	return &ReviewHandler{
		workflow:  workflow,
		validator: validator,
	}
}

// ListApplications handles GET /review/applications?status=&page=&limit=
func (h *ReviewHandler) ListApplications(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	page, limit := pageQuery(r)
	req := dto.ListApplicationsRequest{
		Status: r.URL.Query().Get("status"),
		Page:   page,
		Limit:  limit,
	}
	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	applications, total, err := h.workflow.ListApplications(r.Context(), actor, entity.ApplicationFilter{
		Status: entity.ApplicationStatus(req.Status),
		Limit:  req.Limit,
		Offset: (req.Page - 1) * req.Limit,
	})
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.SuccessWithMeta(w, http.StatusOK, "Applications retrieved successfully",
		converter.ApplicationsToResponses(applications), response.NewMeta(req.Page, req.Limit, total))
}

// Queue handles GET /review/queue: submitted applications nobody holds.
func (h *ReviewHandler) Queue(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	applications, err := h.workflow.ListUnassigned(r.Context(), actor)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, http.StatusOK, "Queue retrieved successfully", converter.ApplicationsToResponses(applications))
}

// Assigned handles GET /review/assigned for the calling reviewer.
func (h *ReviewHandler) Assigned(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	applications, err := h.workflow.ListAssignedTo(r.Context(), actor, actor.UserID)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, http.StatusOK, "Assigned applications retrieved successfully", converter.ApplicationsToResponses(applications))
}

// GetApplication handles GET /review/applications/{id}
func (h *ReviewHandler) GetApplication(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	id, ok := uuidVar(w, r, "id", "application")
	if !ok {
		return
	}

	detail, err := h.workflow.GetApplication(r.Context(), actor, id)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, http.StatusOK, "Application retrieved successfully", detailToResponse(detail))
}

// ListComponents handles GET /review/applications/{id}/components. Earlier
// cycles are included with ?include_archived=true.
func (h *ReviewHandler) ListComponents(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	id, ok := uuidVar(w, r, "id", "application")
	if !ok {
		return
	}

	includeArchived := r.URL.Query().Get("include_archived") == "true"
	components, currentCycle, err := h.workflow.ListComponents(r.Context(), actor, id, includeArchived)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, http.StatusOK, "Components retrieved successfully", converter.ComponentsToResponses(components, currentCycle))
}

// DownloadDocument handles GET /review/applications/{id}/documents/{kind}
func (h *ReviewHandler) DownloadDocument(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	id, ok := uuidVar(w, r, "id", "application")
	if !ok {
		return
	}

	slot, content, err := h.workflow.OpenDocument(r.Context(), actor, id, entity.DocumentKind(mux.Vars(r)["kind"]))
	if err != nil {
		response.FromError(w, err)
		return
	}

	writeFile(w, slot, content)
}

// Claim handles POST /review/applications/{id}/claim: the caller assigns
// the application to themself.
func (h *ReviewHandler) Claim(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	id, ok := uuidVar(w, r, "id", "application")
	if !ok {
		return
	}

	assignment, err := h.workflow.Assign(r.Context(), actor, id, actor.UserID)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, http.StatusOK, "Application claimed successfully", converter.AssignmentToResponse(assignment))
}

// Verify handles POST /review/applications/{id}/verify
func (h *ReviewHandler) Verify(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	id, ok := uuidVar(w, r, "id", "application")
	if !ok {
		return
	}

	application, err := h.workflow.VerifyApplication(r.Context(), actor, id)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, http.StatusOK, "Application verified successfully", converter.ApplicationToResponse(application))
}

// Reject handles POST /review/applications/{id}/reject
func (h *ReviewHandler) Reject(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	id, ok := uuidVar(w, r, "id", "application")
	if !ok {
		return
	}

	var req dto.RejectApplicationRequest
	if !decodeBody(w, r, h.validator, &req) {
		return
	}

	application, err := h.workflow.RejectApplication(r.Context(), actor, id, req.Reason)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, http.StatusOK, "Application rejected successfully", converter.ApplicationToResponse(application))
}

// Decide handles POST /review/components/{id}/decision
func (h *ReviewHandler) Decide(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	id, ok := uuidVar(w, r, "id", "component")
	if !ok {
		return
	}

	var req dto.DecisionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	component, err := h.workflow.Decide(r.Context(), actor, id, entity.ComponentStatus(req.Status), req.Comment)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, http.StatusOK, "Decision recorded successfully", converter.ComponentToResponse(component, component.Cycle))
}

// Comments handles GET /review/components/{id}/comments
func (h *ReviewHandler) Comments(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	id, ok := uuidVar(w, r, "id", "component")
	if !ok {
		return
	}

	comments, err := h.workflow.History(r.Context(), actor, id)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, http.StatusOK, "Comments retrieved successfully", converter.CommentsToResponses(comments))
}
