package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/sameerjoshi/docsimus-physicians-sub001/internal/converter"
	"github.com/sameerjoshi/docsimus-physicians-sub001/internal/domain/entity"
	"github.com/sameerjoshi/docsimus-physicians-sub001/internal/usecase"
	"github.com/sameerjoshi/docsimus-physicians-sub001/pkg/response"

	"github.com/gorilla/mux"
)

// multipartOverhead covers form boundaries and headers around the file.
const multipartOverhead = 1 << 20

// ApplicationHandler serves the physician's own application under /me.
type ApplicationHandler struct {
	workflow usecase.Workflow
	maxBytes int64
}

func NewApplicationHandler(workflow usecase.Workflow, maxBytes int64) *ApplicationHandler {
	return &ApplicationHandler{
		workflow: workflow,
		maxBytes: maxBytes,
	}
}

// GetMyApplication handles GET /me/application
func (h *ApplicationHandler) GetMyApplication(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	detail, err := h.workflow.GetMyApplication(r.Context(), actor)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, http.StatusOK, "Application retrieved successfully", detailToResponse(detail))
}

// GetMyReadiness handles GET /me/application/readiness
func (h *ApplicationHandler) GetMyReadiness(w http.ResponseWriter, r *http.Request) {
	actor, application, ok := h.myApplication(w, r)
	if !ok {
		return
	}

	readiness, err := h.workflow.GetReadiness(r.Context(), actor, application.ID)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, http.StatusOK, "Readiness retrieved successfully", converter.ReadinessToResponse(readiness))
}

// SaveSection handles PUT /me/application/sections/{section}. The body is
// the section object, e.g. {"first_name": ...} for personal.
func (h *ApplicationHandler) SaveSection(w http.ResponseWriter, r *http.Request) {
	actor, application, ok := h.myApplication(w, r)
	if !ok {
		return
	}

	var body json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	section := entity.Section(mux.Vars(r)["section"])
	draft, err := converter.SectionToDraft(section, body)
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid section data", nil)
		return
	}

	saved, err := h.workflow.SaveSection(r.Context(), actor, application.ID, section, draft)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, http.StatusOK, "Section saved successfully", converter.ApplicationToResponse(saved))
}

// UploadDocument handles POST /me/application/documents/{kind} with a
// multipart "file" field.
func (h *ApplicationHandler) UploadDocument(w http.ResponseWriter, r *http.Request) {
	actor, application, ok := h.myApplication(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes+multipartOverhead)
	file, header, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.FromError(w, usecase.ErrFileTooLarge)
			return
		}
		response.Error(w, http.StatusBadRequest, "File is required", nil)
		return
	}
	defer file.Close()

	// Read one byte past the limit so oversized files are detected.
	content, err := io.ReadAll(io.LimitReader(file, h.maxBytes+1))
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Failed to read file", nil)
		return
	}

	kind := entity.DocumentKind(mux.Vars(r)["kind"])
	slot, err := h.workflow.UploadDocument(r.Context(), actor, application.ID, kind, header.Filename, content)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, http.StatusOK, "Document uploaded successfully", converter.SlotsToResponses([]entity.DocumentSlot{*slot})[0])
}

// ListMyDocuments handles GET /me/application/documents
func (h *ApplicationHandler) ListMyDocuments(w http.ResponseWriter, r *http.Request) {
	actor, application, ok := h.myApplication(w, r)
	if !ok {
		return
	}

	slots, err := h.workflow.ListSlots(r.Context(), actor, application.ID)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, http.StatusOK, "Documents retrieved successfully", converter.SlotsToResponses(slots))
}

// DownloadMyDocument handles GET /me/application/documents/{kind}
func (h *ApplicationHandler) DownloadMyDocument(w http.ResponseWriter, r *http.Request) {
	actor, application, ok := h.myApplication(w, r)
	if !ok {
		return
	}

	slot, content, err := h.workflow.OpenDocument(r.Context(), actor, application.ID, entity.DocumentKind(mux.Vars(r)["kind"]))
	if err != nil {
		response.FromError(w, err)
		return
	}

	writeFile(w, slot, content)
}

// Submit handles POST /me/application/submit
func (h *ApplicationHandler) Submit(w http.ResponseWriter, r *http.Request) {
	actor, application, ok := h.myApplication(w, r)
	if !ok {
		return
	}

	submitted, err := h.workflow.SubmitApplication(r.Context(), actor, application.ID)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, http.StatusOK, "Application submitted successfully", converter.ApplicationToResponse(submitted))
}

// Reopen handles POST /me/application/reopen
func (h *ApplicationHandler) Reopen(w http.ResponseWriter, r *http.Request) {
	actor, application, ok := h.myApplication(w, r)
	if !ok {
		return
	}

	reopened, err := h.workflow.ReopenApplication(r.Context(), actor, application.ID)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, http.StatusOK, "Application reopened successfully", converter.ApplicationToResponse(reopened))
}

func (h *ApplicationHandler) myApplication(w http.ResponseWriter, r *http.Request) (entity.Actor, *entity.Application, bool) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return actor, nil, false
	}
	application, err := h.workflow.FindMyApplication(r.Context(), actor)
	if err != nil {
		response.FromError(w, err)
		return actor, nil, false
	}
	return actor, application, true
}
