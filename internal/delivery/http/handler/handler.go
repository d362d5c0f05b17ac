package handler

import (
	"encoding/json"
	"mime"
	"net/http"
	"strconv"

	"github.com/sameerjoshi/docsimus-physicians-sub001/internal/converter"
	"github.com/sameerjoshi/docsimus-physicians-sub001/internal/delivery/dto"
	"github.com/sameerjoshi/docsimus-physicians-sub001/internal/delivery/http/middleware"
	"github.com/sameerjoshi/docsimus-physicians-sub001/internal/domain/entity"
	"github.com/sameerjoshi/docsimus-physicians-sub001/internal/usecase"
	"github.com/sameerjoshi/docsimus-physicians-sub001/pkg/response"
	"github.com/sameerjoshi/docsimus-physicians-sub001/pkg/validator"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

const (
	defaultPage  = 1
	defaultLimit = 20
)

func actorFrom(w http.ResponseWriter, r *http.Request) (entity.Actor, bool) {
	actor, ok := middleware.GetActorFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Invalid token")
	}
	return actor, ok
}

// decodeBody reads a JSON request into req and validates it, answering the
// request itself when either step fails.
func decodeBody(w http.ResponseWriter, r *http.Request, v *validator.CustomValidator, req interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return false
	}
	if err := v.Validate(req); err != nil {
		response.ValidationError(w, v.FormatValidationErrors(err))
		return false
	}
	return true
}

func uuidVar(w http.ResponseWriter, r *http.Request, name, label string) (uuid.UUID, bool) {
	id, err := uuid.Parse(mux.Vars(r)[name])
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid "+label+" ID", nil)
		return uuid.Nil, false
	}
	return id, true
}

// pageQuery reads page and limit query parameters, falling back to the
// defaults for missing values. Range checks are left to the validator.
func pageQuery(r *http.Request) (int, int) {
	page, limit := defaultPage, defaultLimit
	if v := r.URL.Query().Get("page"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			page = n
		} else {
			page = 0
		}
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			limit = n
		} else {
			limit = 0
		}
	}
	return page, limit
}

func detailToResponse(detail *usecase.ApplicationDetail) *dto.ApplicationDetailResponse {
	history := []dto.AuditLogResponse{}
	if len(detail.History) > 0 {
		history = converter.AuditLogsToResponses(detail.History)
	}
	return &dto.ApplicationDetailResponse{
		Application: *converter.ApplicationToResponse(detail.Application),
		Readiness:   converter.ReadinessToResponse(detail.Readiness),
		Documents:   converter.SlotsToResponses(detail.Slots),
		Components:  converter.ComponentsToResponses(detail.Components, detail.Application.Cycle),
		Assignment:  converter.AssignmentToResponse(detail.Assignment),
		History:     history,
	}
}

// writeFile streams a stored document back with its recorded metadata.
func writeFile(w http.ResponseWriter, slot *entity.DocumentSlot, content []byte) {
	w.Header().Set("Content-Type", slot.ContentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(content)))
	if slot.OriginalName != "" {
		w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": slot.OriginalName}))
	}
	w.WriteHeader(http.StatusOK)
	w.Write(content)
}
