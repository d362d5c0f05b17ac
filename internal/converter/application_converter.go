package converter

import (
	"encoding/json"

	"github.com/sameerjoshi/docsimus-physicians-sub001/internal/delivery/dto"
	"github.com/sameerjoshi/docsimus-physicians-sub001/internal/domain/entity"
	"github.com/sameerjoshi/docsimus-physicians-sub001/internal/domain/workflow"
)

// ApplicationToResponse converts an Application entity to ApplicationResponse DTO
func ApplicationToResponse(application *entity.Application) *dto.ApplicationResponse {
	if application == nil {
		return nil
	}

	return &dto.ApplicationResponse{
		ID:              application.ID,
		PhysicianID:     application.PhysicianID,
		Physician:       optionalUser(&application.Physician),
		Status:          string(application.Status),
		Cycle:           application.Cycle,
		Draft:           application.DraftData(),
		SubmittedAt:     application.SubmittedAt,
		VerifiedAt:      application.VerifiedAt,
		RejectedAt:      application.RejectedAt,
		RejectionReason: application.RejectionReason,
		CreatedAt:       application.CreatedAt,
		UpdatedAt:       application.UpdatedAt,
	}
}

func ApplicationsToResponses(applications []entity.Application) []dto.ApplicationResponse {
	responses := make([]dto.ApplicationResponse, len(applications))
	for i := range applications {
		responses[i] = *ApplicationToResponse(&applications[i])
	}
	return responses
}

// ReadinessToResponse lists incomplete sections in form order
func ReadinessToResponse(r workflow.Readiness) dto.ReadinessResponse {
	sections := make(map[string]bool, len(r.Sections))
	for section, complete := range r.Sections {
		sections[string(section)] = complete
	}
	incomplete := []string{}
	for _, section := range r.Incomplete() {
		incomplete = append(incomplete, string(section))
	}

	return dto.ReadinessResponse{
		Sections:   sections,
		Incomplete: incomplete,
		Ready:      r.Ready,
	}
}

// SlotsToResponses hides storage references from clients
func SlotsToResponses(slots []entity.DocumentSlot) []dto.DocumentSlotResponse {
	responses := make([]dto.DocumentSlotResponse, len(slots))
	for i, slot := range slots {
		responses[i] = dto.DocumentSlotResponse{
			Kind:         string(slot.Kind),
			Status:       string(slot.Status),
			OriginalName: slot.OriginalName,
			ContentType:  slot.ContentType,
			SizeBytes:    slot.SizeBytes,
			UploadedAt:   slot.UploadedAt,
		}
	}
	return responses
}

// SectionToDraft decodes the JSON body of one section into an otherwise
// empty draft. Section names double as the draft's JSON keys.
func SectionToDraft(section entity.Section, body json.RawMessage) (entity.ApplicationDraft, error) {
	var draft entity.ApplicationDraft
	wrapped, err := json.Marshal(map[string]json.RawMessage{string(section): body})
	if err != nil {
		return draft, err
	}
	err = json.Unmarshal(wrapped, &draft)
	return draft, err
}
