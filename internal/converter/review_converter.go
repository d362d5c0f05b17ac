package converter

import (
	"github.com/sameerjoshi/docsimus-physicians-sub001/internal/delivery/dto"
	"github.com/sameerjoshi/docsimus-physicians-sub001/internal/domain/entity"
)

// ComponentToResponse marks components of earlier cycles as archived
func ComponentToResponse(component *entity.Component, currentCycle int) dto.ComponentResponse {
	return dto.ComponentResponse{
		ID:        component.ID,
		Kind:      string(component.Kind),
		Cycle:     component.Cycle,
		Status:    string(component.Status),
		Checklist: component.Kind.Checklist(),
		Archived:  component.Cycle < currentCycle,
		DecidedBy: component.DecidedBy,
		DecidedAt: component.DecidedAt,
	}
}

func ComponentsToResponses(components []entity.Component, currentCycle int) []dto.ComponentResponse {
	responses := make([]dto.ComponentResponse, len(components))
	for i := range components {
		responses[i] = ComponentToResponse(&components[i], currentCycle)
	}
	return responses
}

func CommentsToResponses(comments []entity.ComponentComment) []dto.CommentResponse {
	responses := make([]dto.CommentResponse, len(comments))
	for i, comment := range comments {
		responses[i] = dto.CommentResponse{
			ID:        comment.ID,
			Author:    optionalUser(comment.Author),
			AuthorID:  comment.AuthorID,
			Decision:  comment.Decision,
			Body:      comment.Body,
			CreatedAt: comment.CreatedAt,
		}
	}
	return responses
}

func AssignmentToResponse(assignment *entity.Assignment) *dto.AssignmentResponse {
	if assignment == nil {
		return nil
	}

	return &dto.AssignmentResponse{
		ID:            assignment.ID,
		ApplicationID: assignment.ApplicationID,
		Cycle:         assignment.Cycle,
		Reviewer:      optionalUser(assignment.Reviewer),
		ReviewerID:    assignment.ReviewerID,
		AssignedBy:    assignment.AssignedBy,
		AssignedAt:    assignment.AssignedAt,
	}
}
