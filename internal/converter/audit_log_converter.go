package converter

import (
	"github.com/sameerjoshi/docsimus-physicians-sub001/internal/delivery/dto"
	"github.com/sameerjoshi/docsimus-physicians-sub001/internal/domain/entity"
)

// AuditLogToResponse converts a AuditLog entity to AuditLogResponse DTO
func AuditLogToResponse(log *entity.AuditLog) *dto.AuditLogResponse {
	if log == nil {
		return nil
	}

	return &dto.AuditLogResponse{
		ID:            log.ID,
		User:          optionalUser(log.User),
		ApplicationID: log.ApplicationID,
		Action:        log.Action,
		Metadata:      log.Metadata,
		CreatedAt:     log.CreatedAt,
	}
}

// AuditLogsToResponses converts a slice of AuditLog entities to slice of AuditLogResponse DTOs
func AuditLogsToResponses(logs []entity.AuditLog) []dto.AuditLogResponse {
	responses := make([]dto.AuditLogResponse, len(logs))
	for i := range logs {
		responses[i] = *AuditLogToResponse(&logs[i])
	}
	return responses
}
