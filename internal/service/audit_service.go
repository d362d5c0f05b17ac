package service

import (
	"context"

	"github.com/sameerjoshi/docsimus-physicians-sub001/internal/domain/entity"
	"github.com/sameerjoshi/docsimus-physicians-sub001/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type AuditService interface {
	// Log writes a free-form entry inside tx.
	Log(ctx context.Context, tx *gorm.DB, userID *uuid.UUID, applicationID *uuid.UUID, action string, metadata datatypes.JSONMap) error
	// LogTransition records an application status change inside tx.
	LogTransition(ctx context.Context, tx *gorm.DB, userID uuid.UUID, application *entity.Application, action string, from entity.ApplicationStatus, extra datatypes.JSONMap) error
}

type auditService struct {
	log       *logrus.Logger
	auditRepo repository.AuditLogRepository
}

func NewAuditService(log *logrus.Logger, auditRepo repository.AuditLogRepository) AuditService {
	return &auditService{
		log:       log,
		auditRepo: auditRepo,
	}
}

func (s *auditService) Log(ctx context.Context, tx *gorm.DB, userID *uuid.UUID, applicationID *uuid.UUID, action string, metadata datatypes.JSONMap) error {
	auditLog := &entity.AuditLog{
		UserID:        userID,
		ApplicationID: applicationID,
		Action:        action,
		Metadata:      metadata,
	}

	if err := s.auditRepo.Create(ctx, tx, auditLog); err != nil {
		s.log.Warnf("Failed to create audit log: %+v", err)
		return err
	}

	return nil
}

func (s *auditService) LogTransition(ctx context.Context, tx *gorm.DB, userID uuid.UUID, application *entity.Application, action string, from entity.ApplicationStatus, extra datatypes.JSONMap) error {
	metadata := datatypes.JSONMap{
		"from":  string(from),
		"to":    string(application.Status),
		"cycle": application.Cycle,
	}
	for k, v := range extra {
		metadata[k] = v
	}

	applicationID := application.ID
	return s.Log(ctx, tx, &userID, &applicationID, action, metadata)
}
