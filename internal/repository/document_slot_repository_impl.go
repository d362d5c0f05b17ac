package repository

import (
	"context"
	"errors"
	"sort"

	"github.com/sameerjoshi/docsimus-physicians-sub001/internal/domain/entity"
	domainRepo "github.com/sameerjoshi/docsimus-physicians-sub001/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type documentSlotRepository struct{}

func NewDocumentSlotRepository() domainRepo.DocumentSlotRepository {
	return &documentSlotRepository{}
}

func (r *documentSlotRepository) CreateBatch(ctx context.Context, db *gorm.DB, slots []entity.DocumentSlot) error {
	if len(slots) == 0 {
		return nil
	}
	return db.WithContext(ctx).Create(&slots).Error
}

func (r *documentSlotRepository) FindByApplicationID(ctx context.Context, db *gorm.DB, applicationID uuid.UUID) ([]entity.DocumentSlot, error) {
	var slots []entity.DocumentSlot
	err := db.WithContext(ctx).Where("application_id = ?", applicationID).Find(&slots).Error
	if err != nil {
		return nil, err
	}
	sortSlots(slots)
	return slots, nil
}

func (r *documentSlotRepository) FindByApplicationAndKind(ctx context.Context, db *gorm.DB, applicationID uuid.UUID, kind entity.DocumentKind) (*entity.DocumentSlot, error) {
	var slot entity.DocumentSlot
	err := db.WithContext(ctx).
		Where("application_id = ? AND kind = ?", applicationID, kind).
		First(&slot).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &slot, nil
}

func (r *documentSlotRepository) Update(ctx context.Context, db *gorm.DB, slot *entity.DocumentSlot) error {
	return db.WithContext(ctx).Save(slot).Error
}

func (r *documentSlotRepository) CountUploaded(ctx context.Context, db *gorm.DB, applicationID uuid.UUID) (int64, error) {
	var count int64
	err := db.WithContext(ctx).Model(&entity.DocumentSlot{}).
		Where("application_id = ? AND status = ?", applicationID, entity.DocumentStatusUploaded).
		Count(&count).Error
	return count, err
}

// sortSlots orders slots the way DocumentKinds lists them.
func sortSlots(slots []entity.DocumentSlot) {
	rank := make(map[entity.DocumentKind]int, len(entity.DocumentKinds))
	for i, kind := range entity.DocumentKinds {
		rank[kind] = i
	}
	sort.SliceStable(slots, func(i, j int) bool {
		return rank[slots[i].Kind] < rank[slots[j].Kind]
	})
}
