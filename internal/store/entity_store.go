package store

import (
	"context"
	"strings"

	apperrors "github.com/a3tai/mcp-pdf-form-filler/internal/errors"
	"github.com/a3tai/mcp-pdf-form-filler/internal/model"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

type GormEntityStore struct {
	db *gorm.DB
}

func NewGormEntityStore(db *gorm.DB) *GormEntityStore {
	return &GormEntityStore{db: db}
}

func (s *GormEntityStore) CreateEntity(ctx context.Context, entity *model.Entity) (*model.Entity, error) {
	entity.Name = strings.TrimSpace(entity.Name)
	if entity.Name == "" {
		return nil, apperrors.Validation("entity name is required")
	}

	if err := s.db.WithContext(ctx).Create(entity).Error; err != nil {
		return nil, errors.Wrap(err, "failed to create entity")
	}

	return entity, nil
}

func (s *GormEntityStore) GetEntityByID(ctx context.Context, id uint) (*model.Entity, error) {
	var entity model.Entity
	err := s.db.WithContext(ctx).First(&entity, id).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, apperrors.NotFound("entity", id)
	case err != nil:
		return nil, errors.Wrapf(err, "failed to get entity %d", id)
	}

	return &entity, nil
}

func (s *GormEntityStore) ListEntities(ctx context.Context) ([]model.Entity, error) {
	var entities []model.Entity
	if err := s.db.WithContext(ctx).Order("created_at, id").Find(&entities).Error; err != nil {
		return nil, errors.Wrap(err, "failed to list entities")
	}
	return entities, nil
}

func (s *GormEntityStore) FirstEntity(ctx context.Context) (*model.Entity, bool, error) {
	var entities []model.Entity
	err := s.db.WithContext(ctx).Order("created_at, id").Limit(1).Find(&entities).Error
	if err != nil {
		return nil, false, errors.Wrap(err, "failed to get first entity")
	}

	if len(entities) == 0 {
		return nil, false, nil
	}

	return &entities[0], true, nil
}

func (s *GormEntityStore) DeleteEntity(ctx context.Context, id uint) error {
	result := s.db.WithContext(ctx).Delete(&model.Entity{}, id)
	if result.Error != nil {
		return errors.Wrapf(result.Error, "failed to delete entity %d", id)
	}

	if result.RowsAffected == 0 {
		return apperrors.NotFound("entity", id)
	}

	return nil
}
