package store

import (
	"context"
	"strings"

	apperrors "github.com/a3tai/mcp-pdf-form-filler/internal/errors"
	"github.com/a3tai/mcp-pdf-form-filler/internal/lock"
	"github.com/a3tai/mcp-pdf-form-filler/internal/model"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

type GormTemplateStore struct {
	db         *gorm.DB
	formLocker *lock.IDLocker
}

func NewGormTemplateStore(db *gorm.DB, formLocker *lock.IDLocker) *GormTemplateStore {
	return &GormTemplateStore{db: db, formLocker: formLocker}
}

func (s *GormTemplateStore) CreateTemplate(ctx context.Context, tmpl *model.FormTemplate) (*model.FormTemplate, error) {
	tmpl.FormName = strings.TrimSpace(tmpl.FormName)
	if tmpl.FormName == "" {
		return nil, apperrors.Validation("form name is required")
	}

	if len(tmpl.FileData) == 0 {
		return nil, apperrors.Validation("form %q has no PDF data", tmpl.FormName)
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&model.FormTemplate{}).Where("form_name = ?", tmpl.FormName).Count(&count).Error; err != nil {
			return errors.Wrap(err, "failed to check form name")
		}

		if count > 0 {
			return apperrors.Validation("a form named %q already exists", tmpl.FormName)
		}

		return tx.Create(tmpl).Error
	})

	if err != nil {
		if apperrors.IsValidation(err) {
			return nil, err
		}
		return nil, errors.Wrap(err, "failed to create form template")
	}

	return tmpl, nil
}

func (s *GormTemplateStore) GetTemplateByID(ctx context.Context, id uint) (*model.FormTemplate, error) {
	var tmpl model.FormTemplate
	err := s.db.WithContext(ctx).First(&tmpl, id).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, apperrors.NotFound("form", id)
	case err != nil:
		return nil, errors.Wrapf(err, "failed to get form %d", id)
	}

	return &tmpl, nil
}

func (s *GormTemplateStore) ListTemplates(ctx context.Context) ([]model.FormTemplate, error) {
	var templates []model.FormTemplate
	err := s.db.WithContext(ctx).Omit("file_data").Order("uploaded_at, id").Find(&templates).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to list forms")
	}
	return templates, nil
}

// DeleteTemplate removes the template and, in the same transaction, every
// mapping row that belongs to it.
func (s *GormTemplateStore) DeleteTemplate(ctx context.Context, id uint) error {
	return s.formLocker.WithLock(id, func() error {
		return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := deleteMappingRows(tx, id); err != nil {
				return err
			}

			result := tx.Delete(&model.FormTemplate{}, id)
			if result.Error != nil {
				return errors.Wrapf(result.Error, "failed to delete form %d", id)
			}

			if result.RowsAffected == 0 {
				return apperrors.NotFound("form", id)
			}

			return nil
		})
	})
}
