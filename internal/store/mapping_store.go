package store

import (
	"context"

	apperrors "github.com/a3tai/mcp-pdf-form-filler/internal/errors"
	"github.com/a3tai/mcp-pdf-form-filler/internal/lock"
	"github.com/a3tai/mcp-pdf-form-filler/internal/model"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// GormMappingStore keeps field mappings in the field_mappings table. Writes
// for one form are serialized by formLocker and applied in a single
// transaction, so readers only ever see a complete mapping set.
type GormMappingStore struct {
	db         *gorm.DB
	formLocker *lock.IDLocker
}

func NewGormMappingStore(db *gorm.DB, formLocker *lock.IDLocker) *GormMappingStore {
	return &GormMappingStore{db: db, formLocker: formLocker}
}

func (s *GormMappingStore) Load(ctx context.Context, formID uint) (model.Mapping, error) {
	return loadMapping(s.db.WithContext(ctx), formID)
}

func (s *GormMappingStore) ReplaceAll(ctx context.Context, formID uint, mapping model.Mapping) error {
	if err := ValidateMapping(mapping); err != nil {
		return err
	}

	return s.formLocker.WithLock(formID, func() error {
		return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := ensureForm(tx, formID); err != nil {
				return err
			}
			return replaceMappingRows(tx, formID, mapping)
		})
	})
}

// Update passes the stored mapping of formID to fn and replaces it with the
// result. The read and the write happen under the form lock in one
// transaction; an error from fn leaves the stored mapping unchanged.
func (s *GormMappingStore) Update(ctx context.Context, formID uint, fn func(current model.Mapping) (model.Mapping, error)) error {
	return s.formLocker.WithLock(formID, func() error {
		return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := ensureForm(tx, formID); err != nil {
				return err
			}

			current, err := loadMapping(tx, formID)
			if err != nil {
				return err
			}

			next, err := fn(current)
			if err != nil {
				return err
			}

			if err := ValidateMapping(next); err != nil {
				return err
			}
			return replaceMappingRows(tx, formID, next)
		})
	})
}

func (s *GormMappingStore) DeleteForForm(ctx context.Context, formID uint) error {
	return s.formLocker.WithLock(formID, func() error {
		return deleteMappingRows(s.db.WithContext(ctx), formID)
	})
}

// ValidateMapping rejects mappings that reference an unrecognized entity attribute.
func ValidateMapping(mapping model.Mapping) error {
	for _, pdfField := range mapping.FieldNames() {
		if pdfField == "" {
			return apperrors.Validation("mapping contains an empty PDF field name")
		}

		if _, err := model.ParseEntityField(string(mapping[pdfField])); err != nil {
			return apperrors.Validation("PDF field %q: %v", pdfField, err)
		}
	}
	return nil
}

func loadMapping(db *gorm.DB, formID uint) (model.Mapping, error) {
	var rows []model.FieldMapping
	if err := db.Where("form_id = ?", formID).Find(&rows).Error; err != nil {
		return nil, errors.Wrapf(err, "failed to load mappings for form %d", formID)
	}
	return model.MappingFromRows(rows), nil
}

func ensureForm(tx *gorm.DB, formID uint) error {
	var count int64
	if err := tx.Model(&model.FormTemplate{}).Where("id = ?", formID).Count(&count).Error; err != nil {
		return errors.Wrapf(err, "failed to check form %d", formID)
	}
	if count == 0 {
		return apperrors.NotFound("form", formID)
	}
	return nil
}

func replaceMappingRows(tx *gorm.DB, formID uint, mapping model.Mapping) error {
	if err := deleteMappingRows(tx, formID); err != nil {
		return err
	}

	rows := mapping.Rows(formID)
	if len(rows) == 0 {
		return nil
	}

	if err := tx.Create(&rows).Error; err != nil {
		return errors.Wrapf(err, "failed to store mappings for form %d", formID)
	}
	return nil
}

func deleteMappingRows(tx *gorm.DB, formID uint) error {
	if err := tx.Where("form_id = ?", formID).Delete(&model.FieldMapping{}).Error; err != nil {
		return errors.Wrapf(err, "failed to delete mappings for form %d", formID)
	}
	return nil
}
