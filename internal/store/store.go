package store

import (
	"context"

	"github.com/a3tai/mcp-pdf-form-filler/internal/lock"
	"github.com/a3tai/mcp-pdf-form-filler/internal/model"
	"gorm.io/gorm"
)

// EntityStore persists the entities forms are filled for.
type EntityStore interface {
	CreateEntity(ctx context.Context, entity *model.Entity) (*model.Entity, error)
	GetEntityByID(ctx context.Context, id uint) (*model.Entity, error)
	ListEntities(ctx context.Context) ([]model.Entity, error)
	// FirstEntity returns the oldest entity; found is false when there are none.
	FirstEntity(ctx context.Context) (entity *model.Entity, found bool, err error)
	DeleteEntity(ctx context.Context, id uint) error
}

// TemplateStore persists uploaded form templates.
type TemplateStore interface {
	CreateTemplate(ctx context.Context, tmpl *model.FormTemplate) (*model.FormTemplate, error)
	// GetTemplateByID returns the template including its PDF payload.
	GetTemplateByID(ctx context.Context, id uint) (*model.FormTemplate, error)
	// ListTemplates returns all templates in upload order without payloads.
	ListTemplates(ctx context.Context) ([]model.FormTemplate, error)
	// DeleteTemplate removes the template and its field mappings.
	DeleteTemplate(ctx context.Context, id uint) error
}

// MappingStore owns the per-form field mappings.
type MappingStore interface {
	// Load returns the stored mapping for formID, empty when none exists.
	Load(ctx context.Context, formID uint) (model.Mapping, error)
	// ReplaceAll atomically swaps the full mapping set of formID for mapping.
	ReplaceAll(ctx context.Context, formID uint, mapping model.Mapping) error
	// Update replaces the mapping of formID with fn applied to the stored one,
	// without letting another write to the form in between.
	Update(ctx context.Context, formID uint, fn func(current model.Mapping) (model.Mapping, error)) error
	DeleteForForm(ctx context.Context, formID uint) error
}

// Stores bundles the GORM backed stores sharing one database and one
// per-form locker.
type Stores struct {
	Entities  *GormEntityStore
	Templates *GormTemplateStore
	Mappings  *GormMappingStore
}

func New(db *gorm.DB) *Stores {
	formLocker := lock.NewIDLocker()
	return &Stores{
		Entities:  NewGormEntityStore(db),
		Templates: NewGormTemplateStore(db, formLocker),
		Mappings:  NewGormMappingStore(db, formLocker),
	}
}
