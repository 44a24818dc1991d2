package filler

import (
	"context"
	"fmt"

	apperrors "github.com/a3tai/mcp-pdf-form-filler/internal/errors"
	"github.com/a3tai/mcp-pdf-form-filler/internal/mapping"
	"github.com/a3tai/mcp-pdf-form-filler/internal/model"
	"github.com/a3tai/mcp-pdf-form-filler/internal/pdf"
	"github.com/a3tai/mcp-pdf-form-filler/internal/pdf/security"
	"github.com/a3tai/mcp-pdf-form-filler/internal/store"
	"github.com/apex/log"
)

// FieldExtractor returns the fillable field descriptors of a template.
type FieldExtractor interface {
	ExtractFields(data []byte) ([]model.FieldDescriptor, error)
}

// FormWriter fills a template with field values and returns the new document.
type FormWriter interface {
	Fill(template []byte, values map[string]string) ([]byte, error)
}

// Options wires the collaborators of a Service.
type Options struct {
	Entities      store.EntityStore
	Templates     store.TemplateStore
	Mappings      store.MappingStore
	Extractor     FieldExtractor
	Writer        FormWriter
	MaxFileSize   int64
	DataDirectory string
}

// Service fronts every form-filling operation the transports expose
type Service struct {
	entities      store.EntityStore
	templates     store.TemplateStore
	mappings      store.MappingStore
	extractor     FieldExtractor
	writer        FormWriter
	validator     *pdf.Validator
	autoMapper    *mapping.AutoMapper
	pathValidator *security.PathValidator
}

// NewService creates a new Service with all components
func NewService(opts Options) (*Service, error) {
	if opts.Entities == nil || opts.Templates == nil || opts.Mappings == nil {
		return nil, fmt.Errorf("entity, template and mapping stores are required")
	}
	if opts.Extractor == nil || opts.Writer == nil {
		return nil, fmt.Errorf("field extractor and form writer are required")
	}
	if opts.MaxFileSize <= 0 {
		return nil, fmt.Errorf("maximum file size must be positive")
	}

	pathValidator, err := security.NewPathValidator(opts.DataDirectory)
	if err != nil {
		return nil, fmt.Errorf("failed to create path validator: %w", err)
	}

	return &Service{
		entities:      opts.Entities,
		templates:     opts.Templates,
		mappings:      opts.Mappings,
		extractor:     opts.Extractor,
		writer:        opts.Writer,
		validator:     pdf.NewValidator(opts.MaxFileSize),
		autoMapper:    mapping.NewAutoMapper(),
		pathValidator: pathValidator,
	}, nil
}

// DataDirectory returns the directory imports are read from and output is written to
func (s *Service) DataDirectory() string {
	return s.pathValidator.DataDirectory()
}

// MaxFileSize returns the largest template upload accepted, in bytes
func (s *Service) MaxFileSize() int64 {
	return s.validator.MaxFileSize()
}

// Entities

func (s *Service) CreateEntity(ctx context.Context, entity *model.Entity) (*model.Entity, error) {
	created, err := s.entities.CreateEntity(ctx, entity)
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{"entity_id": created.ID, "name": created.Name}).Info("entity created")
	return created, nil
}

func (s *Service) GetEntity(ctx context.Context, id uint) (*model.Entity, error) {
	return s.entities.GetEntityByID(ctx, id)
}

func (s *Service) ListEntities(ctx context.Context) ([]model.Entity, error) {
	return s.entities.ListEntities(ctx)
}

func (s *Service) DeleteEntity(ctx context.Context, id uint) error {
	if err := s.entities.DeleteEntity(ctx, id); err != nil {
		return err
	}

	log.WithField("entity_id", id).Info("entity deleted")
	return nil
}

// Forms

func (s *Service) ListForms(ctx context.Context) ([]FormSummary, error) {
	templates, err := s.templates.ListTemplates(ctx)
	if err != nil {
		return nil, err
	}

	forms := make([]FormSummary, 0, len(templates))
	for _, t := range templates {
		forms = append(forms, summarize(&t))
	}
	return forms, nil
}

// UploadForm validates and stores a new template. The PDF must be readable
// by the field extractor; a template without fields is accepted with a warning.
func (s *Service) UploadForm(ctx context.Context, req UploadFormRequest) (*FormSummary, error) {
	info, err := s.validator.ValidateTemplate(req.Data)
	if err != nil {
		return nil, err
	}

	fields, err := s.extractor.ExtractFields(req.Data)
	if err != nil {
		return nil, apperrors.Validation("cannot read form fields: %v", err)
	}

	tmpl, err := s.templates.CreateTemplate(ctx, &model.FormTemplate{
		FormName:  req.FormName,
		FileData:  req.Data,
		FileSize:  info.Size,
		PageCount: info.PageCount,
	})
	if err != nil {
		return nil, err
	}

	logger := log.WithFields(log.Fields{
		"form_id":   tmpl.ID,
		"form_name": tmpl.FormName,
		"fields":    len(fields),
		"pages":     info.PageCount,
	})
	if len(fields) == 0 {
		logger.Warn("form uploaded without fillable fields")
	} else {
		logger.Info("form uploaded")
	}

	summary := summarize(tmpl)
	return &summary, nil
}

// ImportForm uploads a template read from a file inside the data directory.
func (s *Service) ImportForm(ctx context.Context, req ImportFormRequest) (*FormSummary, error) {
	path, err := s.pathValidator.Resolve(req.Path)
	if err != nil {
		return nil, apperrors.Validation("security validation failed: %v", err)
	}

	data, _, err := s.validator.ReadTemplateFile(path)
	if err != nil {
		return nil, err
	}

	return s.UploadForm(ctx, UploadFormRequest{FormName: req.FormName, Data: data})
}

// DeleteForm removes a template together with its mapping.
func (s *Service) DeleteForm(ctx context.Context, formID uint) error {
	if err := s.templates.DeleteTemplate(ctx, formID); err != nil {
		return err
	}

	log.WithField("form_id", formID).Info("form deleted")
	return nil
}

// GetFormFields extracts the field descriptors of a stored template.
func (s *Service) GetFormFields(ctx context.Context, formID uint) (*FormFieldsResult, error) {
	tmpl, err := s.templates.GetTemplateByID(ctx, formID)
	if err != nil {
		return nil, err
	}

	fields, err := s.extractFields(tmpl)
	if err != nil {
		return nil, err
	}

	return &FormFieldsResult{
		FormID:   tmpl.ID,
		FormName: tmpl.FormName,
		Fields:   fields,
	}, nil
}

func (s *Service) extractFields(tmpl *model.FormTemplate) ([]model.FieldDescriptor, error) {
	fields, err := s.extractor.ExtractFields(tmpl.FileData)
	if err != nil {
		return nil, fmt.Errorf("failed to extract fields from form %d: %w", tmpl.ID, err)
	}

	log.WithFields(log.Fields{"form_id": tmpl.ID, "fields": len(fields)}).Debug("fields extracted")
	return fields, nil
}

func summarize(t *model.FormTemplate) FormSummary {
	return FormSummary{
		ID:         t.ID,
		FormName:   t.FormName,
		FileSize:   t.FileSize,
		PageCount:  t.PageCount,
		UploadedAt: t.UploadedAt,
	}
}
