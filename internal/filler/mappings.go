package filler

import (
	"context"
	"sort"

	apperrors "github.com/a3tai/mcp-pdf-form-filler/internal/errors"
	"github.com/a3tai/mcp-pdf-form-filler/internal/model"
	"github.com/apex/log"
)

// GetMapping returns the stored mapping of a form.
func (s *Service) GetMapping(ctx context.Context, formID uint) (*MappingResult, error) {
	if _, err := s.templates.GetTemplateByID(ctx, formID); err != nil {
		return nil, err
	}

	m, err := s.mappings.Load(ctx, formID)
	if err != nil {
		return nil, err
	}

	return &MappingResult{FormID: formID, Mappings: m}, nil
}

// SaveMapping replaces the whole mapping set of a form. Entries with an empty
// value are "do not fill" and are not stored; any other unrecognized value
// rejects the request and leaves the stored mapping unchanged.
func (s *Service) SaveMapping(ctx context.Context, req SaveMappingRequest) (*SaveMappingResult, error) {
	pdfFields := make([]string, 0, len(req.Mappings))
	for pdfField := range req.Mappings {
		pdfFields = append(pdfFields, pdfField)
	}
	sort.Strings(pdfFields)

	m := make(model.Mapping, len(req.Mappings))
	for _, pdfField := range pdfFields {
		value := req.Mappings[pdfField]
		if value == "" {
			continue
		}
		entityField, err := model.ParseEntityField(value)
		if err != nil {
			return nil, apperrors.Validation("PDF field %q: %v", pdfField, err)
		}
		m[pdfField] = entityField
	}

	if err := s.mappings.ReplaceAll(ctx, req.FormID, m); err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{"form_id": req.FormID, "count": len(m)}).Info("mappings saved")
	return &SaveMappingResult{FormID: req.FormID, Count: len(m)}, nil
}

// AutoMap proposes entries for the form's unmapped fields. Nothing is saved.
func (s *Service) AutoMap(ctx context.Context, formID uint) (*AutoMapResult, error) {
	fields, err := s.formFieldsByID(ctx, formID)
	if err != nil {
		return nil, err
	}

	existing, err := s.mappings.Load(ctx, formID)
	if err != nil {
		return nil, err
	}

	return s.autoMapResult(formID, fields, existing), nil
}

// AutoMapAndSave proposes entries like AutoMap and stores the extended
// mapping. The proposal is computed from the stored mapping inside the same
// locked update, so a concurrent SaveMapping is never overwritten.
func (s *Service) AutoMapAndSave(ctx context.Context, formID uint) (*AutoMapResult, error) {
	fields, err := s.formFieldsByID(ctx, formID)
	if err != nil {
		return nil, err
	}

	var result *AutoMapResult
	err = s.mappings.Update(ctx, formID, func(current model.Mapping) (model.Mapping, error) {
		result = s.autoMapResult(formID, fields, current)
		return result.Mapping, nil
	})
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{"form_id": formID, "count": len(result.Mapping)}).Info("auto-mapped mappings saved")
	return result, nil
}

func (s *Service) formFieldsByID(ctx context.Context, formID uint) ([]model.FieldDescriptor, error) {
	tmpl, err := s.templates.GetTemplateByID(ctx, formID)
	if err != nil {
		return nil, err
	}
	return s.extractFields(tmpl)
}

func (s *Service) autoMapResult(formID uint, fields []model.FieldDescriptor, existing model.Mapping) *AutoMapResult {
	proposal := s.autoMapper.Propose(existing, fields)

	var unmapped []string
	for _, f := range fields {
		if _, ok := proposal.Mapping[f.Name]; !ok {
			unmapped = append(unmapped, f.Name)
		}
	}

	log.WithFields(log.Fields{
		"form_id":  formID,
		"added":    proposal.Added,
		"unmapped": len(unmapped),
	}).Debug("auto-map proposal computed")

	return &AutoMapResult{
		FormID:   formID,
		Mapping:  proposal.Mapping,
		Added:    proposal.Added,
		Matches:  proposal.Matches,
		Unmapped: unmapped,
	}
}

// MappingStatus reports whether the form has any stored mapping. It is
// informational only and never blocks generation.
func (s *Service) MappingStatus(ctx context.Context, formID uint) (*MappingStatus, error) {
	if _, err := s.templates.GetTemplateByID(ctx, formID); err != nil {
		return nil, err
	}

	m, err := s.mappings.Load(ctx, formID)
	if err != nil {
		return nil, err
	}

	return &MappingStatus{
		FormID:      formID,
		HasMappings: len(m) > 0,
		Count:       len(m),
	}, nil
}
