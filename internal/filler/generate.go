package filler

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	apperrors "github.com/a3tai/mcp-pdf-form-filler/internal/errors"
	"github.com/a3tai/mcp-pdf-form-filler/internal/mapping"
	"github.com/apex/log"
	"github.com/gosimple/slug"
)

const outputFilePerm = 0o640

// Generate fills the form for the entity. A form without mappings is not an
// error; the template comes back unfilled and MappingStatus tells callers so.
func (s *Service) Generate(ctx context.Context, req GenerateRequest) (*GenerateResult, error) {
	tmpl, err := s.templates.GetTemplateByID(ctx, req.FormID)
	if err != nil {
		return nil, err
	}

	entity, err := s.entities.GetEntityByID(ctx, req.EntityID)
	if err != nil {
		return nil, err
	}

	m, err := s.mappings.Load(ctx, req.FormID)
	if err != nil {
		return nil, err
	}

	logger := log.WithFields(log.Fields{"form_id": req.FormID, "entity_id": req.EntityID})
	if len(m) == 0 {
		logger.Warn("generating form without mappings")
	}

	values, err := mapping.Resolve(m, entity)
	if err != nil {
		return nil, err
	}

	data, err := s.writer.Fill(tmpl.FileData, values)
	if err != nil {
		logger.WithError(err).Error("form generation failed")
		return nil, apperrors.Generation(err, "failed to generate form %d for entity %d", req.FormID, req.EntityID)
	}

	fileName := req.FileName
	if fileName == "" {
		fileName = SuggestedFileName(entity.Name)
	}

	logger.WithFields(log.Fields{"fields": len(values), "bytes": len(data)}).Info("form generated")

	return &GenerateResult{
		FormID:       req.FormID,
		EntityID:     req.EntityID,
		FileName:     fileName,
		FilledFields: len(values),
		Data:         data,
	}, nil
}

// SuggestedFileName is the download name used when the caller supplies none.
func SuggestedFileName(entityName string) string {
	return fmt.Sprintf("%s_form.pdf", entityName)
}

// WriteGenerated saves a generated PDF into the data directory under a
// filesystem-safe version of its file name and returns the path written.
func (s *Service) WriteGenerated(result *GenerateResult) (string, error) {
	base := slug.Make(trimPDFExt(result.FileName))
	if base == "" {
		base = fmt.Sprintf("form-%d-entity-%d", result.FormID, result.EntityID)
	}

	path, err := s.pathValidator.Resolve(base + ".pdf")
	if err != nil {
		return "", fmt.Errorf("security validation failed: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	if err := os.WriteFile(path, result.Data, outputFilePerm); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}

	log.WithFields(log.Fields{"path": path, "bytes": len(result.Data)}).Info("generated form written")
	return path, nil
}

// TestMapping resolves the form's mapping against the oldest entity without
// producing a PDF.
func (s *Service) TestMapping(ctx context.Context, formID uint) (*TestMappingResult, error) {
	if _, err := s.templates.GetTemplateByID(ctx, formID); err != nil {
		return nil, err
	}

	m, err := s.mappings.Load(ctx, formID)
	if err != nil {
		return nil, err
	}

	entity, found, err := s.entities.FirstEntity(ctx)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, apperrors.NoEntitiesAvailable()
	}

	values, err := mapping.Resolve(m, entity)
	if err != nil {
		return nil, err
	}

	nonEmpty := 0
	for _, v := range values {
		if v != "" {
			nonEmpty++
		}
	}

	return &TestMappingResult{
		FormID:             formID,
		EntityUsed:         EntitySummary{ID: entity.ID, Name: entity.Name},
		ResolvedFieldCount: len(values),
		NonEmptyCount:      nonEmpty,
		Values:             values,
	}, nil
}

func trimPDFExt(name string) string {
	ext := filepath.Ext(name)
	if ext == ".pdf" || ext == ".PDF" {
		return name[:len(name)-len(ext)]
	}
	return name
}
