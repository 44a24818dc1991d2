package filler

import (
	"time"

	"github.com/a3tai/mcp-pdf-form-filler/internal/mapping"
	"github.com/a3tai/mcp-pdf-form-filler/internal/model"
)

// Request Types

// UploadFormRequest carries a new template and its display name
type UploadFormRequest struct {
	FormName string `json:"form_name"`
	Data     []byte `json:"-"`
}

// ImportFormRequest names a template file inside the data directory
type ImportFormRequest struct {
	FormName string `json:"form_name"`
	Path     string `json:"path"`
}

// SaveMappingRequest replaces the mapping of a form. An empty value means
// "do not fill" and is dropped before saving.
type SaveMappingRequest struct {
	FormID   uint              `json:"form_id"`
	Mappings map[string]string `json:"mappings"`
}

// GenerateRequest asks for a filled copy of a form for one entity
type GenerateRequest struct {
	FormID   uint   `json:"form_id"`
	EntityID uint   `json:"entity_id"`
	FileName string `json:"filename,omitempty"`
}

// Response Types

// FormSummary is a template without its payload
type FormSummary struct {
	ID         uint      `json:"id"`
	FormName   string    `json:"form_name"`
	FileSize   int64     `json:"file_size"`
	PageCount  int       `json:"page_count"`
	UploadedAt time.Time `json:"uploaded_at"`
}

// FormFieldsResult lists the fillable fields of a form
type FormFieldsResult struct {
	FormID   uint                    `json:"form_id"`
	FormName string                  `json:"form_name"`
	Fields   []model.FieldDescriptor `json:"fields"`
}

// MappingResult is the stored mapping of a form
type MappingResult struct {
	FormID   uint          `json:"form_id"`
	Mappings model.Mapping `json:"mappings"`
}

// SaveMappingResult reports what was persisted
type SaveMappingResult struct {
	FormID uint `json:"form_id"`
	Count  int  `json:"count"`
}

// AutoMapResult is an unsaved auto-map proposal for a form
type AutoMapResult struct {
	FormID  uint            `json:"form_id"`
	Mapping model.Mapping   `json:"mapping"`
	Added   int             `json:"added"`
	Matches []mapping.Match `json:"matches,omitempty"`
	// Unmapped lists fields that neither had an entry nor matched a rule.
	Unmapped []string `json:"unmapped,omitempty"`
}

// MappingStatus is the advisory check run before generation
type MappingStatus struct {
	FormID      uint `json:"form_id"`
	HasMappings bool `json:"has_mappings"`
	Count       int  `json:"count"`
}

// EntitySummary identifies an entity in diagnostic output
type EntitySummary struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

// TestMappingResult is the outcome of resolving a form's mapping against a sample entity
type TestMappingResult struct {
	FormID             uint              `json:"form_id"`
	EntityUsed         EntitySummary     `json:"entity_used"`
	ResolvedFieldCount int               `json:"resolved_field_count"`
	NonEmptyCount      int               `json:"non_empty_count"`
	Values             map[string]string `json:"values"`
}

// GenerateResult holds a complete filled PDF
type GenerateResult struct {
	FormID       uint   `json:"form_id"`
	EntityID     uint   `json:"entity_id"`
	FileName     string `json:"filename"`
	FilledFields int    `json:"filled_fields"`
	Data         []byte `json:"-"`
}
