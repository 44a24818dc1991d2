package mapping

import (
	apperrors "github.com/a3tai/mcp-pdf-form-filler/internal/errors"
	"github.com/a3tai/mcp-pdf-form-filler/internal/model"
)

// Resolve computes the values to write into the PDF for entity. Every mapped
// field gets an entry; blank attributes resolve to "" so the writer clears the
// widget. Unmapped fields are left out and keep their template default.
func Resolve(mapping model.Mapping, entity *model.Entity) (map[string]string, error) {
	if entity == nil {
		return nil, apperrors.InternalInconsistency("cannot resolve mapping without an entity")
	}

	values := make(map[string]string, len(mapping))
	for pdfField, entityField := range mapping {
		value, ok := entity.Attribute(entityField)
		if !ok {
			return nil, apperrors.InternalInconsistency("PDF field %q is mapped to unrecognized entity field %q",
				pdfField, entityField)
		}
		values[pdfField] = value
	}

	return values, nil
}
