package model

import "sort"

// Mapping associates PDF field names with the entity attribute used to fill them.
// A field without an entry is not filled.
type Mapping map[string]EntityField

// Clone returns an independent copy of m. A nil mapping clones to an empty one.
func (m Mapping) Clone() Mapping {
	out := make(Mapping, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// FieldNames returns the mapped PDF field names in sorted order.
func (m Mapping) FieldNames() []string {
	names := make([]string, 0, len(m))
	for k := range m {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// FieldMapping is one persisted (form, pdf field) -> entity attribute row.
type FieldMapping struct {
	ID              uint        `gorm:"primaryKey" json:"id"`
	FormID          uint        `gorm:"not null;uniqueIndex:idx_form_pdf_field" json:"form_id"`
	PdfFieldName    string      `gorm:"size:255;not null;uniqueIndex:idx_form_pdf_field" json:"pdf_field_name"`
	EntityFieldName EntityField `gorm:"size:100;not null" json:"entity_field_name"`
}

func (FieldMapping) TableName() string {
	return "field_mappings"
}

// MappingFromRows folds persisted rows into a Mapping.
func MappingFromRows(rows []FieldMapping) Mapping {
	m := make(Mapping, len(rows))
	for _, row := range rows {
		m[row.PdfFieldName] = row.EntityFieldName
	}
	return m
}

// Rows expands m into rows for formID, ordered by PDF field name.
func (m Mapping) Rows(formID uint) []FieldMapping {
	rows := make([]FieldMapping, 0, len(m))
	for _, name := range m.FieldNames() {
		rows = append(rows, FieldMapping{
			FormID:          formID,
			PdfFieldName:    name,
			EntityFieldName: m[name],
		})
	}
	return rows
}
