package model

import "time"

// FormTemplate is an uploaded fillable PDF.
type FormTemplate struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	FormName   string    `gorm:"size:255;not null;uniqueIndex" json:"form_name"`
	FileData   []byte    `gorm:"not null" json:"-"`
	FileSize   int64     `json:"file_size"`
	PageCount  int       `json:"page_count"`
	UploadedAt time.Time `gorm:"autoCreateTime" json:"uploaded_at"`
}

func (FormTemplate) TableName() string {
	return "pdf_forms"
}

// FieldDescriptor identifies one fillable widget of a template as reported by extraction.
type FieldDescriptor struct {
	Name          string `json:"name"`
	AlternateName string `json:"alternate_name,omitempty"`
	Type          string `json:"type,omitempty"`
}
