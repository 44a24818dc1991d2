package pdf

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	apperrors "github.com/a3tai/mcp-pdf-form-filler/internal/errors"
	"github.com/ledongthuc/pdf"
)

// TemplateInfo describes an accepted template upload.
type TemplateInfo struct {
	Size      int64 `json:"size"`
	PageCount int   `json:"page_count"`
}

// Validator handles template upload validation
type Validator struct {
	maxFileSize int64
}

// NewValidator creates a new PDF validator with the specified constraints
func NewValidator(maxFileSize int64) *Validator {
	return &Validator{
		maxFileSize: maxFileSize,
	}
}

// ValidateTemplate checks that data is a readable PDF within the size limit.
// Failures are validation errors.
func (v *Validator) ValidateTemplate(data []byte) (*TemplateInfo, error) {
	size := int64(len(data))
	if size == 0 {
		return nil, apperrors.Validation("file is empty")
	}

	if size > v.maxFileSize {
		return nil, apperrors.Validation("file too large: %d bytes (max: %d bytes)", size, v.maxFileSize)
	}

	if !bytes.HasPrefix(data, []byte("%PDF-")) {
		return nil, apperrors.Validation("file is not a PDF")
	}

	pages, err := countPages(data)
	if err != nil {
		return nil, apperrors.Validation("invalid PDF file: %v", err)
	}

	return &TemplateInfo{Size: size, PageCount: pages}, nil
}

// ReadTemplateFile reads and validates a template from disk.
func (v *Validator) ReadTemplateFile(filePath string) ([]byte, *TemplateInfo, error) {
	if filePath == "" {
		return nil, nil, apperrors.Validation("path cannot be empty")
	}

	fileInfo, err := os.Stat(filePath)
	if os.IsNotExist(err) {
		return nil, nil, apperrors.Validation("file does not exist: %s", filePath)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("cannot access file: %w", err)
	}

	if fileInfo.IsDir() {
		return nil, nil, apperrors.Validation("path is a directory, not a file: %s", filePath)
	}

	if !strings.HasSuffix(strings.ToLower(filePath), ".pdf") {
		return nil, nil, apperrors.Validation("file is not a PDF: %s", filePath)
	}

	if fileInfo.Size() > v.maxFileSize {
		return nil, nil, apperrors.Validation("file too large: %d bytes (max: %d bytes)",
			fileInfo.Size(), v.maxFileSize)
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read %s: %w", filePath, err)
	}

	info, err := v.ValidateTemplate(data)
	if err != nil {
		return nil, nil, err
	}

	return data, info, nil
}

// MaxFileSize returns the configured upload limit in bytes
func (v *Validator) MaxFileSize() int64 {
	return v.maxFileSize
}

// countPages opens data with the ledongthuc reader, which panics on some
// malformed inputs; those are reported as errors.
func countPages(data []byte) (pages int, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("malformed PDF: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return 0, err
	}

	return reader.NumPage(), nil
}
