package pdf

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// FormWriter fills text fields of a template with pdfcpu.
type FormWriter struct{}

func NewFormWriter() *FormWriter {
	return &FormWriter{}
}

// formData mirrors the JSON layout pdfcpu's form import expects.
type formData struct {
	Forms []formValues `json:"forms"`
}

type formValues struct {
	TextFields []textFieldValue `json:"textfield"`
}

type textFieldValue struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Locked bool   `json:"locked"`
}

// Fill writes values into the template and returns the complete new document.
// Names absent from the template are ignored. The result is only returned
// when pdfcpu finished writing, never partially.
func (fw *FormWriter) Fill(template []byte, values map[string]string) ([]byte, error) {
	if len(template) == 0 {
		return nil, fmt.Errorf("template is empty")
	}

	if len(values) == 0 {
		return cloneBytes(template), nil
	}

	payload, err := json.Marshal(buildFormData(values))
	if err != nil {
		return nil, fmt.Errorf("failed to encode form data: %w", err)
	}

	var buf bytes.Buffer
	err = api.FillForm(bytes.NewReader(template), bytes.NewReader(payload), &buf, relaxedConfiguration())
	if errors.Is(err, api.ErrNoFormFieldsAffected) {
		// Every value was already in place or named no field of the template.
		return cloneBytes(template), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fill form: %w", err)
	}

	return buf.Bytes(), nil
}

func cloneBytes(b []byte) []byte {
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

func buildFormData(values map[string]string) formData {
	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)

	fields := make([]textFieldValue, 0, len(names))
	for _, name := range names {
		fields = append(fields, textFieldValue{Name: name, Value: values[name]})
	}

	return formData{Forms: []formValues{{TextFields: fields}}}
}
