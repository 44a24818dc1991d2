package mapping

import (
	"testing"

	apperrors "github.com/a3tai/mcp-pdf-form-filler/internal/errors"
	"github.com/a3tai/mcp-pdf-form-filler/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve(t *testing.T) {
	entity := &model.Entity{
		Name:          "Acme Corp",
		StreetAddress: "1 Main St",
		City:          "",
		State:         "IL",
		ZipCode:       "62701",
	}

	tests := []struct {
		name    string
		mapping model.Mapping
		want    map[string]string
	}{
		{
			name:    "blank attribute becomes empty string",
			mapping: model.Mapping{"f1": model.FieldCity},
			want:    map[string]string{"f1": ""},
		},
		{
			name: "every attribute",
			mapping: model.Mapping{
				"n": model.FieldName, "a": model.FieldStreetAddress, "c": model.FieldCity,
				"s": model.FieldState, "z": model.FieldZipCode,
			},
			want: map[string]string{"n": "Acme Corp", "a": "1 Main St", "c": "", "s": "IL", "z": "62701"},
		},
		{
			name:    "one attribute to many fields",
			mapping: model.Mapping{"top_name": model.FieldName, "footer_name": model.FieldName},
			want:    map[string]string{"top_name": "Acme Corp", "footer_name": "Acme Corp"},
		},
		{
			name:    "empty mapping",
			mapping: model.Mapping{},
			want:    map[string]string{},
		},
		{
			name:    "nil mapping",
			mapping: nil,
			want:    map[string]string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Resolve(tt.mapping, entity)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Len(t, got, len(tt.mapping))
		})
	}
}

func TestResolve_InvalidAttribute(t *testing.T) {
	_, err := Resolve(model.Mapping{"f1": "bogus_field"}, &model.Entity{Name: "x"})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrInternalInconsistency)
}

func TestResolve_NilEntity(t *testing.T) {
	_, err := Resolve(model.Mapping{"f1": model.FieldName}, nil)
	assert.ErrorIs(t, err, apperrors.ErrInternalInconsistency)
}
