package store

import (
	"context"
	"testing"

	apperrors "github.com/a3tai/mcp-pdf-form-filler/internal/errors"
	"github.com/a3tai/mcp-pdf-form-filler/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormTemplateStore_CreateTemplate(t *testing.T) {
	stores := New(newTestDB(t))
	ctx := context.Background()

	tmpl := mustCreateTemplate(t, stores, "W-9")
	assert.NotZero(t, tmpl.ID)
	assert.False(t, tmpl.UploadedAt.IsZero())

	tests := []struct {
		name string
		tmpl model.FormTemplate
	}{
		{
			name: "duplicate name",
			tmpl: model.FormTemplate{FormName: "W-9", FileData: []byte("%PDF-")},
		},
		{
			name: "empty name",
			tmpl: model.FormTemplate{FormName: " ", FileData: []byte("%PDF-")},
		},
		{
			name: "no data",
			tmpl: model.FormTemplate{FormName: "1099"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpl := tt.tmpl
			_, err := stores.Templates.CreateTemplate(ctx, &tmpl)
			require.Error(t, err)
			assert.True(t, apperrors.IsValidation(err), "got %v", err)
		})
	}
}

func TestGormTemplateStore_GetAndList(t *testing.T) {
	stores := New(newTestDB(t))
	ctx := context.Background()

	w9 := mustCreateTemplate(t, stores, "W-9")
	mustCreateTemplate(t, stores, "W-4")

	got, err := stores.Templates.GetTemplateByID(ctx, w9.ID)
	require.NoError(t, err)
	assert.Equal(t, "W-9", got.FormName)
	assert.Equal(t, []byte("%PDF-1.7 test"), got.FileData)

	_, err = stores.Templates.GetTemplateByID(ctx, 1234)
	assert.True(t, apperrors.IsNotFound(err))

	list, err := stores.Templates.ListTemplates(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "W-9", list[0].FormName)
	assert.Empty(t, list[0].FileData, "list must not carry payloads")
}

func TestGormTemplateStore_DeleteCascadesToMappings(t *testing.T) {
	stores := New(newTestDB(t))
	ctx := context.Background()

	tmpl := mustCreateTemplate(t, stores, "W-9")
	require.NoError(t, stores.Mappings.ReplaceAll(ctx, tmpl.ID, model.Mapping{
		"f1": model.FieldName,
		"f2": model.FieldCity,
	}))

	require.NoError(t, stores.Templates.DeleteTemplate(ctx, tmpl.ID))

	_, err := stores.Templates.GetTemplateByID(ctx, tmpl.ID)
	assert.True(t, apperrors.IsNotFound(err))

	mapping, err := stores.Mappings.Load(ctx, tmpl.ID)
	require.NoError(t, err)
	assert.Empty(t, mapping)

	err = stores.Templates.DeleteTemplate(ctx, tmpl.ID)
	assert.True(t, apperrors.IsNotFound(err))
}
