package filler

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	apperrors "github.com/a3tai/mcp-pdf-form-filler/internal/errors"
	"github.com/a3tai/mcp-pdf-form-filler/internal/model"
	"github.com/a3tai/mcp-pdf-form-filler/internal/pdf/pdftest"
	"github.com/a3tai/mcp-pdf-form-filler/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var dbCounter atomic.Int64

type fakeExtractor struct {
	fields []model.FieldDescriptor
	err    error
}

func (f *fakeExtractor) ExtractFields(data []byte) ([]model.FieldDescriptor, error) {
	return f.fields, f.err
}

type fakeWriter struct {
	calls  int
	values map[string]string
	err    error
}

func (f *fakeWriter) Fill(template []byte, values map[string]string) ([]byte, error) {
	f.calls++
	f.values = values
	if f.err != nil {
		return nil, f.err
	}
	return append([]byte("%PDF-filled "), template...), nil
}

type testEnv struct {
	service   *Service
	stores    *store.Stores
	extractor *fakeExtractor
	writer    *fakeWriter
	dataDir   string
}

func openTestStores(t *testing.T) *store.Stores {
	t.Helper()

	dsn := fmt.Sprintf("file:filler_test_%d?mode=memory&cache=shared", dbCounter.Add(1))
	db, err := store.Open(dsn, false)
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	return store.New(db)
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	stores := openTestStores(t)
	extractor := &fakeExtractor{fields: []model.FieldDescriptor{
		{Name: "full_name", AlternateName: "Full legal name", Type: "text"},
		{Name: "addr_line1", AlternateName: "Mailing Address", Type: "text"},
		{Name: "city", AlternateName: "City", Type: "text"},
	}}
	writer := &fakeWriter{}
	dataDir := t.TempDir()

	service, err := NewService(Options{
		Entities:      stores.Entities,
		Templates:     stores.Templates,
		Mappings:      stores.Mappings,
		Extractor:     extractor,
		Writer:        writer,
		MaxFileSize:   1024 * 1024,
		DataDirectory: dataDir,
	})
	require.NoError(t, err)

	return &testEnv{
		service:   service,
		stores:    stores,
		extractor: extractor,
		writer:    writer,
		dataDir:   dataDir,
	}
}

func (e *testEnv) upload(t *testing.T, name string) *FormSummary {
	t.Helper()
	form, err := e.service.UploadForm(context.Background(), UploadFormRequest{
		FormName: name,
		Data:     pdftest.FormPDF(),
	})
	require.NoError(t, err)
	return form
}

func (e *testEnv) entity(t *testing.T, entity model.Entity) *model.Entity {
	t.Helper()
	created, err := e.service.CreateEntity(context.Background(), &entity)
	require.NoError(t, err)
	return created
}

func TestNewService_RequiresCollaborators(t *testing.T) {
	_, err := NewService(Options{MaxFileSize: 1})
	assert.Error(t, err)
}

func TestService_UploadForm(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	form := env.upload(t, "W-9")
	assert.NotZero(t, form.ID)
	assert.Equal(t, "W-9", form.FormName)
	assert.Equal(t, 1, form.PageCount)
	assert.Equal(t, int64(len(pdftest.FormPDF())), form.FileSize)

	forms, err := env.service.ListForms(ctx)
	require.NoError(t, err)
	require.Len(t, forms, 1)
	assert.Equal(t, form.ID, forms[0].ID)
}

func TestService_UploadForm_Rejects(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	tests := []struct {
		name string
		req  UploadFormRequest
	}{
		{name: "empty file", req: UploadFormRequest{FormName: "a", Data: nil}},
		{name: "not a pdf", req: UploadFormRequest{FormName: "a", Data: []byte("hello world")}},
		{name: "missing name", req: UploadFormRequest{FormName: "  ", Data: pdftest.FormPDF()}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.service.UploadForm(ctx, tt.req)
			require.Error(t, err)
			assert.True(t, apperrors.IsValidation(err), "expected validation error, got %v", err)
		})
	}

	env.upload(t, "dup")
	_, err := env.service.UploadForm(ctx, UploadFormRequest{FormName: "dup", Data: pdftest.FormPDF()})
	assert.True(t, apperrors.IsValidation(err))

	env.extractor.err = errors.New("broken acroform")
	_, err = env.service.UploadForm(ctx, UploadFormRequest{FormName: "broken", Data: pdftest.FormPDF()})
	assert.True(t, apperrors.IsValidation(err))
}

func TestService_ImportForm(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	require.NoError(t, os.WriteFile(filepath.Join(env.dataDir, "w9.pdf"), pdftest.FormPDF(), 0o600))

	form, err := env.service.ImportForm(ctx, ImportFormRequest{FormName: "W-9", Path: "w9.pdf"})
	require.NoError(t, err)
	assert.Equal(t, "W-9", form.FormName)

	_, err = env.service.ImportForm(ctx, ImportFormRequest{FormName: "escape", Path: "../../etc/passwd"})
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
}

func TestService_DeleteForm(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	form := env.upload(t, "W-9")
	_, err := env.service.SaveMapping(ctx, SaveMappingRequest{
		FormID:   form.ID,
		Mappings: map[string]string{"full_name": "name"},
	})
	require.NoError(t, err)

	require.NoError(t, env.service.DeleteForm(ctx, form.ID))

	_, err = env.service.GetMapping(ctx, form.ID)
	assert.True(t, apperrors.IsNotFound(err))

	m, err := env.stores.Mappings.Load(ctx, form.ID)
	require.NoError(t, err)
	assert.Empty(t, m)

	err = env.service.DeleteForm(ctx, form.ID)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestService_GetFormFields(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	form := env.upload(t, "W-9")

	result, err := env.service.GetFormFields(ctx, form.ID)
	require.NoError(t, err)
	assert.Equal(t, "W-9", result.FormName)
	assert.Len(t, result.Fields, 3)

	_, err = env.service.GetFormFields(ctx, 999)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestService_Entities(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	acme := env.entity(t, model.Entity{Name: "Acme", City: "Springfield"})

	got, err := env.service.GetEntity(ctx, acme.ID)
	require.NoError(t, err)
	assert.Equal(t, "Springfield", got.City)

	list, err := env.service.ListEntities(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, env.service.DeleteEntity(ctx, acme.ID))
	_, err = env.service.GetEntity(ctx, acme.ID)
	assert.True(t, apperrors.IsNotFound(err))
}
