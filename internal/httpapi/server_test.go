package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	apperrors "github.com/a3tai/mcp-pdf-form-filler/internal/errors"
	"github.com/a3tai/mcp-pdf-form-filler/internal/filler"
	"github.com/a3tai/mcp-pdf-form-filler/internal/model"
	"github.com/a3tai/mcp-pdf-form-filler/internal/pdf/pdftest"
	"github.com/a3tai/mcp-pdf-form-filler/internal/store"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var dbCounter atomic.Int64

type stubExtractor struct{}

func (stubExtractor) ExtractFields(data []byte) ([]model.FieldDescriptor, error) {
	return []model.FieldDescriptor{
		{Name: "full_name", AlternateName: "Full legal name", Type: "text"},
		{Name: "addr_line1", AlternateName: "Mailing Address", Type: "text"},
		{Name: "city", AlternateName: "City", Type: "text"},
	}, nil
}

type stubWriter struct {
	err error
}

func (w *stubWriter) Fill(template []byte, values map[string]string) ([]byte, error) {
	if w.err != nil {
		return nil, w.err
	}
	return []byte("%PDF-filled"), nil
}

type testServer struct {
	server  *Server
	service *filler.Service
	writer  *stubWriter
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	dsn := fmt.Sprintf("file:httpapi_test_%d?mode=memory&cache=shared", dbCounter.Add(1))
	db, err := store.Open(dsn, false)
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	stores := store.New(db)
	writer := &stubWriter{}
	service, err := filler.NewService(filler.Options{
		Entities:      stores.Entities,
		Templates:     stores.Templates,
		Mappings:      stores.Mappings,
		Extractor:     stubExtractor{},
		Writer:        writer,
		MaxFileSize:   1024 * 1024,
		DataDirectory: t.TempDir(),
	})
	require.NoError(t, err)

	return &testServer{
		server:  NewServer(service, "127.0.0.1:0"),
		service: service,
		writer:  writer,
	}
}

func (ts *testServer) do(t *testing.T, method, target string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, target, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	ts.server.ServeHTTP(rec, req)
	return rec
}

func (ts *testServer) upload(t *testing.T, name string, data []byte) *httptest.ResponseRecorder {
	t.Helper()

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	require.NoError(t, w.WriteField("form_name", name))
	if data != nil {
		part, err := w.CreateFormFile("file", "form.pdf")
		require.NoError(t, err)
		_, err = part.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/forms/upload", &body)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	rec := httptest.NewRecorder()
	ts.server.ServeHTTP(rec, req)
	return rec
}

func (ts *testServer) mustUpload(t *testing.T, name string) filler.FormSummary {
	t.Helper()
	rec := ts.upload(t, name, pdftest.FormPDF())
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var form filler.FormSummary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &form))
	return form
}

func (ts *testServer) mustCreateEntity(t *testing.T, name string) *model.Entity {
	t.Helper()
	entity, err := ts.service.CreateEntity(context.Background(), &model.Entity{Name: name, City: "Springfield"})
	require.NoError(t, err)
	return entity
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var resp errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.Error
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodGet, "/", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "running")
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not found", apperrors.NotFound("form", 1), http.StatusNotFound},
		{"validation", apperrors.Validation("bad"), http.StatusBadRequest},
		{"no entities", apperrors.NoEntitiesAvailable(), http.StatusConflict},
		{"generation", apperrors.Generation(errors.New("boom"), "failed"), http.StatusUnprocessableEntity},
		{"inconsistency", apperrors.InternalInconsistency("bad key"), http.StatusInternalServerError},
		{"wrapped", fmt.Errorf("outer: %w", apperrors.NotFound("entity", 2)), http.StatusNotFound},
		{"plain", errors.New("plain"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, statusFor(tt.err))
		})
	}
}

func TestForms(t *testing.T) {
	ts := newTestServer(t)

	form := ts.mustUpload(t, "W-9")
	assert.Equal(t, "W-9", form.FormName)
	assert.Equal(t, 1, form.PageCount)

	rec := ts.do(t, http.MethodGet, "/api/forms", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var forms []filler.FormSummary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &forms))
	require.Len(t, forms, 1)
	assert.NotContains(t, rec.Body.String(), "file_data")

	rec = ts.do(t, http.MethodGet, fmt.Sprintf("/api/forms/%d/fields", form.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var fields filler.FormFieldsResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &fields))
	assert.Len(t, fields.Fields, 3)

	rec = ts.do(t, http.MethodDelete, fmt.Sprintf("/api/forms/%d", form.ID), nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = ts.do(t, http.MethodDelete, fmt.Sprintf("/api/forms/%d", form.ID), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUploadForm_Rejects(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.upload(t, "no file", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "no file provided", decodeError(t, rec))

	rec = ts.upload(t, "bad", []byte("not a pdf"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.upload(t, "", pdftest.FormPDF())
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestInvalidID(t *testing.T) {
	ts := newTestServer(t)

	for _, target := range []string{"/api/forms/abc/fields", "/api/mappings/form/0", "/api/entities/-1"} {
		rec := ts.do(t, http.MethodGet, target, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code, target)
	}
}
