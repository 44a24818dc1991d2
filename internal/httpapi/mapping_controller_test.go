package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/a3tai/mcp-pdf-form-filler/internal/filler"
	"github.com/a3tai/mcp-pdf-form-filler/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMappings_SaveAndGet(t *testing.T) {
	ts := newTestServer(t)
	form := ts.mustUpload(t, "W-9")

	rec := ts.do(t, http.MethodPost, "/api/mappings", map[string]interface{}{
		"form_id": form.ID,
		"mappings": map[string]string{
			"full_name":  "name",
			"addr_line1": "",
		},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = ts.do(t, http.MethodGet, fmt.Sprintf("/api/mappings/form/%d", form.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var got filler.MappingResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, model.Mapping{"full_name": model.FieldName}, got.Mappings)
}

func TestMappings_SaveRejects(t *testing.T) {
	ts := newTestServer(t)
	form := ts.mustUpload(t, "W-9")

	tests := []struct {
		name string
		body interface{}
		want int
	}{
		{
			name: "unknown attribute",
			body: map[string]interface{}{"form_id": form.ID, "mappings": map[string]string{"full_name": "phone"}},
			want: http.StatusBadRequest,
		},
		{
			name: "missing form id",
			body: map[string]interface{}{"mappings": map[string]string{"full_name": "name"}},
			want: http.StatusBadRequest,
		},
		{
			name: "unknown form",
			body: map[string]interface{}{"form_id": 999, "mappings": map[string]string{"full_name": "name"}},
			want: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := ts.do(t, http.MethodPost, "/api/mappings", tt.body)
			assert.Equal(t, tt.want, rec.Code, rec.Body.String())
		})
	}
}

func TestMappings_AutoMapAndStatus(t *testing.T) {
	ts := newTestServer(t)
	form := ts.mustUpload(t, "W-9")

	rec := ts.do(t, http.MethodPost, fmt.Sprintf("/api/mappings/form/%d/auto", form.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var proposal filler.AutoMapResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &proposal))
	assert.Equal(t, 3, proposal.Added)
	assert.Equal(t, model.FieldCity, proposal.Mapping["city"])

	rec = ts.do(t, http.MethodGet, fmt.Sprintf("/api/mappings/form/%d/status", form.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var status filler.MappingStatus
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.False(t, status.HasMappings)
	assert.Zero(t, status.Count)
}

func TestMappings_AutoMapSave(t *testing.T) {
	ts := newTestServer(t)
	form := ts.mustUpload(t, "W-9")

	rec := ts.do(t, http.MethodPost, "/api/mappings", map[string]interface{}{
		"form_id":  form.ID,
		"mappings": map[string]string{"full_name": "state"},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = ts.do(t, http.MethodPost, fmt.Sprintf("/api/mappings/form/%d/auto?save=true", form.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var proposal filler.AutoMapResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &proposal))
	assert.Equal(t, 2, proposal.Added)

	rec = ts.do(t, http.MethodGet, fmt.Sprintf("/api/mappings/form/%d", form.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var stored filler.MappingResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stored))
	assert.Equal(t, model.Mapping{
		"full_name":  model.FieldState,
		"addr_line1": model.FieldStreetAddress,
		"city":       model.FieldCity,
	}, stored.Mappings)
}

func TestMappings_Test(t *testing.T) {
	ts := newTestServer(t)
	form := ts.mustUpload(t, "W-9")

	rec := ts.do(t, http.MethodGet, fmt.Sprintf("/api/mappings/form/%d/test", form.ID), nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	entity := ts.mustCreateEntity(t, "Acme")
	rec = ts.do(t, http.MethodPost, "/api/mappings", map[string]interface{}{
		"form_id":  form.ID,
		"mappings": map[string]string{"full_name": "name", "city": "city"},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = ts.do(t, http.MethodGet, fmt.Sprintf("/api/mappings/form/%d/test", form.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var result filler.TestMappingResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, entity.ID, result.EntityUsed.ID)
	assert.Equal(t, 2, result.ResolvedFieldCount)
}
