package store

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/a3tai/mcp-pdf-form-filler/internal/model"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var dbCounter atomic.Int64

// newTestDB opens a private in-memory database for one test.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:store_test_%d?mode=memory&cache=shared", dbCounter.Add(1))
	db, err := Open(dsn, false)
	require.NoErrorf(t, err, "Open failed: %s", err)

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	return db
}

func mustCreateTemplate(t *testing.T, stores *Stores, name string) *model.FormTemplate {
	t.Helper()
	tmpl, err := stores.Templates.CreateTemplate(context.Background(), &model.FormTemplate{
		FormName: name,
		FileData: []byte("%PDF-1.7 test"),
	})
	require.NoError(t, err)
	return tmpl
}

func mustCreateEntity(t *testing.T, stores *Stores, name string) *model.Entity {
	t.Helper()
	entity, err := stores.Entities.CreateEntity(context.Background(), &model.Entity{Name: name})
	require.NoError(t, err)
	return entity
}
