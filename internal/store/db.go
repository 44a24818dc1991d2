package store

import (
	"log"
	"os"
	"time"

	"github.com/a3tai/mcp-pdf-form-filler/internal/model"
	"github.com/pkg/errors"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open connects to the SQLite database at dsn and migrates the schema.
// When debug is set GORM logs every statement to stderr.
func Open(dsn string, debug bool) (*gorm.DB, error) {
	gormLogger := logger.Default.LogMode(logger.Silent)
	if debug {
		gormLogger = logger.New(log.New(os.Stderr, "\r\n", log.LstdFlags),
			logger.Config{
				SlowThreshold:             time.Second,
				LogLevel:                  logger.Info,
				IgnoreRecordNotFoundError: true,
				Colorful:                  false,
			})
	}

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: gormLogger})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open database %s", dsn)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, errors.Wrap(err, "failed to get database handle")
	}

	// SQLite allows a single writer; one connection avoids "database is locked".
	sqlDB.SetMaxOpenConns(1)

	if err := RunMigrations(db); err != nil {
		return nil, err
	}

	return db, nil
}

func RunMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(&model.Entity{}, &model.FormTemplate{}, &model.FieldMapping{}); err != nil {
		return errors.Wrap(err, "failed to migrate schema")
	}
	return nil
}
