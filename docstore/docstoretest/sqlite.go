// Package docstoretest opens throwaway document stores for tests.
package docstoretest

import (
	"path/filepath"
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"nutridiary/docstore"
	"nutridiary/models"
)

// NewSQLite returns a GormStore on a fresh SQLite file under t.TempDir and
// the underlying *gorm.DB so tests can register callbacks on it.
func NewSQLite(t testing.TB) (*docstore.GormStore, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "documents.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql handle: %v", err)
	}
	// one connection keeps sqlite from reporting "database is locked"
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := db.AutoMigrate(&models.Document{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return docstore.NewGormStore(db), db
}
