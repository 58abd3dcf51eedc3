package services

import (
	"path/filepath"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/waveline/waveline/models"
)

// newTestDB opens a throwaway sqlite database with the same schema shape and
// error translation the MySQL deployment uses. The busy timeout makes
// concurrent writers queue instead of failing, mirroring InnoDB behavior.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:" + filepath.Join(t.TempDir(), "waveline_test.db") + "?_busy_timeout=5000"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(
		&models.User{},
		&models.Post{},
		&models.Comment{},
		&models.Like{},
		&models.StaleFile{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func mustRegister(t *testing.T, accounts *AccountService, username, email, name string) *models.User {
	t.Helper()
	user, err := accounts.Register(username, email, name, "secret-password")
	if err != nil {
		t.Fatalf("register %s: %v", username, err)
	}
	return user
}
