package utils

import (
	"os"
	"path/filepath"
	"time"

	"gorm.io/gorm"

	"github.com/waveline/waveline/models"
)

// StartStaleFileSweeper launches a background goroutine that periodically
// deletes files queued in stale_files, such as avatars replaced by a newer
// upload. Deletion is best-effort; a failure only delays the next attempt.
func StartStaleFileSweeper(db *gorm.DB, uploadDir string, interval time.Duration) {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	go func() {
		for {
			time.Sleep(interval)
			sweepStaleFiles(db, uploadDir)
		}
	}()
}

func sweepStaleFiles(db *gorm.DB, uploadDir string) {
	var items []models.StaleFile
	if err := db.Limit(100).Find(&items).Error; err != nil {
		if Sugar != nil {
			Sugar.Warnf("stale file sweep query failed: %v", err)
		}
		return
	}
	for _, it := range items {
		// Never touch the shared default avatar, whatever got recorded.
		if it.FileName == "" || it.FileName == models.DefaultAvatar {
			_ = db.Delete(&models.StaleFile{}, it.ID).Error
			continue
		}
		path := filepath.Join(uploadDir, filepath.Base(it.FileName))
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			if Sugar != nil {
				Sugar.Warnf("stale file removal failed path=%s err=%v", path, err)
			}
			continue
		}
		if err := db.Delete(&models.StaleFile{}, it.ID).Error; err != nil && Sugar != nil {
			Sugar.Warnf("stale file row delete failed id=%d err=%v", it.ID, err)
		}
	}
}
