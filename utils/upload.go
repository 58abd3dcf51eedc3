package utils

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// allowedImageExts are the only accepted upload extensions for post images
// and avatars.
var allowedImageExts = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
}

// AllowedImageFile reports whether the filename carries an accepted image
// extension. The comparison is case-insensitive.
func AllowedImageFile(filename string) bool {
	return allowedImageExts[strings.ToLower(filepath.Ext(filename))]
}

// BuildUploadName derives a collision-free stored name for an upload,
// namespaced by the owning user and the upload time:
// "<userID>_<timestamp>_<random>.<ext>". Only the extension of the original
// name survives, so hostile filenames cannot traverse directories.
func BuildUploadName(userID uint, original string) string {
	ext := strings.ToLower(filepath.Ext(original))
	return fmt.Sprintf("%d_%s_%s%s",
		userID,
		time.Now().Format("20060102_150405"),
		uuid.NewString()[:8],
		ext,
	)
}
