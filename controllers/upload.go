package controllers

import (
	"errors"
	"mime/multipart"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"

	"github.com/waveline/waveline/config"
	"github.com/waveline/waveline/utils"
)

var (
	errBadImageType = errors.New("only png, jpg, jpeg and gif uploads are allowed")
	errImageTooBig  = errors.New("uploaded image exceeds the size limit")
)

// saveImageUpload validates and stores one uploaded image, returning the
// stored filename. The caller persists that reference; the bytes live under
// the configured upload directory.
func saveImageUpload(ctx *gin.Context, file *multipart.FileHeader, userID uint) (string, error) {
	if !utils.AllowedImageFile(file.Filename) {
		return "", errBadImageType
	}
	cfg := config.Get()
	if file.Size > int64(cfg.MaxUploadMB)*1024*1024 {
		return "", errImageTooBig
	}

	if err := os.MkdirAll(cfg.UploadDir, 0o755); err != nil {
		return "", err
	}
	name := utils.BuildUploadName(userID, file.Filename)
	if err := ctx.SaveUploadedFile(file, filepath.Join(cfg.UploadDir, name)); err != nil {
		return "", err
	}
	return name, nil
}
