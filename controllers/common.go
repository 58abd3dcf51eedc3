package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/waveline/waveline/middleware"
	"github.com/waveline/waveline/models"
	"github.com/waveline/waveline/services"
	"github.com/waveline/waveline/utils"
)

// getUserID extracts the authenticated identity placed by the auth gate.
func getUserID(ctx *gin.Context) (uint, bool) {
	value, exists := ctx.Get(middleware.ContextUserIDKey)
	if !exists {
		return 0, false
	}
	id, ok := value.(uint)
	return id, ok
}

// publicUser is the profile shape exposed to other users: no email, no hash.
func publicUser(u models.User) gin.H {
	return gin.H{
		"id":          u.ID,
		"username":    u.Username,
		"name":        u.Name,
		"bio":         u.Bio,
		"avatar_file": u.AvatarFile,
		"created_at":  u.CreatedAt,
	}
}

// ownUser additionally exposes the account email to its owner.
func ownUser(u models.User) gin.H {
	out := publicUser(u)
	out["email"] = u.Email
	return out
}

// respondServiceError maps the core error taxonomy onto HTTP responses.
// Unknown errors are reported as server faults without leaking detail.
func respondServiceError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrDuplicateUsername):
		utils.Error(ctx, http.StatusConflict, 40901, err.Error())
	case errors.Is(err, services.ErrDuplicateEmail):
		utils.Error(ctx, http.StatusConflict, 40902, err.Error())
	case errors.Is(err, services.ErrInvalidCredentials):
		utils.Error(ctx, http.StatusUnauthorized, 40106, err.Error())
	case errors.Is(err, services.ErrNotFound):
		utils.Error(ctx, http.StatusNotFound, 40401, err.Error())
	case errors.Is(err, services.ErrEmptyContent):
		utils.Error(ctx, http.StatusBadRequest, 40010, err.Error())
	case errors.Is(err, services.ErrDataIntegrity):
		utils.Error(ctx, http.StatusInternalServerError, 50050, "data integrity violation")
	default:
		utils.Error(ctx, http.StatusInternalServerError, 50000, "internal error")
	}
}
