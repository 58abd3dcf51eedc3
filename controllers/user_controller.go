package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/waveline/waveline/services"
	"github.com/waveline/waveline/utils"
)

// UserController serves profiles and user search.
type UserController struct {
	accounts *services.AccountService
	content  *services.ContentService
	search   *services.SearchService
}

// NewUserController creates a UserController.
func NewUserController(db *gorm.DB) *UserController {
	return &UserController{
		accounts: services.NewAccountService(db),
		content:  services.NewContentService(db),
		search:   services.NewSearchService(db),
	}
}

// Profile returns a user's public profile and their posts, newest first.
func (u *UserController) Profile(ctx *gin.Context) {
	username := strings.TrimSpace(ctx.Param("username"))
	if username == "" {
		utils.Error(ctx, http.StatusBadRequest, 40013, "missing username")
		return
	}

	cacheKey := "cache:profile:" + username
	if b, ok := utils.CacheGetBytes(cacheKey); ok {
		ctx.Data(http.StatusOK, "application/json", b)
		return
	}

	user, err := u.accounts.GetByUsername(username)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	posts, err := u.content.ListPostsByUser(user.ID)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}

	payload := gin.H{
		"user":  publicUser(*user),
		"posts": posts,
	}
	utils.CacheSetJSON(cacheKey, utils.JSONResponse{Code: 0, Message: "success", Data: payload}, time.Hour)
	utils.Success(ctx, payload)
}

// Search matches users by display name or handle, case-insensitive substring.
func (u *UserController) Search(ctx *gin.Context) {
	users, err := u.search.SearchUsers(ctx.Query("q"))
	if err != nil {
		respondServiceError(ctx, err)
		return
	}

	results := make([]gin.H, 0, len(users))
	for _, user := range users {
		results = append(results, publicUser(user))
	}
	utils.Success(ctx, gin.H{"users": results})
}
