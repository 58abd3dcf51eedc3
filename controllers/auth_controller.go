package controllers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/waveline/waveline/config"
	"github.com/waveline/waveline/services"
	"github.com/waveline/waveline/utils"
)

// AuthController handles registration, sessions and profile edits.
type AuthController struct {
	accounts *services.AccountService
}

// NewAuthController creates an AuthController.
func NewAuthController(db *gorm.DB) *AuthController {
	return &AuthController{accounts: services.NewAccountService(db)}
}

// Register creates a local account.
func (a *AuthController) Register(ctx *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required,min=2,max=64"`
		Email    string `json:"email" binding:"required,email"`
		Name     string `json:"name" binding:"required,max=128"`
		Password string `json:"password" binding:"required,min=6,max=72"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40001, "invalid request payload")
		return
	}

	username := strings.TrimSpace(req.Username)
	name := utils.SanitizeStrict(strings.TrimSpace(req.Name))
	if username == "" || name == "" {
		utils.Error(ctx, http.StatusBadRequest, 40002, "username and name are required")
		return
	}

	user, err := a.accounts.Register(username, strings.TrimSpace(req.Email), name, req.Password)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	utils.Success(ctx, gin.H{"user": ownUser(*user)})
}

// Login verifies credentials and issues a session token. The remember flag
// only lengthens the token lifetime; behavior is otherwise identical.
func (a *AuthController) Login(ctx *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
		Remember bool   `json:"remember"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40003, "invalid request payload")
		return
	}

	user, err := a.accounts.Authenticate(req.Username, req.Password)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}

	cfg := config.Get()
	duration := time.Duration(cfg.SessionHours) * time.Hour
	if req.Remember {
		duration = time.Duration(cfg.RememberDays) * 24 * time.Hour
	}
	token, err := utils.GenerateToken(user.ID, user.Username, duration)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50004, "failed to generate token")
		return
	}

	utils.Success(ctx, gin.H{
		"token": token,
		"user":  ownUser(*user),
	})
}

// Logout revokes the presented token until its natural expiry.
func (a *AuthController) Logout(ctx *gin.Context) {
	authHeader := ctx.GetHeader("Authorization")
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 {
		utils.Error(ctx, http.StatusUnauthorized, 40107, "invalid authorization header")
		return
	}

	token := strings.TrimSpace(parts[1])
	claims, err := utils.ParseToken(token)
	if err != nil {
		utils.Error(ctx, http.StatusUnauthorized, 40105, "invalid token")
		return
	}

	expiresAt := time.Now().Add(24 * time.Hour)
	if claims.ExpiresAt != nil {
		expiresAt = claims.ExpiresAt.Time
	}
	utils.BlacklistToken(token, expiresAt)
	utils.Success(ctx, gin.H{"message": "logged out"})
}

// Me returns the authenticated user's own profile.
func (a *AuthController) Me(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}
	user, err := a.accounts.GetByID(userID)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	utils.Success(ctx, gin.H{"user": ownUser(*user)})
}

// UpdateProfile overwrites display name and bio, optionally replacing the
// avatar. The new avatar file is stored before the row update, so the account
// always references a file that exists.
func (a *AuthController) UpdateProfile(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	name := utils.SanitizeStrict(strings.TrimSpace(ctx.PostForm("name")))
	bio := utils.Sanitize(strings.TrimSpace(ctx.PostForm("bio")))
	if name == "" {
		utils.Error(ctx, http.StatusBadRequest, 40004, "name cannot be empty")
		return
	}

	newAvatar := ""
	if file, err := ctx.FormFile("avatar"); err == nil && file != nil {
		stored, saveErr := saveImageUpload(ctx, file, userID)
		if saveErr != nil {
			if errors.Is(saveErr, errBadImageType) || errors.Is(saveErr, errImageTooBig) {
				utils.Error(ctx, http.StatusBadRequest, 40031, saveErr.Error())
				return
			}
			utils.Error(ctx, http.StatusInternalServerError, 50030, "failed to store avatar")
			return
		}
		newAvatar = stored
	}

	user, err := a.accounts.UpdateProfile(userID, name, bio, newAvatar)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}

	utils.InvalidateByPrefix("cache:profile:" + user.Username)
	utils.Success(ctx, gin.H{"user": ownUser(*user)})
}
