package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/waveline/waveline/services"
	"github.com/waveline/waveline/utils"
)

// PostController handles publishing, the feed, likes and comments.
type PostController struct {
	content  *services.ContentService
	likes    *services.LikeService
	feed     *services.FeedService
	accounts *services.AccountService
}

// NewPostController creates a PostController.
func NewPostController(db *gorm.DB) *PostController {
	return &PostController{
		content:  services.NewContentService(db),
		likes:    services.NewLikeService(db),
		feed:     services.NewFeedService(db),
		accounts: services.NewAccountService(db),
	}
}

// CreatePost publishes a post with optional image, multipart form fields
// "content" and "image".
func (p *PostController) CreatePost(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	content := utils.Sanitize(ctx.PostForm("content"))

	imageFile := ""
	if file, err := ctx.FormFile("image"); err == nil && file != nil {
		stored, saveErr := saveImageUpload(ctx, file, userID)
		if saveErr != nil {
			if errors.Is(saveErr, errBadImageType) || errors.Is(saveErr, errImageTooBig) {
				utils.Error(ctx, http.StatusBadRequest, 40031, saveErr.Error())
				return
			}
			utils.Error(ctx, http.StatusInternalServerError, 50031, "failed to store image")
			return
		}
		imageFile = stored
	}

	post, err := p.content.CreatePost(userID, content, imageFile)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}

	utils.InvalidateByPrefix("cache:feed")
	if author, lookErr := p.accounts.GetByID(userID); lookErr == nil {
		utils.InvalidateByPrefix("cache:profile:" + author.Username)
	}

	utils.Success(ctx, gin.H{"post": post})
}

// Feed returns every post newest first with its author resolved.
func (p *PostController) Feed(ctx *gin.Context) {
	if b, ok := utils.CacheGetBytes("cache:feed"); ok {
		ctx.Data(http.StatusOK, "application/json", b)
		return
	}

	items, err := p.feed.AssembleFeed()
	if err != nil {
		respondServiceError(ctx, err)
		return
	}

	payload := gin.H{"items": items}
	utils.CacheSetJSON("cache:feed", utils.JSONResponse{Code: 0, Message: "success", Data: payload}, time.Hour)
	utils.Success(ctx, payload)
}

// GetPost returns one post with author, comments and like state for the
// requesting viewer. Viewer-specific fields keep this endpoint uncached.
func (p *PostController) GetPost(ctx *gin.Context) {
	postID, ok := paramID(ctx, "id")
	if !ok {
		return
	}
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	post, err := p.content.GetPost(postID)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	author, err := p.accounts.GetByID(post.UserID)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			// The post exists but its author does not: a broken reference,
			// not a user error.
			respondServiceError(ctx, services.ErrDataIntegrity)
			return
		}
		respondServiceError(ctx, err)
		return
	}

	comments, err := p.feed.AssembleComments(post.ID)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	likeCount, err := p.likes.Count(post.ID)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	liked, err := p.likes.Liked(userID, post.ID)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}

	utils.Success(ctx, gin.H{
		"post":       post,
		"author":     publicUser(*author),
		"comments":   comments,
		"like_count": likeCount,
		"liked":      liked,
	})
}

// ToggleLike flips the viewer's like on a post and returns the new state.
func (p *PostController) ToggleLike(ctx *gin.Context) {
	postID, ok := paramID(ctx, "id")
	if !ok {
		return
	}
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	liked, count, err := p.likes.Toggle(userID, postID)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	utils.Success(ctx, gin.H{"liked": liked, "like_count": count})
}

// CreateComment attaches a comment and returns its presentation view, ready
// for the page to append without another fetch.
func (p *PostController) CreateComment(ctx *gin.Context) {
	postID, ok := paramID(ctx, "id")
	if !ok {
		return
	}
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var req struct {
		Content string `json:"content" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40011, "invalid request payload")
		return
	}

	comment, err := p.content.CreateComment(postID, userID, utils.Sanitize(req.Content))
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	view, err := p.feed.AssembleComment(comment.ID)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	utils.Success(ctx, gin.H{"comment": view})
}

func paramID(ctx *gin.Context, name string) (uint, bool) {
	raw := strings.TrimSpace(ctx.Param(name))
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		utils.Error(ctx, http.StatusBadRequest, 40012, "invalid id")
		return 0, false
	}
	return uint(id), true
}
