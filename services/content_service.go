package services

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/waveline/waveline/models"
)

// ContentService owns the post/comment graph.
type ContentService struct {
	db *gorm.DB
}

// NewContentService creates a ContentService.
func NewContentService(db *gorm.DB) *ContentService {
	return &ContentService{db: db}
}

// CreatePost publishes a post. Content must be non-blank; the image reference
// is optional and has already been validated and stored by the caller.
func (s *ContentService) CreatePost(userID uint, content, imageFile string) (*models.Post, error) {
	if strings.TrimSpace(content) == "" {
		return nil, ErrEmptyContent
	}
	post := models.Post{
		UserID:    userID,
		Content:   content,
		ImageFile: imageFile,
	}
	if err := s.db.Create(&post).Error; err != nil {
		return nil, err
	}
	return &post, nil
}

// CreateComment attaches a comment to an existing post.
func (s *ContentService) CreateComment(postID, userID uint, content string) (*models.Comment, error) {
	if strings.TrimSpace(content) == "" {
		return nil, ErrEmptyContent
	}
	var post models.Post
	if err := s.db.First(&post, postID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	comment := models.Comment{
		PostID:  post.ID,
		UserID:  userID,
		Content: content,
	}
	if err := s.db.Create(&comment).Error; err != nil {
		return nil, err
	}
	return &comment, nil
}

// GetPost fetches a single post by ID.
func (s *ContentService) GetPost(postID uint) (*models.Post, error) {
	var post models.Post
	if err := s.db.First(&post, postID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &post, nil
}

// ListPostsByUser returns a user's posts newest first. Ties on the creation
// timestamp fall back to insertion order.
func (s *ContentService) ListPostsByUser(userID uint) ([]models.Post, error) {
	var posts []models.Post
	err := s.db.Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&posts).Error
	return posts, err
}

// ListComments returns a post's comments in insertion order.
func (s *ContentService) ListComments(postID uint) ([]models.Comment, error) {
	var comments []models.Comment
	err := s.db.Where("post_id = ?", postID).Order("id ASC").Find(&comments).Error
	return comments, err
}
