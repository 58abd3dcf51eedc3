package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/waveline/waveline/models"
	"github.com/waveline/waveline/utils"
)

// commentTimeLayout renders timestamps the way the feed pages display them,
// e.g. "March 07, 2026 at 14:32".
const commentTimeLayout = "January 02, 2006 at 15:04"

// FeedItem pairs a post with its resolved author. The author is a public
// projection; email never appears in feed payloads.
type FeedItem struct {
	Post   models.Post `json:"post"`
	Author AuthorView  `json:"author"`
}

// AuthorView is the public projection of a user for feed payloads.
type AuthorView struct {
	ID         uint   `json:"id"`
	Username   string `json:"username"`
	Name       string `json:"name"`
	AvatarFile string `json:"avatar_file"`
}

// CommentView is the presentation projection of a comment: content plus the
// author's identity and a human-readable timestamp. The formatted time is
// derived on the fly, never stored.
type CommentView struct {
	ID             uint   `json:"id"`
	PostID         uint   `json:"post_id"`
	Content        string `json:"content"`
	AuthorName     string `json:"author_name"`
	AuthorUsername string `json:"author_username"`
	AvatarFile     string `json:"avatar_file"`
	CreatedAt      string `json:"created_at"`
}

// FeedService joins content with authors for presentation. Author lookups are
// explicit batch fetches; entities never reach back into storage themselves.
type FeedService struct {
	db *gorm.DB
}

// NewFeedService creates a FeedService.
func NewFeedService(db *gorm.DB) *FeedService {
	return &FeedService{db: db}
}

// AssembleFeed returns every post newest first, each with its author resolved.
// Ordering is strictly non-increasing creation time with insertion order as
// the tiebreak. A post whose author cannot be resolved is a broken reference
// and fails the whole assembly rather than being skipped silently.
func (s *FeedService) AssembleFeed() ([]FeedItem, error) {
	var posts []models.Post
	if err := s.db.Order("created_at DESC, id DESC").Find(&posts).Error; err != nil {
		return nil, err
	}
	if len(posts) == 0 {
		return []FeedItem{}, nil
	}

	ids := make([]uint, 0, len(posts))
	for _, p := range posts {
		ids = append(ids, p.UserID)
	}
	authors, err := s.usersByID(utils.UniqueUint(ids))
	if err != nil {
		return nil, err
	}

	items := make([]FeedItem, 0, len(posts))
	for _, p := range posts {
		author, ok := authors[p.UserID]
		if !ok {
			return nil, fmt.Errorf("%w: post %d references user %d", ErrDataIntegrity, p.ID, p.UserID)
		}
		items = append(items, FeedItem{Post: p, Author: projectAuthor(author)})
	}
	return items, nil
}

// AssembleComment projects a single comment for display.
func (s *FeedService) AssembleComment(commentID uint) (*CommentView, error) {
	var comment models.Comment
	if err := s.db.First(&comment, commentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	var author models.User
	if err := s.db.First(&author, comment.UserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: comment %d references user %d", ErrDataIntegrity, comment.ID, comment.UserID)
		}
		return nil, err
	}
	view := projectComment(comment, author)
	return &view, nil
}

// AssembleComments projects all comments of a post in insertion order, with a
// single batch lookup for the authors.
func (s *FeedService) AssembleComments(postID uint) ([]CommentView, error) {
	var comments []models.Comment
	if err := s.db.Where("post_id = ?", postID).Order("id ASC").Find(&comments).Error; err != nil {
		return nil, err
	}
	if len(comments) == 0 {
		return []CommentView{}, nil
	}

	ids := make([]uint, 0, len(comments))
	for _, c := range comments {
		ids = append(ids, c.UserID)
	}
	authors, err := s.usersByID(utils.UniqueUint(ids))
	if err != nil {
		return nil, err
	}

	views := make([]CommentView, 0, len(comments))
	for _, c := range comments {
		author, ok := authors[c.UserID]
		if !ok {
			return nil, fmt.Errorf("%w: comment %d references user %d", ErrDataIntegrity, c.ID, c.UserID)
		}
		views = append(views, projectComment(c, author))
	}
	return views, nil
}

func (s *FeedService) usersByID(ids []uint) (map[uint]models.User, error) {
	var users []models.User
	if err := s.db.Find(&users, ids).Error; err != nil {
		return nil, err
	}
	m := make(map[uint]models.User, len(users))
	for _, u := range users {
		m[u.ID] = u
	}
	return m, nil
}

func projectAuthor(u models.User) AuthorView {
	return AuthorView{
		ID:         u.ID,
		Username:   u.Username,
		Name:       u.Name,
		AvatarFile: u.AvatarFile,
	}
}

func projectComment(c models.Comment, author models.User) CommentView {
	return CommentView{
		ID:             c.ID,
		PostID:         c.PostID,
		Content:        c.Content,
		AuthorName:     author.Name,
		AuthorUsername: author.Username,
		AvatarFile:     author.AvatarFile,
		CreatedAt:      c.CreatedAt.Format(commentTimeLayout),
	}
}
