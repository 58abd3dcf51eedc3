package services

import (
	"strings"

	"gorm.io/gorm"

	"github.com/waveline/waveline/models"
)

// SearchService performs a linear, case-insensitive substring match over
// display names and usernames.
type SearchService struct {
	db *gorm.DB
}

// NewSearchService creates a SearchService.
func NewSearchService(db *gorm.DB) *SearchService {
	return &SearchService{db: db}
}

// SearchUsers returns users whose display name or username contains the query,
// ignoring case. Results carry no duplicates. A blank query means "no search
// yet" and returns an empty result without touching storage, as opposed to
// matching everyone.
func (s *SearchService) SearchUsers(query string) ([]models.User, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []models.User{}, nil
	}

	pattern := "%" + strings.ToLower(query) + "%"
	var users []models.User
	err := s.db.
		Where("LOWER(name) LIKE ? OR LOWER(username) LIKE ?", pattern, pattern).
		Find(&users).Error
	return users, err
}
