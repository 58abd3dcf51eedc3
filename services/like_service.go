package services

import (
	"errors"

	"gorm.io/gorm"

	"github.com/waveline/waveline/models"
)

// LikeService implements the idempotent like/unlike transition.
type LikeService struct {
	db *gorm.DB
}

// NewLikeService creates a LikeService.
func NewLikeService(db *gorm.DB) *LikeService {
	return &LikeService{db: db}
}

// Toggle flips the like state for the (userID, postID) pair and reports the
// resulting state plus a fresh like count for the post.
//
// The delete-then-insert runs inside a single transaction and leans on the
// composite unique index instead of application locking: when two toggles for
// the same pair race, at most one insert commits and the loser observes the
// pair as already liked. The count is recomputed after the transition rather
// than kept as a cached counter, so it cannot drift.
func (s *LikeService) Toggle(userID, postID uint) (bool, int64, error) {
	var post models.Post
	if err := s.db.First(&post, postID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, 0, ErrNotFound
		}
		return false, 0, err
	}

	liked := false
	err := s.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Where("user_id = ? AND post_id = ?", userID, postID).Delete(&models.Like{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			return nil
		}
		if err := tx.Create(&models.Like{UserID: userID, PostID: postID}).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				// A concurrent toggle inserted first; either way the pair
				// ends up liked and the uniqueness invariant holds.
				liked = true
				return nil
			}
			return err
		}
		liked = true
		return nil
	})
	if err != nil {
		return false, 0, err
	}

	count, err := s.Count(postID)
	if err != nil {
		return liked, 0, err
	}
	return liked, count, nil
}

// Count returns the current number of likes for a post.
func (s *LikeService) Count(postID uint) (int64, error) {
	var count int64
	err := s.db.Model(&models.Like{}).Where("post_id = ?", postID).Count(&count).Error
	return count, err
}

// Liked reports whether the user currently likes the post.
func (s *LikeService) Liked(userID, postID uint) (bool, error) {
	var count int64
	err := s.db.Model(&models.Like{}).
		Where("user_id = ? AND post_id = ?", userID, postID).
		Count(&count).Error
	return count > 0, err
}
