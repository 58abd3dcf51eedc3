package models

import "time"

// Like marks that a user currently likes a post. At most one row may exist
// per (user, post) pair; the composite unique index is what the toggle
// transaction leans on when concurrent requests race.
type Like struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"uniqueIndex:idx_likes_user_post;not null" json:"user_id"`
	PostID    uint      `gorm:"uniqueIndex:idx_likes_user_post;not null" json:"post_id"`
	CreatedAt time.Time `json:"created_at"`
}
