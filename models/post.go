package models

import "time"

// Post is a feed entry published by a user. Posts are append-only: there is
// no edit or delete operation.
type Post struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"index;not null" json:"user_id"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	ImageFile string    `gorm:"size:255" json:"image_file"`
	CreatedAt time.Time `json:"created_at"`
}
