package models

import "time"

// StaleFile records an upload that is no longer referenced, such as an avatar
// that was replaced. The row is written only after the replacement is durably
// stored, and a background sweeper deletes the bytes later. A crash between
// the two steps leaves an orphan file, never a user without a valid avatar.
type StaleFile struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	FileName  string    `gorm:"size:255;not null" json:"file_name"`
	CreatedAt time.Time `json:"created_at"`
}
