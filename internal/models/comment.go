// Package models contains data structures for the application's domain models.
package models

import (
	"time"
)

// Comment represents a reader's comment on a post.
type Comment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Text      string    `gorm:"type:text;not null" json:"text"`
	AuthorID  uint      `gorm:"not null;index" json:"author_id"`
	Author    User      `gorm:"foreignKey:AuthorID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"author"`
	PostID    uint      `gorm:"not null;index" json:"post_id"`
	Post      *BlogPost `gorm:"foreignKey:PostID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"post,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
