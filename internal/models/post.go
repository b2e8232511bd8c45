// Package models contains data structures for the application's domain models.
package models

import (
	"time"
)

// PostDateLayout is the long-form display format stored in BlogPost.Date.
const PostDateLayout = "January 02, 2006"

// BlogPost represents an article written by the administrator.
type BlogPost struct {
	ID       uint      `gorm:"primaryKey" json:"id"`
	AuthorID uint      `gorm:"not null;index" json:"author_id"`
	Author   User      `gorm:"foreignKey:AuthorID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"author"`
	Title    string    `gorm:"size:250;unique;not null" json:"title"`
	Subtitle string    `gorm:"size:250;not null" json:"subtitle"`
	// Date is a display string, not a timestamp.
	Date      string    `gorm:"size:250;not null" json:"date"`
	Body      string    `gorm:"type:text;not null" json:"body"`
	ImgURL    string    `gorm:"size:250;not null" json:"img_url"`
	Comments  []Comment `gorm:"foreignKey:PostID" json:"comments,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName keeps the table name used by existing deployments.
func (BlogPost) TableName() string {
	return "blog_posts"
}

// FormatPostDate renders t the way post dates are displayed.
func FormatPostDate(t time.Time) string {
	return t.Format(PostDateLayout)
}
