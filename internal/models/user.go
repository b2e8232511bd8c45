// Package models contains data structures for the application's domain models.
package models

import (
	"time"
)

// AdminUserID is the identity that owns the blog. There is no role column:
// whoever holds ID 1 is the administrator.
const AdminUserID uint = 1

// User represents a registered reader or the blog's administrator.
type User struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	Email     string     `gorm:"size:100;unique;not null" json:"email"`
	Name      string     `gorm:"size:100;not null" json:"name"`
	Password  string     `gorm:"size:255;not null" json:"-"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	Posts     []BlogPost `gorm:"foreignKey:AuthorID" json:"posts,omitempty"`
	Comments  []Comment  `gorm:"foreignKey:AuthorID" json:"comments,omitempty"`
}

// IsAdmin reports whether u is the administrator.
func (u *User) IsAdmin() bool {
	return u != nil && u.ID == AdminUserID
}
