package models

import "time"

// Comment is a short reply attached to a post.
type Comment struct {
	ID       uint       `gorm:"primaryKey" json:"id"`
	UserID   uint       `gorm:"not null;index" json:"author_id"`
	Author   User       `gorm:"foreignKey:UserID" json:"-"`
	PostID   uint       `gorm:"not null;index" json:"post_id"`
	Post     *Post      `gorm:"foreignKey:PostID" json:"-"`
	Body     string     `gorm:"size:280;not null" json:"body"`
	Date     time.Time  `gorm:"not null;index" json:"date"`
	EditDate *time.Time `json:"edit_date,omitempty"`
}
