package models

import (
	"time"
)

// Post is an article written by a user under a topic.
type Post struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	UserID           uint      `gorm:"not null;index" json:"author_id"`
	Author           User      `gorm:"foreignKey:UserID" json:"-"`
	Title            string    `gorm:"size:100;not null" json:"title"`
	Body             string    `gorm:"type:text;not null" json:"body"`
	TopicID          uint      `gorm:"not null;index" json:"topic_id"`
	Topic            Topic     `gorm:"foreignKey:TopicID" json:"-"`
	LikeCount        int64     `gorm:"not null;default:0" json:"like_count"`
	ThumbnailImageID *uint     `json:"thumbnail_image_id,omitempty"`
	Comments         []Comment `gorm:"foreignKey:PostID" json:"-"`
	Date             time.Time `gorm:"not null;index" json:"date"`
	UpdatedAt        time.Time `json:"updated_at"`
}
