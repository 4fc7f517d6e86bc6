package models

import (
	"fmt"
	"time"
)

// Follow is a directed follow edge. One row is both the follower's
// followed-users entry and the followee's followers entry.
type Follow struct {
	FollowerID uint      `gorm:"primaryKey;autoIncrement:false" json:"follower_id"`
	FolloweeID uint      `gorm:"primaryKey;autoIncrement:false;index" json:"followee_id"`
	CreatedAt  time.Time `json:"created_at"`
}

// IgnoredUser hides an author from the ignoring user's feeds.
type IgnoredUser struct {
	UserID        uint      `gorm:"primaryKey;autoIncrement:false" json:"user_id"`
	IgnoredUserID uint      `gorm:"primaryKey;autoIncrement:false;index" json:"ignored_user_id"`
	CreatedAt     time.Time `json:"created_at"`
}

// IgnoredTopic hides a topic from the ignoring user's feeds.
type IgnoredTopic struct {
	UserID    uint      `gorm:"primaryKey;autoIncrement:false" json:"user_id"`
	TopicID   uint      `gorm:"primaryKey;autoIncrement:false;index" json:"topic_id"`
	CreatedAt time.Time `json:"created_at"`
}

// IgnoredPost hides a single post from the ignoring user's feeds.
type IgnoredPost struct {
	UserID    uint      `gorm:"primaryKey;autoIncrement:false" json:"user_id"`
	PostID    uint      `gorm:"primaryKey;autoIncrement:false;index" json:"post_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Bookmark saves a post to the user's reading list.
type Bookmark struct {
	UserID    uint      `gorm:"primaryKey;autoIncrement:false" json:"user_id"`
	PostID    uint      `gorm:"primaryKey;autoIncrement:false;index" json:"post_id"`
	CreatedAt time.Time `json:"created_at"`
}

// EdgeKind identifies one of the per-user reference sets.
type EdgeKind int

const (
	EdgeFollow EdgeKind = iota
	EdgeIgnoreUser
	EdgeIgnoreTopic
	EdgeIgnorePost
	EdgeBookmark
)

// EdgeKinds lists every edge kind.
var EdgeKinds = []EdgeKind{EdgeFollow, EdgeIgnoreUser, EdgeIgnoreTopic, EdgeIgnorePost, EdgeBookmark}

func (k EdgeKind) String() string {
	switch k {
	case EdgeFollow:
		return "follow"
	case EdgeIgnoreUser:
		return "ignore_user"
	case EdgeIgnoreTopic:
		return "ignore_topic"
	case EdgeIgnorePost:
		return "ignore_post"
	case EdgeBookmark:
		return "bookmark"
	}
	return fmt.Sprintf("edge(%d)", int(k))
}

// Noun names a single entry of the edge set in messages.
func (k EdgeKind) Noun() string {
	switch k {
	case EdgeFollow:
		return "followed user"
	case EdgeIgnoreUser:
		return "ignored user"
	case EdgeIgnoreTopic:
		return "ignored topic"
	case EdgeIgnorePost:
		return "ignored post"
	default:
		return "bookmark"
	}
}

// Table returns the join table backing the edge set.
func (k EdgeKind) Table() string {
	switch k {
	case EdgeFollow:
		return "follows"
	case EdgeIgnoreUser:
		return "ignored_users"
	case EdgeIgnoreTopic:
		return "ignored_topics"
	case EdgeIgnorePost:
		return "ignored_posts"
	default:
		return "bookmarks"
	}
}

// SubjectColumn is the column holding the owning user.
func (k EdgeKind) SubjectColumn() string {
	if k == EdgeFollow {
		return "follower_id"
	}
	return "user_id"
}

// ObjectColumn is the column holding the referenced entity.
func (k EdgeKind) ObjectColumn() string {
	switch k {
	case EdgeFollow:
		return "followee_id"
	case EdgeIgnoreUser:
		return "ignored_user_id"
	case EdgeIgnoreTopic:
		return "topic_id"
	default:
		return "post_id"
	}
}

// Target names the entity an edge points at.
func (k EdgeKind) Target() string {
	switch k {
	case EdgeFollow, EdgeIgnoreUser:
		return "User"
	case EdgeIgnoreTopic:
		return "Topic"
	default:
		return "Post"
	}
}

// UserTarget reports whether the edge points at another user.
func (k EdgeKind) UserTarget() bool {
	return k == EdgeFollow || k == EdgeIgnoreUser
}

// NewRow builds the GORM row for the edge subject -> object.
func (k EdgeKind) NewRow(subjectID, objectID uint) interface{} {
	switch k {
	case EdgeFollow:
		return &Follow{FollowerID: subjectID, FolloweeID: objectID}
	case EdgeIgnoreUser:
		return &IgnoredUser{UserID: subjectID, IgnoredUserID: objectID}
	case EdgeIgnoreTopic:
		return &IgnoredTopic{UserID: subjectID, TopicID: objectID}
	case EdgeIgnorePost:
		return &IgnoredPost{UserID: subjectID, PostID: objectID}
	default:
		return &Bookmark{UserID: subjectID, PostID: objectID}
	}
}

// Model returns an empty row of the edge's table for GORM statements.
func (k EdgeKind) Model() interface{} {
	return k.NewRow(0, 0)
}
