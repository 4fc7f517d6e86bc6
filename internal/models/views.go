package models

import "time"

// AuthorSummary is the public projection of a user embedded in other views.
type AuthorSummary struct {
	ID             uint   `json:"id"`
	Username       string `json:"username"`
	ProfileImageID *uint  `json:"profile_image_id,omitempty"`
}

// AuthorCard is the public author listing entry.
type AuthorCard struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Bio      string `json:"bio"`
}

// TopicSummary is the public projection of a topic.
type TopicSummary struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

// PostSummary is a post as shown in lists: no body, no comments.
type PostSummary struct {
	ID               uint          `json:"id"`
	Title            string        `json:"title"`
	Author           AuthorSummary `json:"author"`
	Topic            TopicSummary  `json:"topic"`
	LikeCount        int64         `json:"like_count"`
	ThumbnailImageID *uint         `json:"thumbnail_image_id,omitempty"`
	Date             time.Time     `json:"date"`
}

// CommentView is a comment with its author resolved.
type CommentView struct {
	ID       uint          `json:"id"`
	PostID   uint          `json:"post_id"`
	Author   AuthorSummary `json:"author"`
	Body     string        `json:"body"`
	Date     time.Time     `json:"date"`
	EditDate *time.Time    `json:"edit_date,omitempty"`
}

// PostDetail is a full post with author, topic and comments resolved.
type PostDetail struct {
	PostSummary
	Body     string        `json:"body"`
	Comments []CommentView `json:"comments"`
}

// Profile is what a user sees about their own account.
type Profile struct {
	ID             uint      `json:"id"`
	Username       string    `json:"username"`
	Email          string    `json:"email"`
	Role           Role      `json:"role"`
	Bio            string    `json:"bio"`
	ProfileImageID *uint     `json:"profile_image_id,omitempty"`
	SignUpDate     time.Time `json:"sign_up_date"`
}

// NewAuthorSummary projects a user.
func NewAuthorSummary(u *User) AuthorSummary {
	return AuthorSummary{ID: u.ID, Username: u.Username, ProfileImageID: u.ProfileImageID}
}

// NewAuthorCard projects a user for author listings.
func NewAuthorCard(u *User) AuthorCard {
	return AuthorCard{ID: u.ID, Username: u.Username, Bio: u.Bio}
}

// NewTopicSummary projects a topic.
func NewTopicSummary(t *Topic) TopicSummary {
	return TopicSummary{ID: t.ID, Name: t.Name}
}

// NewPostSummary projects a post whose Author and Topic are loaded.
func NewPostSummary(p *Post) PostSummary {
	return PostSummary{
		ID:               p.ID,
		Title:            p.Title,
		Author:           NewAuthorSummary(&p.Author),
		Topic:            NewTopicSummary(&p.Topic),
		LikeCount:        p.LikeCount,
		ThumbnailImageID: p.ThumbnailImageID,
		Date:             p.Date,
	}
}

// NewCommentView projects a comment whose Author is loaded.
func NewCommentView(c *Comment) CommentView {
	return CommentView{
		ID:       c.ID,
		PostID:   c.PostID,
		Author:   NewAuthorSummary(&c.Author),
		Body:     c.Body,
		Date:     c.Date,
		EditDate: c.EditDate,
	}
}

// NewPostDetail projects a post with Author, Topic and Comments.Author loaded.
func NewPostDetail(p *Post) PostDetail {
	comments := make([]CommentView, 0, len(p.Comments))
	for i := range p.Comments {
		comments = append(comments, NewCommentView(&p.Comments[i]))
	}
	return PostDetail{PostSummary: NewPostSummary(p), Body: p.Body, Comments: comments}
}

// NewProfile projects a user for their own profile page.
func NewProfile(u *User) Profile {
	return Profile{
		ID:             u.ID,
		Username:       u.Username,
		Email:          u.Email,
		Role:           u.Role,
		Bio:            u.Bio,
		ProfileImageID: u.ProfileImageID,
		SignUpDate:     u.SignUpDate,
	}
}
