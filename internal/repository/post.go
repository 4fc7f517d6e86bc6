package repository

import (
	"context"

	"github.com/andriinero/inkspace-backend/internal/models"
	"github.com/andriinero/inkspace-backend/internal/observability"

	"gorm.io/gorm"
)

// FeedQuery selects posts for a feed. Nil filters are not applied.
type FeedQuery struct {
	TopicID  *uint
	AuthorID *uint
	// FollowListOf keeps only authors followed by this user.
	FollowListOf *uint
	// IgnoreListOf drops authors, topics and posts ignored by this user.
	IgnoreListOf *uint

	// Limit 0 means no limit.
	Limit  int
	Offset int
	// Random > 0 returns that many posts sampled from the matching set and
	// ignores Limit and Offset.
	Random int
}

// PostPatch lists the fields of a partial post update.
type PostPatch struct {
	Title            *string
	Body             *string
	TopicID          *uint
	ThumbnailImageID *uint
}

// PostRepository defines the interface for post data operations
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id uint) (*models.Post, error)
	GetDetail(ctx context.Context, id uint) (*models.Post, error)
	Exists(ctx context.Context, id uint) (bool, error)
	ListByIDs(ctx context.Context, ids []uint) ([]models.Post, error)
	Update(ctx context.Context, id uint, patch PostPatch) (*models.Image, error)
	IncrementLike(ctx context.Context, id uint) (int64, error)
	LikeCount(ctx context.Context, id uint) (int64, error)
	Feed(ctx context.Context, q FeedQuery) ([]models.Post, error)
	CountFeed(ctx context.Context, q FeedQuery) (int64, error)
}

// postRepository implements PostRepository
type postRepository struct {
	db  *gorm.DB
	log *observability.RepoLogger
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db, log: observability.NewRepoLogger("posts")}
}

// summaryColumns omits the body, which summaries never carry.
var summaryColumns = []string{
	"posts.id", "posts.user_id", "posts.title", "posts.topic_id",
	"posts.like_count", "posts.thumbnail_image_id", "posts.date", "posts.updated_at",
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	if err := r.db.WithContext(ctx).Omit("Author", "Topic", "Comments").Create(post).Error; err != nil {
		r.log.LogError(ctx, err, "create")
		return dbError(err)
	}
	r.log.LogCreate(ctx, map[string]any{"id": post.ID, "user_id": post.UserID})
	return nil
}

func (r *postRepository) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	if err := r.db.WithContext(ctx).Preload("Author").Preload("Topic").First(&post, id).Error; err != nil {
		return nil, notFoundOr(err, "Post", id)
	}
	return &post, nil
}

// GetDetail loads the post with its author, topic and comments, newest
// comment first.
func (r *postRepository) GetDetail(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	err := r.db.WithContext(ctx).
		Preload("Author").
		Preload("Topic").
		Preload("Comments", func(db *gorm.DB) *gorm.DB {
			return db.Order("comments.date DESC, comments.id DESC")
		}).
		Preload("Comments.Author").
		First(&post, id).Error
	if err != nil {
		return nil, notFoundOr(err, "Post", id)
	}
	return &post, nil
}

func (r *postRepository) Exists(ctx context.Context, id uint) (bool, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&models.Post{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return false, dbError(err)
	}
	return n > 0, nil
}

// ListByIDs returns post summaries in the order of ids.
func (r *postRepository) ListByIDs(ctx context.Context, ids []uint) ([]models.Post, error) {
	if len(ids) == 0 {
		return []models.Post{}, nil
	}
	var posts []models.Post
	err := r.db.WithContext(ctx).
		Select(summaryColumns).
		Preload("Author").
		Preload("Topic").
		Where("posts.id IN ?", ids).
		Find(&posts).Error
	if err != nil {
		return nil, dbError(err)
	}
	return orderByIDs(ids, posts, func(p models.Post) uint { return p.ID }), nil
}

// Update applies the patch. When the thumbnail is replaced the old image row
// is deleted in the same transaction and returned for blob cleanup.
func (r *postRepository) Update(ctx context.Context, id uint, patch PostPatch) (*models.Image, error) {
	var replaced *models.Image
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var post models.Post
		if err := tx.Select("id", "thumbnail_image_id").First(&post, id).Error; err != nil {
			return notFoundOr(err, "Post", id)
		}

		updates := map[string]any{}
		if patch.Title != nil {
			updates["title"] = *patch.Title
		}
		if patch.Body != nil {
			updates["body"] = *patch.Body
		}
		if patch.TopicID != nil {
			updates["topic_id"] = *patch.TopicID
		}
		if patch.ThumbnailImageID != nil {
			updates["thumbnail_image_id"] = *patch.ThumbnailImageID
		}
		if len(updates) == 0 {
			return nil
		}
		if err := tx.Model(&models.Post{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			return err
		}

		old := post.ThumbnailImageID
		if patch.ThumbnailImageID != nil && old != nil && *old != *patch.ThumbnailImageID {
			img, err := deleteImageRow(tx, *old)
			replaced = img
			return err
		}
		return nil
	})
	if err != nil {
		return nil, dbError(err)
	}
	r.log.LogUpdate(ctx, map[string]any{"id": id})
	return replaced, nil
}

// IncrementLike adds one like in a single atomic UPDATE and returns the new
// count.
func (r *postRepository) IncrementLike(ctx context.Context, id uint) (int64, error) {
	res := r.db.WithContext(ctx).Model(&models.Post{}).Where("id = ?", id).
		UpdateColumn("like_count", gorm.Expr("like_count + ?", 1))
	if res.Error != nil {
		return 0, dbError(res.Error)
	}
	if res.RowsAffected == 0 {
		return 0, models.NewNotFoundError("Post", id)
	}
	return r.LikeCount(ctx, id)
}

func (r *postRepository) LikeCount(ctx context.Context, id uint) (int64, error) {
	var post models.Post
	if err := r.db.WithContext(ctx).Select("id", "like_count").First(&post, id).Error; err != nil {
		return 0, notFoundOr(err, "Post", id)
	}
	return post.LikeCount, nil
}

// filter applies the equality and set filters of q.
func (r *postRepository) filter(db *gorm.DB, q FeedQuery) *gorm.DB {
	if q.TopicID != nil {
		db = db.Where("posts.topic_id = ?", *q.TopicID)
	}
	if q.AuthorID != nil {
		db = db.Where("posts.user_id = ?", *q.AuthorID)
	}
	if q.FollowListOf != nil {
		followed := r.db.Model(&models.Follow{}).Select("followee_id").Where("follower_id = ?", *q.FollowListOf)
		db = db.Where("posts.user_id IN (?)", followed)
	}
	if q.IgnoreListOf != nil {
		uid := *q.IgnoreListOf
		db = db.
			Where("posts.user_id NOT IN (?)",
				r.db.Model(&models.IgnoredUser{}).Select("ignored_user_id").Where("user_id = ?", uid)).
			Where("posts.topic_id NOT IN (?)",
				r.db.Model(&models.IgnoredTopic{}).Select("topic_id").Where("user_id = ?", uid)).
			Where("posts.id NOT IN (?)",
				r.db.Model(&models.IgnoredPost{}).Select("post_id").Where("user_id = ?", uid))
	}
	return db
}

// Feed returns post summaries matching q, newest first, or a random sample
// when q.Random is set.
func (r *postRepository) Feed(ctx context.Context, q FeedQuery) ([]models.Post, error) {
	defer observability.TrackQuery("feed", "posts")()

	db := r.filter(r.db.WithContext(ctx).Model(&models.Post{}).Select(summaryColumns), q).
		Preload("Author").
		Preload("Topic")

	if q.Random > 0 {
		db = db.Order("RANDOM()").Limit(q.Random)
	} else {
		db = page(db.Order("posts.date DESC, posts.id DESC"), q.Limit, q.Offset)
	}

	var posts []models.Post
	if err := db.Find(&posts).Error; err != nil {
		return nil, dbError(err)
	}
	return posts, nil
}

// CountFeed counts the posts matching q's filters.
func (r *postRepository) CountFeed(ctx context.Context, q FeedQuery) (int64, error) {
	var n int64
	if err := r.filter(r.db.WithContext(ctx).Model(&models.Post{}), q).Count(&n).Error; err != nil {
		return 0, dbError(err)
	}
	return n, nil
}
