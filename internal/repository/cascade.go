package repository

import (
	"context"

	"github.com/andriinero/inkspace-backend/internal/models"
	"github.com/andriinero/inkspace-backend/internal/observability"

	"gorm.io/gorm"
)

// CascadeResult reports what a delete cascade removed.
type CascadeResult struct {
	PostIDs  []uint
	TopicIDs []uint

	// CommentedPostIDs are surviving posts that lost comments.
	CommentedPostIDs []uint

	// Images are the metadata rows removed with the entity. Their blobs are
	// deleted by the caller once the transaction has committed.
	Images []models.Image
}

// CascadeRepository runs the ordered delete procedures that leave no
// dangling reference behind. Each runs in one transaction.
type CascadeRepository interface {
	DeletePost(ctx context.Context, postID uint) (*CascadeResult, error)
	DeleteUser(ctx context.Context, userID uint) (*CascadeResult, error)
	DeleteTopic(ctx context.Context, topicID uint) error
}

type cascadeRepository struct {
	db *gorm.DB
}

// NewCascadeRepository creates a new CascadeRepository.
func NewCascadeRepository(db *gorm.DB) CascadeRepository {
	return &cascadeRepository{db: db}
}

type cascadeTx struct {
	tx   *gorm.DB
	root string
}

func (c cascadeTx) delete(table string, model any, query string, args ...any) error {
	res := c.tx.Where(query, args...).Delete(model)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		observability.CascadeRowsDeleted.WithLabelValues(c.root, table).Add(float64(res.RowsAffected))
	}
	return nil
}

// deletePosts removes comments, bookmark and ignored-post rows, the posts
// and their thumbnail image rows.
func (c cascadeTx) deletePosts(postIDs []uint, res *CascadeResult) error {
	if len(postIDs) == 0 {
		return nil
	}

	var thumbIDs []uint
	if err := c.tx.Model(&models.Post{}).
		Where("id IN ? AND thumbnail_image_id IS NOT NULL", postIDs).
		Pluck("thumbnail_image_id", &thumbIDs).Error; err != nil {
		return err
	}

	steps := []struct {
		table string
		model any
	}{
		{"comments", &models.Comment{}},
		{"bookmarks", &models.Bookmark{}},
		{"ignored_posts", &models.IgnoredPost{}},
	}
	for _, s := range steps {
		if err := c.delete(s.table, s.model, "post_id IN ?", postIDs); err != nil {
			return err
		}
	}
	if err := c.delete("posts", &models.Post{}, "id IN ?", postIDs); err != nil {
		return err
	}
	res.PostIDs = append(res.PostIDs, postIDs...)

	return c.deleteImages(thumbIDs, res)
}

// deleteImages removes the image rows among ids that nothing references any
// more. Shared images stay with their remaining owner entity.
func (c cascadeTx) deleteImages(ids []uint, res *CascadeResult) error {
	refs, err := referencedImages(c.tx, ids)
	if err != nil {
		return err
	}
	var free []uint
	for _, id := range ids {
		if !refs[id] {
			free = append(free, id)
		}
	}
	ids = free
	if len(ids) == 0 {
		return nil
	}
	var imgs []models.Image
	if err := c.tx.Where("id IN ?", ids).Find(&imgs).Error; err != nil {
		return err
	}
	if err := c.delete("images", &models.Image{}, "id IN ?", ids); err != nil {
		return err
	}
	res.Images = append(res.Images, imgs...)
	return nil
}

func (r *cascadeRepository) DeletePost(ctx context.Context, postID uint) (*CascadeResult, error) {
	ctx, span := observability.GetTraceLayer().TraceRepositoryMethod(ctx, "DeletePost", "posts")
	res := &CascadeResult{}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var post models.Post
		if err := tx.Select("id", "topic_id").First(&post, postID).Error; err != nil {
			return notFoundOr(err, "Post", postID)
		}
		res.TopicIDs = []uint{post.TopicID}
		return cascadeTx{tx: tx, root: "post"}.deletePosts([]uint{postID}, res)
	})
	err = dbError(err)
	observability.FinishSpan(span, err)
	if err != nil {
		return nil, err
	}
	return res, nil
}

// DeleteUser removes the user's posts with their cascade, the user's
// comments, every edge from or to the user, the images the user owns, and
// finally the user.
func (r *cascadeRepository) DeleteUser(ctx context.Context, userID uint) (*CascadeResult, error) {
	ctx, span := observability.GetTraceLayer().TraceRepositoryMethod(ctx, "DeleteUser", "users")
	res := &CascadeResult{}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.First(&user, userID).Error; err != nil {
			return notFoundOr(err, "User", userID)
		}
		c := cascadeTx{tx: tx, root: "user"}

		var postIDs []uint
		if err := tx.Model(&models.Post{}).Where("user_id = ?", userID).Pluck("id", &postIDs).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Post{}).Distinct().Where("user_id = ?", userID).Pluck("topic_id", &res.TopicIDs).Error; err != nil {
			return err
		}
		if err := c.deletePosts(postIDs, res); err != nil {
			return err
		}
		if err := tx.Model(&models.Comment{}).Distinct().Where("user_id = ?", userID).Pluck("post_id", &res.CommentedPostIDs).Error; err != nil {
			return err
		}

		steps := []struct {
			table string
			model any
			query string
		}{
			{"comments", &models.Comment{}, "user_id = ?"},
			{"follows", &models.Follow{}, "follower_id = ? OR followee_id = ?"},
			{"ignored_users", &models.IgnoredUser{}, "user_id = ? OR ignored_user_id = ?"},
			{"ignored_topics", &models.IgnoredTopic{}, "user_id = ?"},
			{"ignored_posts", &models.IgnoredPost{}, "user_id = ?"},
			{"bookmarks", &models.Bookmark{}, "user_id = ?"},
		}
		for _, s := range steps {
			args := []any{userID}
			if s.table == "follows" || s.table == "ignored_users" {
				args = append(args, userID)
			}
			if err := c.delete(s.table, s.model, s.query, args...); err != nil {
				return err
			}
		}

		var imageIDs []uint
		if err := tx.Model(&models.Image{}).Where("owner_id = ?", userID).Pluck("id", &imageIDs).Error; err != nil {
			return err
		}
		if user.ProfileImageID != nil {
			imageIDs = append(imageIDs, *user.ProfileImageID)
		}
		// The user's images go with the user, so detach them wherever they
		// are still attached.
		if len(imageIDs) > 0 {
			if err := tx.Model(&models.User{}).Where("profile_image_id IN ?", imageIDs).
				Update("profile_image_id", nil).Error; err != nil {
				return err
			}
			if err := tx.Model(&models.Post{}).Where("thumbnail_image_id IN ?", imageIDs).
				Update("thumbnail_image_id", nil).Error; err != nil {
				return err
			}
		}
		if err := c.deleteImages(imageIDs, res); err != nil {
			return err
		}

		return c.delete("users", &models.User{}, "id = ?", userID)
	})
	err = dbError(err)
	observability.FinishSpan(span, err)
	if err != nil {
		return nil, err
	}
	return res, nil
}

// DeleteTopic refuses while any post references the topic and otherwise
// removes the ignored-topic rows and the topic.
func (r *cascadeRepository) DeleteTopic(ctx context.Context, topicID uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var topic models.Topic
		if err := tx.First(&topic, topicID).Error; err != nil {
			return notFoundOr(err, "Topic", topicID)
		}

		var inUse int64
		if err := tx.Model(&models.Post{}).Where("topic_id = ?", topicID).Count(&inUse).Error; err != nil {
			return err
		}
		if inUse > 0 {
			return models.NewConflictError(models.ReasonTopicInUse, "Topic is referenced by existing posts")
		}

		c := cascadeTx{tx: tx, root: "topic"}
		if err := c.delete("ignored_topics", &models.IgnoredTopic{}, "topic_id = ?", topicID); err != nil {
			return err
		}
		return c.delete("topics", &models.Topic{}, "id = ?", topicID)
	})
	return dbError(err)
}
