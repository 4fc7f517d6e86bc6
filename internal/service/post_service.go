package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"

	"github.com/andriinero/inkspace-backend/internal/cache"
	"github.com/andriinero/inkspace-backend/internal/models"
	"github.com/andriinero/inkspace-backend/internal/repository"
	"github.com/andriinero/inkspace-backend/internal/storage"
	"github.com/andriinero/inkspace-backend/internal/validation"
)

// TopicRef names a topic by id or by name. In JSON a number is an id and a
// string is a name.
type TopicRef struct {
	ID   uint
	Name string
}

func (r *TopicRef) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		return json.Unmarshal(b, &r.Name)
	}
	var id uint
	if err := json.Unmarshal(b, &id); err != nil {
		return errors.New("topic must be an id or a name")
	}
	r.ID = id
	return nil
}

// ParseTopicRef reads a query value: digits are an id, anything else a name.
func ParseTopicRef(s string) TopicRef {
	s = strings.TrimSpace(s)
	if id, err := strconv.ParseUint(s, 10, 64); err == nil && id > 0 {
		return TopicRef{ID: uint(id)}
	}
	return TopicRef{Name: s}
}

func (r TopicRef) empty() bool { return r.ID == 0 && strings.TrimSpace(r.Name) == "" }

// CreatePostInput is the new post payload.
type CreatePostInput struct {
	Title            string    `json:"title" validate:"required,notblank,min=3,max=100"`
	Body             string    `json:"body" validate:"required,notblank,min=100,max=10000"`
	Topic            *TopicRef `json:"topic" validate:"required"`
	ThumbnailImageID *uint     `json:"thumbnail_image_id"`
}

// UpdatePostInput is a partial post update. Absent fields are unchanged.
type UpdatePostInput struct {
	Title            *string   `json:"title" validate:"omitnil,notblank,min=3,max=100"`
	Body             *string   `json:"body" validate:"omitnil,notblank,min=100,max=10000"`
	Topic            *TopicRef `json:"topic"`
	ThumbnailImageID *uint     `json:"thumbnail_image_id"`
}

type PostService struct {
	posts   repository.PostRepository
	topics  repository.TopicRepository
	images  repository.ImageRepository
	cascade *CascadeService
	blobs   storage.BlobStore
	cache   *cache.Store
	isAdmin AdminChecker
}

func NewPostService(
	posts repository.PostRepository,
	topics repository.TopicRepository,
	images repository.ImageRepository,
	cascade *CascadeService,
	blobs storage.BlobStore,
	store *cache.Store,
	isAdmin AdminChecker,
) *PostService {
	return &PostService{
		posts:   posts,
		topics:  topics,
		images:  images,
		cascade: cascade,
		blobs:   blobs,
		cache:   store,
		isAdmin: isAdmin,
	}
}

func validateTopicName(name string) error {
	return validation.Struct(struct {
		Topic string `json:"topic" validate:"min=3,max=100"`
	}{name})
}

// resolveTopic looks a topic up by id, which must exist, or finds or
// creates it by name.
func (s *PostService) resolveTopic(ctx context.Context, ref TopicRef) (*models.Topic, error) {
	if ref.ID != 0 {
		topic, err := s.topics.GetByID(ctx, ref.ID)
		if models.HasCode(err, models.CodeNotFound) {
			return nil, models.NewValidationError("Topic doesn't exist").WithReason(models.ReasonInvalidTopic)
		}
		return topic, err
	}
	topic, err := s.topics.FindOrCreate(ctx, strings.TrimSpace(ref.Name))
	if err != nil {
		return nil, err
	}
	s.cache.InvalidateTopics(ctx)
	return topic, nil
}

// checkThumbnail admits imageID as the thumbnail of postID (zero for a new
// post). An image belongs to one entity at a time.
func (s *PostService) checkThumbnail(ctx context.Context, ownerID, postID, imageID uint) error {
	img, err := s.images.GetByID(ctx, imageID)
	if err != nil {
		return err
	}
	if img.OwnerID != ownerID {
		return models.NewForbiddenError("Thumbnail must be an image you uploaded")
	}
	return checkImageFree(ctx, s.images, imageID, 0, postID)
}

// Create stores a new post by authorID.
func (s *PostService) Create(ctx context.Context, authorID uint, in CreatePostInput) (*models.PostDetail, error) {
	errs := []error{validation.Struct(in)}
	if in.Topic != nil && in.Topic.ID == 0 {
		if in.Topic.empty() {
			errs = append(errs, models.NewFieldValidationError(models.FieldError{Field: "topic", Message: "is required"}))
		} else {
			errs = append(errs, validateTopicName(strings.TrimSpace(in.Topic.Name)))
		}
	}
	if err := validation.Merge(errs...); err != nil {
		return nil, err
	}

	if in.ThumbnailImageID != nil {
		if err := s.checkThumbnail(ctx, authorID, 0, *in.ThumbnailImageID); err != nil {
			return nil, err
		}
	}
	topic, err := s.resolveTopic(ctx, *in.Topic)
	if err != nil {
		return nil, err
	}

	post := &models.Post{
		UserID:           authorID,
		Title:            strings.TrimSpace(in.Title),
		Body:             in.Body,
		TopicID:          topic.ID,
		ThumbnailImageID: in.ThumbnailImageID,
	}
	post.Date = nowUTC()
	if err := s.posts.Create(ctx, post); err != nil {
		return nil, err
	}
	return s.Get(ctx, post.ID)
}

// Get returns the full post with comments newest first.
func (s *PostService) Get(ctx context.Context, id uint) (*models.PostDetail, error) {
	var detail models.PostDetail
	err := s.cache.Aside(ctx, cache.PostKey(id), &detail, cache.PostTTL, func() error {
		post, err := s.posts.GetDetail(ctx, id)
		if err != nil {
			return err
		}
		detail = models.NewPostDetail(post)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &detail, nil
}

// Update applies a partial edit. Only the author or an admin may edit; a
// replaced thumbnail is deleted.
func (s *PostService) Update(ctx context.Context, editorID, postID uint, in UpdatePostInput) (*models.PostDetail, error) {
	errs := []error{validation.Struct(in)}
	if in.Topic != nil && in.Topic.ID == 0 {
		errs = append(errs, validateTopicName(strings.TrimSpace(in.Topic.Name)))
	}
	if err := validation.Merge(errs...); err != nil {
		return nil, err
	}

	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if err := authorizeOwner(ctx, s.isAdmin, editorID, post.UserID, "You can only edit your own posts"); err != nil {
		return nil, err
	}

	patch := repository.PostPatch{Body: in.Body, ThumbnailImageID: in.ThumbnailImageID}
	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		patch.Title = &title
	}
	if in.ThumbnailImageID != nil {
		if err := s.checkThumbnail(ctx, post.UserID, postID, *in.ThumbnailImageID); err != nil {
			return nil, err
		}
	}
	if in.Topic != nil {
		topic, err := s.resolveTopic(ctx, *in.Topic)
		if err != nil {
			return nil, err
		}
		patch.TopicID = &topic.ID
	}

	replaced, err := s.posts.Update(ctx, postID, patch)
	if err != nil {
		return nil, err
	}
	s.cache.InvalidatePosts(ctx, postID)
	if replaced != nil {
		deleteImageBlobs(ctx, s.blobs, *replaced)
	}
	return s.Get(ctx, postID)
}

// Delete removes the post with its comments, bookmarks, ignore entries and
// thumbnail.
func (s *PostService) Delete(ctx context.Context, editorID, postID uint) error {
	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return err
	}
	if err := authorizeOwner(ctx, s.isAdmin, editorID, post.UserID, "You can only delete your own posts"); err != nil {
		return err
	}
	return s.cascade.DeletePost(ctx, postID)
}

// Like adds one like and returns the new count. Likes are not tracked per
// user, so every call counts.
func (s *PostService) Like(ctx context.Context, postID uint) (int64, error) {
	n, err := s.posts.IncrementLike(ctx, postID)
	if err != nil {
		return 0, err
	}
	s.cache.InvalidatePosts(ctx, postID)
	return n, nil
}

func (s *PostService) Likes(ctx context.Context, postID uint) (int64, error) {
	return s.posts.LikeCount(ctx, postID)
}
