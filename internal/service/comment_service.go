package service

import (
	"context"

	"github.com/andriinero/inkspace-backend/internal/cache"
	"github.com/andriinero/inkspace-backend/internal/models"
	"github.com/andriinero/inkspace-backend/internal/repository"
	"github.com/andriinero/inkspace-backend/internal/validation"
)

// CommentInput is the create and edit payload.
type CommentInput struct {
	Body string `json:"body" validate:"required,notblank,min=10,max=280"`
}

type CommentService struct {
	comments repository.CommentRepository
	posts    repository.PostRepository
	cache    *cache.Store
	isAdmin  AdminChecker
	pageSize int
}

func NewCommentService(
	comments repository.CommentRepository,
	posts repository.PostRepository,
	store *cache.Store,
	isAdmin AdminChecker,
	pageSize int,
) *CommentService {
	return &CommentService{comments: comments, posts: posts, cache: store, isAdmin: isAdmin, pageSize: pageSize}
}

func (s *CommentService) requirePost(ctx context.Context, postID uint) error {
	ok, err := s.posts.Exists(ctx, postID)
	if err != nil {
		return err
	}
	if !ok {
		return models.NewNotFoundError("Post", postID)
	}
	return nil
}

func (s *CommentService) Create(ctx context.Context, authorID, postID uint, in CommentInput) (*models.CommentView, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	if err := s.requirePost(ctx, postID); err != nil {
		return nil, err
	}

	comment := &models.Comment{UserID: authorID, PostID: postID, Body: in.Body, Date: nowUTC()}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, err
	}
	s.cache.InvalidatePosts(ctx, postID)
	return s.Get(ctx, comment.ID)
}

func (s *CommentService) Get(ctx context.Context, id uint) (*models.CommentView, error) {
	comment, err := s.comments.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	v := models.NewCommentView(comment)
	return &v, nil
}

// ListByPost pages through a post's comments, newest first.
func (s *CommentService) ListByPost(ctx context.Context, postID uint, req PageRequest) (*PageResult[models.CommentView], error) {
	if err := s.requirePost(ctx, postID); err != nil {
		return nil, err
	}
	total, err := s.comments.CountByPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	page := ResolvePage(req, s.pageSize, total)
	comments, err := s.comments.ListByPost(ctx, postID, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	items := make([]models.CommentView, 0, len(comments))
	for i := range comments {
		items = append(items, models.NewCommentView(&comments[i]))
	}
	return &PageResult[models.CommentView]{Items: items, Total: total, Page: page}, nil
}

// Update rewrites the body and stamps the edit date.
func (s *CommentService) Update(ctx context.Context, editorID, id uint, in CommentInput) (*models.CommentView, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	comment, err := s.comments.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authorizeOwner(ctx, s.isAdmin, editorID, comment.UserID, "You can only edit your own comments"); err != nil {
		return nil, err
	}
	if err := s.comments.UpdateBody(ctx, id, in.Body, nowUTC()); err != nil {
		return nil, err
	}
	s.cache.InvalidatePosts(ctx, comment.PostID)
	return s.Get(ctx, id)
}

func (s *CommentService) Delete(ctx context.Context, editorID, id uint) error {
	comment, err := s.comments.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := authorizeOwner(ctx, s.isAdmin, editorID, comment.UserID, "You can only delete your own comments"); err != nil {
		return err
	}
	if err := s.comments.Delete(ctx, id); err != nil {
		return err
	}
	s.cache.InvalidatePosts(ctx, comment.PostID)
	return nil
}
