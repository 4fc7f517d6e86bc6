package service

import (
	"context"

	"github.com/andriinero/inkspace-backend/internal/cache"
	"github.com/andriinero/inkspace-backend/internal/repository"
	"github.com/andriinero/inkspace-backend/internal/storage"
)

// CascadeService runs the delete cascades and the cleanup that follows a
// commit: blob removal and cache invalidation.
type CascadeService struct {
	repo  repository.CascadeRepository
	blobs storage.BlobStore
	cache *cache.Store
}

func NewCascadeService(repo repository.CascadeRepository, blobs storage.BlobStore, store *cache.Store) *CascadeService {
	return &CascadeService{repo: repo, blobs: blobs, cache: store}
}

func (s *CascadeService) DeletePost(ctx context.Context, postID uint) error {
	res, err := s.repo.DeletePost(ctx, postID)
	if err != nil {
		return err
	}
	s.cache.InvalidatePosts(ctx, res.PostIDs...)
	deleteImageBlobs(ctx, s.blobs, res.Images...)
	return nil
}

func (s *CascadeService) DeleteUser(ctx context.Context, userID uint) error {
	res, err := s.repo.DeleteUser(ctx, userID)
	if err != nil {
		return err
	}
	s.cache.InvalidatePosts(ctx, res.PostIDs...)
	s.cache.InvalidatePosts(ctx, res.CommentedPostIDs...)
	s.cache.InvalidateAuthors(ctx)
	deleteImageBlobs(ctx, s.blobs, res.Images...)
	return nil
}

func (s *CascadeService) DeleteTopic(ctx context.Context, topicID uint) error {
	if err := s.repo.DeleteTopic(ctx, topicID); err != nil {
		return err
	}
	s.cache.InvalidateTopics(ctx, topicID)
	return nil
}
