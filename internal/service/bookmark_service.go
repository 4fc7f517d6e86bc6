package service

import (
	"context"

	"github.com/andriinero/inkspace-backend/internal/models"
)

// BookmarkService is the per-user saved posts list. It shares the edge
// semantics of the relationship graph without a reverse view.
type BookmarkService struct {
	rel *RelationshipService
}

func NewBookmarkService(rel *RelationshipService) *BookmarkService {
	return &BookmarkService{rel: rel}
}

func (s *BookmarkService) Add(ctx context.Context, userID, postID uint) error {
	return s.rel.Add(ctx, models.EdgeBookmark, userID, postID)
}

func (s *BookmarkService) Remove(ctx context.Context, userID, postID uint) error {
	return s.rel.Remove(ctx, models.EdgeBookmark, userID, postID)
}

// List pages through the saved posts, most recently saved first.
func (s *BookmarkService) List(ctx context.Context, userID uint, req PageRequest) (*PageResult[models.PostSummary], error) {
	return s.rel.ListPosts(ctx, models.EdgeBookmark, userID, req)
}
