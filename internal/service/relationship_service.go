package service

import (
	"context"
	"fmt"

	"github.com/andriinero/inkspace-backend/internal/models"
	"github.com/andriinero/inkspace-backend/internal/repository"
)

// RelationshipService manages follow and ignore edges and the bookmark
// list, all of which point from the calling user at another entity.
type RelationshipService struct {
	edges    repository.RelationshipRepository
	users    repository.UserRepository
	topics   repository.TopicRepository
	posts    repository.PostRepository
	pageSize int
}

func NewRelationshipService(
	edges repository.RelationshipRepository,
	users repository.UserRepository,
	topics repository.TopicRepository,
	posts repository.PostRepository,
	pageSize int,
) *RelationshipService {
	return &RelationshipService{edges: edges, users: users, topics: topics, posts: posts, pageSize: pageSize}
}

func (s *RelationshipService) targetExists(ctx context.Context, kind models.EdgeKind, id uint) (bool, error) {
	switch kind.Target() {
	case "User":
		return s.users.Exists(ctx, id)
	case "Topic":
		_, err := s.topics.GetByID(ctx, id)
		if models.HasCode(err, models.CodeNotFound) {
			return false, nil
		}
		return err == nil, err
	default:
		return s.posts.Exists(ctx, id)
	}
}

// Add creates the edge subject -> object.
func (s *RelationshipService) Add(ctx context.Context, kind models.EdgeKind, subjectID, objectID uint) error {
	if objectID == 0 {
		return models.NewFieldValidationError(models.FieldError{Field: "id", Message: "is required"})
	}
	if kind.UserTarget() && subjectID == objectID {
		return models.NewValidationError(fmt.Sprintf("You can't add yourself as a %s", kind.Noun())).
			WithReason(models.ReasonInvalidOperation)
	}
	ok, err := s.targetExists(ctx, kind, objectID)
	if err != nil {
		return err
	}
	if !ok {
		return models.NewNotFoundError(kind.Target(), objectID).WithReason(models.ReasonTargetNotFound)
	}
	return s.edges.Add(ctx, kind, subjectID, objectID)
}

// Remove deletes the edge subject -> object.
func (s *RelationshipService) Remove(ctx context.Context, kind models.EdgeKind, subjectID, objectID uint) error {
	return s.edges.Remove(ctx, kind, subjectID, objectID)
}

func (s *RelationshipService) objectPage(ctx context.Context, kind models.EdgeKind, subjectID uint, req PageRequest) ([]uint, int64, Page, error) {
	total, err := s.edges.CountObjects(ctx, kind, subjectID)
	if err != nil {
		return nil, 0, Page{}, err
	}
	page := ResolvePage(req, s.pageSize, total)
	ids, err := s.edges.ListObjectIDs(ctx, kind, subjectID, page.Limit, page.Offset)
	if err != nil {
		return nil, 0, Page{}, err
	}
	return ids, total, page, nil
}

func (s *RelationshipService) authors(ctx context.Context, ids []uint) ([]models.AuthorSummary, error) {
	users, err := s.users.ListByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make([]models.AuthorSummary, 0, len(users))
	for i := range users {
		out = append(out, models.NewAuthorSummary(&users[i]))
	}
	return out, nil
}

// ListUsers lists the users subjectID follows or ignores.
func (s *RelationshipService) ListUsers(ctx context.Context, kind models.EdgeKind, subjectID uint, req PageRequest) (*PageResult[models.AuthorSummary], error) {
	if !kind.UserTarget() {
		return nil, models.NewInternalError(fmt.Errorf("%s does not point at users", kind))
	}
	ids, total, page, err := s.objectPage(ctx, kind, subjectID, req)
	if err != nil {
		return nil, err
	}
	items, err := s.authors(ctx, ids)
	if err != nil {
		return nil, err
	}
	return &PageResult[models.AuthorSummary]{Items: items, Total: total, Page: page}, nil
}

// ListFollowers lists the users following userID.
func (s *RelationshipService) ListFollowers(ctx context.Context, userID uint, req PageRequest) (*PageResult[models.AuthorSummary], error) {
	total, err := s.edges.CountSubjects(ctx, models.EdgeFollow, userID)
	if err != nil {
		return nil, err
	}
	page := ResolvePage(req, s.pageSize, total)
	ids, err := s.edges.ListSubjectIDs(ctx, models.EdgeFollow, userID, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	items, err := s.authors(ctx, ids)
	if err != nil {
		return nil, err
	}
	return &PageResult[models.AuthorSummary]{Items: items, Total: total, Page: page}, nil
}

// ListTopics lists the topics subjectID ignores.
func (s *RelationshipService) ListTopics(ctx context.Context, subjectID uint, req PageRequest) (*PageResult[models.TopicSummary], error) {
	ids, total, page, err := s.objectPage(ctx, models.EdgeIgnoreTopic, subjectID, req)
	if err != nil {
		return nil, err
	}
	topics, err := s.topics.ListByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	items := make([]models.TopicSummary, 0, len(topics))
	for i := range topics {
		items = append(items, models.NewTopicSummary(&topics[i]))
	}
	return &PageResult[models.TopicSummary]{Items: items, Total: total, Page: page}, nil
}

// ListPosts lists the posts subjectID ignores or bookmarked as summaries.
func (s *RelationshipService) ListPosts(ctx context.Context, kind models.EdgeKind, subjectID uint, req PageRequest) (*PageResult[models.PostSummary], error) {
	if kind.Target() != "Post" {
		return nil, models.NewInternalError(fmt.Errorf("%s does not point at posts", kind))
	}
	ids, total, page, err := s.objectPage(ctx, kind, subjectID, req)
	if err != nil {
		return nil, err
	}
	posts, err := s.posts.ListByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	items := make([]models.PostSummary, 0, len(posts))
	for i := range posts {
		items = append(items, models.NewPostSummary(&posts[i]))
	}
	return &PageResult[models.PostSummary]{Items: items, Total: total, Page: page}, nil
}
