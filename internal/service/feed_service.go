package service

import (
	"context"

	"github.com/andriinero/inkspace-backend/internal/config"
	"github.com/andriinero/inkspace-backend/internal/models"
	"github.com/andriinero/inkspace-backend/internal/observability"
	"github.com/andriinero/inkspace-backend/internal/repository"

	"go.opentelemetry.io/otel/attribute"
)

// FeedInput is a post feed request. Nil fields are not applied.
type FeedInput struct {
	PageRequest
	Topic    *TopicRef
	AuthorID *uint
	// FollowListOf keeps only authors that user follows.
	FollowListOf *uint
	// IgnoreListOf drops the authors, topics and posts that user ignores.
	IgnoreListOf *uint
	// Random asks for a sample of that many posts instead of a page.
	Random *int
}

// FeedService composes post feeds from filters over the relationship graph.
type FeedService struct {
	posts    repository.PostRepository
	topics   repository.TopicRepository
	users    repository.UserRepository
	pageSize int
}

func NewFeedService(posts repository.PostRepository, topics repository.TopicRepository, users repository.UserRepository, pageSize int) *FeedService {
	return &FeedService{posts: posts, topics: topics, users: users, pageSize: pageSize}
}

func (s *FeedService) requireUser(ctx context.Context, id uint) error {
	ok, err := s.users.Exists(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return models.NewNotFoundError("User", id)
	}
	return nil
}

// topicID resolves ref. ok is false when no such topic exists.
func (s *FeedService) topicID(ctx context.Context, ref TopicRef) (id uint, ok bool, err error) {
	if ref.ID != 0 {
		topic, err := s.topics.GetByID(ctx, ref.ID)
		if models.HasCode(err, models.CodeNotFound) {
			return 0, false, nil
		}
		if err != nil {
			return 0, false, err
		}
		return topic.ID, true, nil
	}
	topic, err := s.topics.GetByName(ctx, ref.Name)
	if err != nil || topic == nil {
		return 0, false, err
	}
	return topic.ID, true, nil
}

// Feed returns post summaries matching in, newest first, or a random
// sample when in.Random is set.
func (s *FeedService) Feed(ctx context.Context, in FeedInput) (*PageResult[models.PostSummary], error) {
	span, ctx := observability.NewSpan(ctx, "feed.compose")
	defer span.End()

	res, err := s.compose(ctx, in)
	if err != nil {
		span.SetError(err)
		return nil, err
	}
	span.AddAttributes(
		attribute.Int64("feed.total", res.Total),
		attribute.Int("feed.items", len(res.Items)),
	)
	return res, nil
}

func (s *FeedService) compose(ctx context.Context, in FeedInput) (*PageResult[models.PostSummary], error) {
	q := repository.FeedQuery{AuthorID: in.AuthorID}

	if in.Random != nil {
		if *in.Random < 1 {
			return nil, models.NewFieldValidationError(models.FieldError{Field: "random", Message: "must be at least 1"})
		}
		q.Random = min(*in.Random, config.MaxPageSize)
	}

	for _, uid := range []*uint{in.FollowListOf, in.IgnoreListOf} {
		if uid != nil {
			if err := s.requireUser(ctx, *uid); err != nil {
				return nil, err
			}
		}
	}
	q.FollowListOf = in.FollowListOf
	q.IgnoreListOf = in.IgnoreListOf

	if in.Topic != nil && !in.Topic.empty() {
		id, ok, err := s.topicID(ctx, *in.Topic)
		if err != nil {
			return nil, err
		}
		if !ok {
			return &PageResult[models.PostSummary]{Items: []models.PostSummary{}, Page: ResolvePage(in.PageRequest, s.pageSize, 0)}, nil
		}
		q.TopicID = &id
	}

	mode := "page"
	if q.Random > 0 {
		mode = "random"
	}
	observability.FeedQueries.WithLabelValues(mode).Inc()

	total, err := s.posts.CountFeed(ctx, q)
	if err != nil {
		return nil, err
	}
	var page Page
	if q.Random == 0 {
		page = ResolvePage(in.PageRequest, s.pageSize, total)
		q.Limit, q.Offset = page.Limit, page.Offset
	}

	posts, err := s.posts.Feed(ctx, q)
	if err != nil {
		return nil, err
	}
	items := make([]models.PostSummary, 0, len(posts))
	for i := range posts {
		items = append(items, models.NewPostSummary(&posts[i]))
	}
	return &PageResult[models.PostSummary]{Items: items, Total: total, Page: page}, nil
}
