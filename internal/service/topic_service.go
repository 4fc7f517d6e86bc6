package service

import (
	"context"
	"strings"

	"github.com/andriinero/inkspace-backend/internal/cache"
	"github.com/andriinero/inkspace-backend/internal/models"
	"github.com/andriinero/inkspace-backend/internal/repository"
	"github.com/andriinero/inkspace-backend/internal/validation"
)

// TopicInput is the create and rename payload.
type TopicInput struct {
	Name string `json:"name" validate:"required,notblank,min=3,max=100"`
}

type TopicService struct {
	topics   repository.TopicRepository
	cascade  *CascadeService
	cache    *cache.Store
	isAdmin  AdminChecker
	pageSize int
}

func NewTopicService(topics repository.TopicRepository, cascade *CascadeService, store *cache.Store, isAdmin AdminChecker, pageSize int) *TopicService {
	return &TopicService{topics: topics, cascade: cascade, cache: store, isAdmin: isAdmin, pageSize: pageSize}
}

func (s *TopicService) List(ctx context.Context, req PageRequest) (*PageResult[models.TopicSummary], error) {
	total, err := s.topics.Count(ctx)
	if err != nil {
		return nil, err
	}
	page := ResolvePage(req, s.pageSize, total)

	var items []models.TopicSummary
	err = s.cache.Aside(ctx, cache.TopicListKey(page.Limit, page.Index), &items, cache.TopicListTTL, func() error {
		topics, err := s.topics.List(ctx, page.Limit, page.Offset)
		if err != nil {
			return err
		}
		items = make([]models.TopicSummary, 0, len(topics))
		for i := range topics {
			items = append(items, models.NewTopicSummary(&topics[i]))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &PageResult[models.TopicSummary]{Items: items, Total: total, Page: page}, nil
}

func (s *TopicService) Get(ctx context.Context, id uint) (*models.TopicSummary, error) {
	var item models.TopicSummary
	err := s.cache.Aside(ctx, cache.TopicKey(id), &item, cache.TopicTTL, func() error {
		topic, err := s.topics.GetByID(ctx, id)
		if err != nil {
			return err
		}
		item = models.NewTopicSummary(topic)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *TopicService) Create(ctx context.Context, in TopicInput) (*models.TopicSummary, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	topic := &models.Topic{Name: in.Name}
	if err := s.topics.Create(ctx, topic); err != nil {
		return nil, err
	}
	s.cache.InvalidateTopics(ctx)
	item := models.NewTopicSummary(topic)
	return &item, nil
}

// Rename is admin only.
func (s *TopicService) Rename(ctx context.Context, actorID, id uint, in TopicInput) error {
	in.Name = strings.TrimSpace(in.Name)
	if err := validation.Struct(in); err != nil {
		return err
	}
	if _, err := s.topics.GetByID(ctx, id); err != nil {
		return err
	}
	if err := requireAdmin(ctx, s.isAdmin, actorID, "Only admins can rename topics"); err != nil {
		return err
	}
	if err := s.topics.Rename(ctx, id, in.Name); err != nil {
		return err
	}
	s.cache.InvalidateTopics(ctx, id)
	s.cache.InvalidateAllPosts(ctx)
	return nil
}

// Delete is admin only and refused while posts use the topic.
func (s *TopicService) Delete(ctx context.Context, actorID, id uint) error {
	if _, err := s.topics.GetByID(ctx, id); err != nil {
		return err
	}
	if err := requireAdmin(ctx, s.isAdmin, actorID, "Only admins can delete topics"); err != nil {
		return err
	}
	return s.cascade.DeleteTopic(ctx, id)
}
