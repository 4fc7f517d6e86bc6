package repository

import (
	"context"
	"errors"

	"github.com/andriinero/inkspace-backend/internal/models"
	"github.com/andriinero/inkspace-backend/internal/observability"

	"gorm.io/gorm"
)

// TopicRepository defines persistence operations for topics.
type TopicRepository interface {
	Create(ctx context.Context, topic *models.Topic) error
	GetByID(ctx context.Context, id uint) (*models.Topic, error)
	GetByName(ctx context.Context, name string) (*models.Topic, error)
	FindOrCreate(ctx context.Context, name string) (*models.Topic, error)
	ListByIDs(ctx context.Context, ids []uint) ([]models.Topic, error)
	Rename(ctx context.Context, id uint, name string) error
	List(ctx context.Context, limit, offset int) ([]models.Topic, error)
	Count(ctx context.Context) (int64, error)
}

type topicRepository struct {
	db  *gorm.DB
	log *observability.RepoLogger
}

// NewTopicRepository creates a new TopicRepository.
func NewTopicRepository(db *gorm.DB) TopicRepository {
	return &topicRepository{db: db, log: observability.NewRepoLogger("topics")}
}

func duplicateTopic() error {
	return models.NewConflictError(models.ReasonDuplicateTopic, "Topic already exists")
}

func (r *topicRepository) Create(ctx context.Context, topic *models.Topic) error {
	if err := r.db.WithContext(ctx).Create(topic).Error; err != nil {
		if isUniqueConstraintError(err) {
			return duplicateTopic()
		}
		return dbError(err)
	}
	r.log.LogCreate(ctx, map[string]any{"id": topic.ID, "name": topic.Name})
	return nil
}

func (r *topicRepository) GetByID(ctx context.Context, id uint) (*models.Topic, error) {
	var topic models.Topic
	if err := r.db.WithContext(ctx).First(&topic, id).Error; err != nil {
		return nil, notFoundOr(err, "Topic", id)
	}
	return &topic, nil
}

// GetByName returns nil, nil when no topic has the name.
func (r *topicRepository) GetByName(ctx context.Context, name string) (*models.Topic, error) {
	var topic models.Topic
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&topic).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, dbError(err)
	}
	return &topic, nil
}

// FindOrCreate returns the topic named name, creating it when absent. A
// concurrent insert of the same name resolves to the winner's row.
func (r *topicRepository) FindOrCreate(ctx context.Context, name string) (*models.Topic, error) {
	var topic models.Topic
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Where(models.Topic{Name: name}).FirstOrCreate(&topic).Error
	})
	if err == nil {
		return &topic, nil
	}
	if !isUniqueConstraintError(err) {
		return nil, dbError(err)
	}

	existing, lookupErr := r.GetByName(ctx, name)
	if lookupErr != nil {
		return nil, lookupErr
	}
	if existing == nil {
		return nil, dbError(err)
	}
	return existing, nil
}

// ListByIDs returns the topics in the order of ids.
func (r *topicRepository) ListByIDs(ctx context.Context, ids []uint) ([]models.Topic, error) {
	if len(ids) == 0 {
		return []models.Topic{}, nil
	}
	var topics []models.Topic
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&topics).Error; err != nil {
		return nil, dbError(err)
	}
	return orderByIDs(ids, topics, func(t models.Topic) uint { return t.ID }), nil
}

func (r *topicRepository) Rename(ctx context.Context, id uint, name string) error {
	res := r.db.WithContext(ctx).Model(&models.Topic{}).Where("id = ?", id).Update("name", name)
	if res.Error != nil {
		if isUniqueConstraintError(res.Error) {
			return duplicateTopic()
		}
		return dbError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Topic", id)
	}
	r.log.LogUpdate(ctx, map[string]any{"id": id, "name": name})
	return nil
}

func (r *topicRepository) List(ctx context.Context, limit, offset int) ([]models.Topic, error) {
	var topics []models.Topic
	if err := page(r.db.WithContext(ctx).Order("name ASC, id ASC"), limit, offset).Find(&topics).Error; err != nil {
		return nil, dbError(err)
	}
	return topics, nil
}

func (r *topicRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&models.Topic{}).Count(&n).Error; err != nil {
		return 0, dbError(err)
	}
	return n, nil
}
