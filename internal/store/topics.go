package store

import (
	"context"
	"errors"
	"fmt"

	"agora/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TopicFilter narrows ListTopics. Zero value means "everything".
type TopicFilter struct {
	Query    string // substring match on the title
	Category string
}

func (s *Store) ListTopics(ctx context.Context, filter TopicFilter) ([]models.Topic, error) {
	q := s.db.WithContext(ctx).Model(&models.Topic{})
	if filter.Query != "" {
		q = q.Where("title ILIKE ?", "%"+filter.Query+"%")
	}
	if filter.Category != "" {
		q = q.Where("category = ?", filter.Category)
	}

	var topics []models.Topic
	if err := q.Order("created_at DESC").Find(&topics).Error; err != nil {
		return nil, fmt.Errorf("list topics: %w", err)
	}
	return topics, nil
}

func (s *Store) GetTopic(ctx context.Context, id string) (models.Topic, error) {
	var topic models.Topic
	if err := s.db.WithContext(ctx).First(&topic, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Topic{}, ErrNotFound
		}
		return models.Topic{}, fmt.Errorf("get topic: %w", err)
	}
	return topic, nil
}

// ListCategories returns the distinct categories in use, for the filter
// dropdown.
func (s *Store) ListCategories(ctx context.Context) ([]string, error) {
	var categories []string
	err := s.db.WithContext(ctx).Model(&models.Topic{}).
		Distinct("category").
		Order("category").
		Pluck("category", &categories).Error
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return categories, nil
}

func (s *Store) CreateTopic(ctx context.Context, category, title, description string) (models.Topic, error) {
	topic := models.Topic{
		ID:          uuid.NewString(),
		Category:    category,
		Title:       title,
		Description: description,
	}
	if err := s.db.WithContext(ctx).Create(&topic).Error; err != nil {
		return models.Topic{}, fmt.Errorf("create topic: %w", err)
	}
	return topic, nil
}

func (s *Store) UpdateTopic(ctx context.Context, id, category, title, description string) (models.Topic, error) {
	topic, err := s.GetTopic(ctx, id)
	if err != nil {
		return models.Topic{}, err
	}
	updates := map[string]interface{}{
		"category":    category,
		"title":       title,
		"description": description,
	}
	if err := s.db.WithContext(ctx).Model(&topic).Updates(updates).Error; err != nil {
		return models.Topic{}, fmt.Errorf("update topic: %w", err)
	}
	return s.GetTopic(ctx, id)
}

// DeleteTopic removes a topic together with its votes and comments in one
// transaction, so no orphaned rows can leak into later tallies.
func (s *Store) DeleteTopic(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Delete(&models.Topic{}, "id = ?", id)
		if res.Error != nil {
			return fmt.Errorf("delete topic: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		if err := tx.Delete(&models.Vote{}, "topic_id = ?", id).Error; err != nil {
			return fmt.Errorf("delete topic votes: %w", err)
		}
		if err := tx.Delete(&models.Comment{}, "topic_id = ?", id).Error; err != nil {
			return fmt.Errorf("delete topic comments: %w", err)
		}
		return nil
	})
}
