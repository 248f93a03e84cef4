package store

import (
	"context"
	"errors"
	"fmt"

	"agora/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrEmailTaken is returned when registration hits the unique email index.
var ErrEmailTaken = errors.New("email already registered")

func (s *Store) CreateUser(ctx context.Context, email, name, passwordHash string) (models.User, error) {
	user := models.User{
		ID:       uuid.NewString(),
		Email:    email,
		Name:     name,
		Password: passwordHash,
		Role:     models.RoleUser,
	}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return models.User{}, ErrEmailTaken
		}
		return models.User{}, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

func (s *Store) GetUser(ctx context.Context, id string) (models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.User{}, ErrNotFound
		}
		return models.User{}, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "email = ?", email).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.User{}, ErrNotFound
		}
		return models.User{}, fmt.Errorf("get user by email: %w", err)
	}
	return user, nil
}
