package handlers

import (
	"context"
	"errors"
	"html/template"
	"net/http"
	"time"

	"agora/internal/models"
	"agora/internal/services"
	"agora/internal/store"
	"agora/internal/utils"

	"github.com/gin-gonic/gin"
)

// TopicStore is the slice of the persistent store the topic-facing handlers
// consume. *store.Store satisfies it; tests substitute fakes.
type TopicStore interface {
	ListTopics(ctx context.Context, filter store.TopicFilter) ([]models.Topic, error)
	GetTopic(ctx context.Context, id string) (models.Topic, error)
	ListCategories(ctx context.Context) ([]string, error)
	CreateTopic(ctx context.Context, category, title, description string) (models.Topic, error)
	UpdateTopic(ctx context.Context, id, category, title, description string) (models.Topic, error)
	DeleteTopic(ctx context.Context, id string) error
}

// UserStore is what session auth needs from the persistent store.
type UserStore interface {
	CreateUser(ctx context.Context, email, name, passwordHash string) (models.User, error)
	GetUserByEmail(ctx context.Context, email string) (models.User, error)
}

// CommentView is the display form of a comment: author name resolved, content
// rendered to sanitized HTML.
type CommentView struct {
	ID        string        `json:"id"`
	Content   string        `json:"content"`
	HTML      template.HTML `json:"html"`
	Author    string        `json:"author"`
	CreatedAt time.Time     `json:"created_at"`
}

func commentViews(comments []models.Comment) []CommentView {
	views := make([]CommentView, 0, len(comments))
	for _, c := range comments {
		views = append(views, CommentView{
			ID:        c.ID,
			Content:   c.Content,
			HTML:      utils.RenderMarkdown(c.Content),
			Author:    c.User.DisplayName(),
			CreatedAt: c.CreatedAt,
		})
	}
	return views
}

// abortError maps the service failure taxonomy onto HTTP statuses. Anything
// unrecognized is a transient store failure: surfaced as retryable, never
// retried automatically.
func abortError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrAuthRequired):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrInvalidOption), errors.Is(err, services.ErrEmptyComment):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	default:
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "temporary failure, please retry"})
	}
}
