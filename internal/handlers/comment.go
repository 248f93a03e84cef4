package handlers

import (
	"net/http"

	"agora/internal/middleware"
	"agora/internal/models"
	"agora/internal/services"

	"github.com/gin-gonic/gin"
)

type CommentHandler struct {
	topics TopicStore
	feed   *services.CommentFeed
}

func NewCommentHandler(topics TopicStore, feed *services.CommentFeed) *CommentHandler {
	return &CommentHandler{topics: topics, feed: feed}
}

// List handles GET /api/topics/:id/comments. This is the lazy bulk-load
// path: the first call fetches history, later calls are served from the
// feed until a change notification refreshes it.
func (h *CommentHandler) List(c *gin.Context) {
	topicID := c.Param("id")

	if _, err := h.topics.GetTopic(c.Request.Context(), topicID); err != nil {
		abortError(c, err)
		return
	}

	comments, err := h.feed.Get(c.Request.Context(), topicID)
	if err != nil {
		abortError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"comments": commentViews(comments)})
}

type createCommentRequest struct {
	Content string `json:"content"`
}

// Create handles POST /api/topics/:id/comments.
func (h *CommentHandler) Create(c *gin.Context) {
	user := middleware.CurrentUser(c)
	topicID := c.Param("id")

	if _, err := h.topics.GetTopic(c.Request.Context(), topicID); err != nil {
		abortError(c, err)
		return
	}

	var req createCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	comment, err := h.feed.Add(c.Request.Context(), user, topicID, req.Content)
	if err != nil {
		abortError(c, err)
		return
	}

	views := commentViews([]models.Comment{comment})
	c.JSON(http.StatusCreated, gin.H{"comment": views[0]})
}
