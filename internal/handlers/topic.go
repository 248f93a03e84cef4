package handlers

import (
	"net/http"
	"strings"

	"agora/internal/store"

	"github.com/gin-gonic/gin"
)

type TopicHandler struct {
	topics TopicStore
}

func NewTopicHandler(topics TopicStore) *TopicHandler {
	return &TopicHandler{topics: topics}
}

// List handles GET /api/topics with optional title search (?q=) and
// category filter (?category=).
func (h *TopicHandler) List(c *gin.Context) {
	filter := store.TopicFilter{
		Query:    strings.TrimSpace(c.Query("q")),
		Category: strings.TrimSpace(c.Query("category")),
	}
	topics, err := h.topics.ListTopics(c.Request.Context(), filter)
	if err != nil {
		abortError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"topics": topics})
}

// Get handles GET /api/topics/:id.
func (h *TopicHandler) Get(c *gin.Context) {
	topic, err := h.topics.GetTopic(c.Request.Context(), c.Param("id"))
	if err != nil {
		abortError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"topic": topic})
}

// Categories handles GET /api/categories, feeding the filter dropdown.
func (h *TopicHandler) Categories(c *gin.Context) {
	categories, err := h.topics.ListCategories(c.Request.Context())
	if err != nil {
		abortError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

type topicRequest struct {
	Category    string `json:"category"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

func (r *topicRequest) validate() string {
	if strings.TrimSpace(r.Title) == "" {
		return "title is required"
	}
	if strings.TrimSpace(r.Category) == "" {
		return "category is required"
	}
	return ""
}

// Create handles POST /api/admin/topics.
func (h *TopicHandler) Create(c *gin.Context) {
	var req topicRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if msg := req.validate(); msg != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": msg})
		return
	}

	topic, err := h.topics.CreateTopic(c.Request.Context(), req.Category, req.Title, req.Description)
	if err != nil {
		abortError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"topic": topic})
}

// Update handles PUT /api/admin/topics/:id.
func (h *TopicHandler) Update(c *gin.Context) {
	var req topicRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if msg := req.validate(); msg != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": msg})
		return
	}

	topic, err := h.topics.UpdateTopic(c.Request.Context(), c.Param("id"), req.Category, req.Title, req.Description)
	if err != nil {
		abortError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"topic": topic})
}

// Delete handles DELETE /api/admin/topics/:id. The store removes the topic's
// votes and comments along with it.
func (h *TopicHandler) Delete(c *gin.Context) {
	if err := h.topics.DeleteTopic(c.Request.Context(), c.Param("id")); err != nil {
		abortError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
