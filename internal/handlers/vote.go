package handlers

import (
	"net/http"

	"agora/internal/middleware"
	"agora/internal/models"
	"agora/internal/services"

	"github.com/gin-gonic/gin"
)

type VoteHandler struct {
	topics TopicStore
	votes  *services.VotingService
}

func NewVoteHandler(topics TopicStore, votes *services.VotingService) *VoteHandler {
	return &VoteHandler{topics: topics, votes: votes}
}

type submitVoteRequest struct {
	Option models.VoteOption `json:"option"`
}

// Submit handles POST /api/topics/:id/votes. A duplicate vote responds
// exactly like a fresh one apart from the already_voted flag: has_voted is
// true either way and the stats reflect the single stored vote.
func (h *VoteHandler) Submit(c *gin.Context) {
	user := middleware.CurrentUser(c)
	topicID := c.Param("id")

	if _, err := h.topics.GetTopic(c.Request.Context(), topicID); err != nil {
		abortError(c, err)
		return
	}

	var req submitVoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	outcome, err := h.votes.Submit(c.Request.Context(), user, topicID, req.Option)
	if err != nil {
		abortError(c, err)
		return
	}

	stats, err := h.votes.Stats(c.Request.Context(), topicID)
	if err != nil {
		// The vote is recorded; stats will arrive over the live stream.
		c.JSON(http.StatusOK, gin.H{"has_voted": outcome.HasVoted, "already_voted": outcome.AlreadyVoted})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"has_voted":     outcome.HasVoted,
		"already_voted": outcome.AlreadyVoted,
		"stats":         stats,
	})
}

// Stats handles GET /api/topics/:id/stats.
func (h *VoteHandler) Stats(c *gin.Context) {
	topicID := c.Param("id")

	if _, err := h.topics.GetTopic(c.Request.Context(), topicID); err != nil {
		abortError(c, err)
		return
	}

	stats, err := h.votes.Stats(c.Request.Context(), topicID)
	if err != nil {
		abortError(c, err)
		return
	}

	resp := gin.H{"stats": stats}
	if user := middleware.CurrentUser(c); user != nil {
		voted, err := h.votes.HasVoted(c.Request.Context(), topicID, user.ID)
		if err == nil {
			resp["has_voted"] = voted
		}
	}
	c.JSON(http.StatusOK, resp)
}
