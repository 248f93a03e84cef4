package handlers

import (
	"io"
	"log"
	"net/http"

	"agora/internal/services"

	"github.com/gin-gonic/gin"
)

type StreamHandler struct {
	topics TopicStore
	subs   *services.SubscriptionManager
}

func NewStreamHandler(topics TopicStore, subs *services.SubscriptionManager) *StreamHandler {
	return &StreamHandler{topics: topics, subs: subs}
}

// Live handles GET /api/topics/:id/live: a server-sent-event stream carrying
// fresh stats and comment snapshots for as long as the topic stays visible
// in the client. The watch and both of its change channels are released on
// every exit path, including abrupt disconnects.
func (h *StreamHandler) Live(c *gin.Context) {
	topicID := c.Param("id")

	if _, err := h.topics.GetTopic(c.Request.Context(), topicID); err != nil {
		abortError(c, err)
		return
	}

	watch, err := h.subs.OnTopicVisible(topicID)
	if err != nil {
		// A realtime outage must not hard-fail the topic view; the
		// client keeps polling snapshots instead.
		log.Printf("stream: open watch for topic %s: %v", topicID, err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "live updates unavailable"})
		return
	}
	defer watch.Close()

	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	clientGone := c.Request.Context().Done()
	c.Stream(func(w io.Writer) bool {
		select {
		case <-clientGone:
			return false
		case update, ok := <-watch.Updates():
			if !ok {
				return false
			}
			if update.Stats != nil {
				c.SSEvent("stats", update.Stats)
			}
			if update.Comments != nil {
				c.SSEvent("comments", commentViews(update.Comments))
			}
			return true
		}
	})
}
