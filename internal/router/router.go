package router

import (
	"agora/internal/handlers"
	"agora/internal/middleware"
	"agora/internal/services"
	"agora/internal/store"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes wires every handler. All dependencies come in explicitly;
// nothing here reaches for package-level state.
func RegisterRoutes(r *gin.Engine, st *store.Store, votes *services.VotingService, feed *services.CommentFeed, subs *services.SubscriptionManager) {
	authHandler := handlers.NewAuthHandler(st)
	topicHandler := handlers.NewTopicHandler(st)
	voteHandler := handlers.NewVoteHandler(st, votes)
	commentHandler := handlers.NewCommentHandler(st, feed)
	streamHandler := handlers.NewStreamHandler(st, subs)

	r.Use(middleware.LoadUser(st))

	// Session auth
	r.POST("/signup", authHandler.Signup)
	r.POST("/login", authHandler.Login)
	r.GET("/logout", authHandler.Logout)
	r.GET("/me", authHandler.Me)

	// Public reads, including the live stream: results and discussion are
	// visible to every connected viewer, voting is not.
	api := r.Group("/api")
	{
		api.GET("/topics", topicHandler.List)
		api.GET("/topics/:id", topicHandler.Get)
		api.GET("/categories", topicHandler.Categories)
		api.GET("/topics/:id/stats", voteHandler.Stats)
		api.GET("/topics/:id/comments", commentHandler.List)
		api.GET("/topics/:id/live", streamHandler.Live)
	}

	// Mutations need a resolved identity.
	authorized := r.Group("/api")
	authorized.Use(middleware.AuthRequired())
	{
		authorized.POST("/topics/:id/votes", voteHandler.Submit)
		authorized.POST("/topics/:id/comments", commentHandler.Create)
	}

	// Topic administration.
	admin := r.Group("/api/admin")
	admin.Use(middleware.AdminRequired())
	{
		admin.POST("/topics", topicHandler.Create)
		admin.PUT("/topics/:id", topicHandler.Update)
		admin.DELETE("/topics/:id", topicHandler.Delete)
	}
}
