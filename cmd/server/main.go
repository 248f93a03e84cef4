package main

import (
	"log"
	"os"

	"agora/internal/db"
	"agora/internal/realtime"
	"agora/internal/router"
	"agora/internal/services"
	"agora/internal/store"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, finding env vars from system")
	}

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		// Fallback for local dev if not set
		dsn = "host=localhost user=postgres password=postgres dbname=agora port=5432 sslmode=disable"
	}
	conn, err := db.Open(dsn)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}

	// Change-notification bus: the store publishes after every committed
	// vote/comment mutation, topic watches subscribe per topic.
	bus := realtime.NewBus()
	defer bus.Close()

	st := store.New(conn, bus)
	feed := services.NewCommentFeed(st)
	votes := services.NewVotingService(st)
	subs := services.NewSubscriptionManager(bus, st, feed)

	r := gin.Default()

	// Setup Sessions
	secret := os.Getenv("SESSION_SECRET")
	if secret == "" {
		secret = "secret_key_change_me"
	}
	sessionStore := cookie.NewStore([]byte(secret))
	r.Use(sessions.Sessions("agora_session", sessionStore))

	router.RegisterRoutes(r, st, votes, feed, subs)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.Printf("Agora server starting on :%s", port)
	if err := r.Run(":" + port); err != nil {
		log.Fatal(err)
	}
}
