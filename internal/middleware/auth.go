package middleware

import (
	"context"
	"net/http"

	"agora/internal/models"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

const CheckUserKey = "user"

// UserLoader resolves a user id to an identity. *store.Store satisfies it.
type UserLoader interface {
	GetUser(ctx context.Context, id string) (models.User, error)
}

// LoadUser resolves the session to a user identity and sets it on the
// context. This is the only place the engine learns who is calling; if the
// session maps to nothing, downstream code sees no user at all.
func LoadUser(st UserLoader) gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		userID, _ := session.Get("user_id").(string)
		if userID != "" {
			if user, err := st.GetUser(c.Request.Context(), userID); err == nil {
				c.Set(CheckUserKey, &user)
			}
		}
		c.Next()
	}
}

// CurrentUser returns the resolved identity, or nil.
func CurrentUser(c *gin.Context) *models.User {
	if v, exists := c.Get(CheckUserKey); exists {
		return v.(*models.User)
	}
	return nil
}

// AuthRequired rejects requests with no resolved identity.
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if CurrentUser(c) == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}
		c.Next()
	}
}

// AdminRequired gates topic administration.
func AdminRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}
		if !user.IsAdmin() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin access required"})
			return
		}
		c.Next()
	}
}
