package middleware

import (
	"net/http"
	"strings"

	"github.com/onegreenvn/student-campaigns-backend/internal/lifecycle"
	"github.com/onegreenvn/student-campaigns-backend/internal/models"

	"github.com/gin-gonic/gin"
)

// TokenValidator resolves an access token to its user
type TokenValidator interface {
	ValidateToken(tokenString string) (*models.TokenInfo, *models.User, error)
}

type BearerTokenMiddleware struct {
	validator TokenValidator
}

func NewBearerTokenMiddleware(validator TokenValidator) *BearerTokenMiddleware {
	return &BearerTokenMiddleware{validator: validator}
}

// BearerTokenAuthMiddleware validates JWT token and sets user info in context
func (m *BearerTokenMiddleware) BearerTokenAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		// If user_id is already set, skip authentication
		if _, exists := c.Get("user_id"); exists {
			c.Next()
			return
		}

		authHeader := c.GetHeader("Authorization")
		if !strings.HasPrefix(authHeader, "Bearer ") {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid authorization header format"})
			c.Abort()
			return
		}

		if !m.authenticate(c, strings.TrimPrefix(authHeader, "Bearer ")) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			c.Abort()
			return
		}

		c.Next()
	}
}

// OptionalAuthMiddleware sets user info when a valid bearer token is present
// and lets anonymous requests through otherwise.
func (m *BearerTokenMiddleware) OptionalAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if strings.HasPrefix(authHeader, "Bearer ") {
			m.authenticate(c, strings.TrimPrefix(authHeader, "Bearer "))
		}
		c.Next()
	}
}

func (m *BearerTokenMiddleware) authenticate(c *gin.Context, tokenString string) bool {
	tokenInfo, user, err := m.validator.ValidateToken(tokenString)
	if err != nil {
		return false
	}

	c.Set("user_id", user.ID)
	c.Set("user", user)
	c.Set("is_admin", user.IsAdmin())
	c.Set("token_info", tokenInfo)
	return true
}

// RequireReviewer rejects callers without review capability
func RequireReviewer() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !CurrentActor(c).CanReview() {
			c.JSON(http.StatusForbidden, gin.H{"error": "Reviewer privileges required"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireAdmin rejects non-admin callers
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !c.GetBool("is_admin") {
			c.JSON(http.StatusForbidden, gin.H{"error": "Admin privileges required"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// CurrentUser returns the authenticated user, or nil
func CurrentUser(c *gin.Context) *models.User {
	v, ok := c.Get("user")
	if !ok {
		return nil
	}
	user, _ := v.(*models.User)
	return user
}

// CurrentActor returns the lifecycle actor for the request, or nil when anonymous
func CurrentActor(c *gin.Context) *lifecycle.Actor {
	return lifecycle.ActorFromUser(CurrentUser(c))
}
