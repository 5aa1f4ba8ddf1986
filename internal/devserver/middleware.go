// internal/devserver/middleware.go
package devserver

import (
	"strings"

	"github.com/gin-gonic/gin"

	"chronoshop/internal/pkg/response"
)

// auth validates the bearer access token and stores the subject on the
// context for the handlers.
func (s *Server) auth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			response.Unauthorized(c, "missing authorization token")
			return
		}

		userID, jti, err := s.tokens.Verify(token, "access")
		if err != nil {
			response.Unauthorized(c, "invalid or expired token")
			return
		}
		if s.store.accessRevoked(jti) {
			response.Unauthorized(c, "token has been revoked")
			return
		}

		c.Set("user_id", userID)
		c.Set("jti", jti)
		c.Next()
	}
}

func extractToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	// Websocket clients pass the token as a query parameter.
	return c.Query("token")
}
