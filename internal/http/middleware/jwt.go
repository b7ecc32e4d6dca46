package middleware

import (
	"net/http"
	"strings"

	"economy_server/internal/domain"
	"economy_server/internal/service"

	"github.com/gin-gonic/gin"
)

// PlayerKey is the context key holding the authenticated domain.Player.
const PlayerKey = "player"

// JWT authenticates the request from an "Authorization: Bearer" header and
// stores the player under PlayerKey.
func JWT() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
			return
		}

		player, err := service.ParseJWT(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		c.Set(PlayerKey, player)
		c.Next()
	}
}

// AdminOnly must run after JWT.
func AdminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := CurrentPlayer(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		if !p.Admin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": service.ErrNotAuthorized.Error()})
			return
		}
		c.Next()
	}
}

// CurrentPlayer returns the player set by JWT.
func CurrentPlayer(c *gin.Context) (domain.Player, bool) {
	v, ok := c.Get(PlayerKey)
	if !ok {
		return domain.Player{}, false
	}
	p, ok := v.(domain.Player)
	return p, ok
}

// playerKey identifies the caller for rate limiting, falling back to the client IP.
func playerKey(c *gin.Context) string {
	if p, ok := CurrentPlayer(c); ok {
		return "player:" + p.ID.String()
	}
	return "ip:" + c.ClientIP()
}
