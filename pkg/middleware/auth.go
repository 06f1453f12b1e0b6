package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/syncboard/syncboard/internal/config"
	"github.com/syncboard/syncboard/internal/sessions"
	"github.com/syncboard/syncboard/internal/tokens"
	"github.com/syncboard/syncboard/pkg/logger"
)

// ContextClaims is the gin context key under which verified identity claims
// are stored. ContextAccessToken holds the raw bearer token for logout.
const (
	ContextClaims      = "claims"
	ContextAccessToken = "accessToken"
)

// AuthMiddleware returns a Gin middleware that verifies Bearer access tokens.
// Verified claims are stored under ContextClaims as *tokens.Claims.
func AuthMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := c.GetHeader("Authorization")
		if auth == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing Authorization header"})
			return
		}
		// Expect 'Bearer <token>'
		token, ok := strings.CutPrefix(auth, "Bearer ")
		if !ok || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid Authorization header"})
			return
		}

		blacklisted, err := sessions.IsAccessTokenBlacklisted(c.Request.Context(), token)
		if err != nil {
			logger.Warnf("blacklist check failed: %v", err)
		} else if blacklisted {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "token revoked"})
			return
		}

		claims, err := tokens.ParseAccessToken(cfg, token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		c.Set(ContextClaims, claims)
		c.Set(ContextAccessToken, token)
		c.Next()
	}
}

// CurrentClaims returns the verified claims for the request, or nil when the
// request did not pass AuthMiddleware.
func CurrentClaims(c *gin.Context) *tokens.Claims {
	v, ok := c.Get(ContextClaims)
	if !ok {
		return nil
	}
	claims, _ := v.(*tokens.Claims)
	return claims
}
