package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"go-restaurant-printing/helpers"
)

// Authentication checks the staff session token sent in the "token" header.
func Authentication(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		clientToken := c.Request.Header.Get("token")
		if clientToken == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "error": "No autorizado"})
			return
		}
		claims, msg := helpers.ValidateToken(clientToken, secret)
		if msg != "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "error": msg})
			return
		}
		c.Set("email", claims.Email)
		c.Set("Name", claims.Name)
		c.Set("uid", claims.Uid)
		c.Set("user_role", claims.User_role)
		c.Next()
	}
}

// RelayAuthentication guards the print service with the shared bearer token.
func RelayAuthentication(token, hash string) gin.HandlerFunc {
	return func(c *gin.Context) {
		presented, ok := strings.CutPrefix(c.Request.Header.Get("Authorization"), "Bearer ")
		if !ok {
			presented = ""
		}
		if valid, msg := helpers.VerifyRelayToken(strings.TrimSpace(presented), token, hash); !valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "error": msg})
			return
		}
		c.Next()
	}
}
