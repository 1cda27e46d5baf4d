package middleware

import (
	"net/http"
	"strings"

	"github.com/ecoreport/api-go/auth"
	"github.com/ecoreport/api-go/utils"
	"github.com/gin-gonic/gin"
)

// AuthMiddleware verifies the bearer token on every request and stores the
// caller identity for the handlers. No session state is kept between requests.
func AuthMiddleware(tokens *auth.TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "token is missing"})
			return
		}

		scheme, token, found := strings.Cut(authHeader, " ")
		if !found || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "token is missing"})
			return
		}

		identity, err := tokens.Verify(strings.TrimSpace(token))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": auth.ErrInvalidToken.Error()})
			return
		}

		utils.SetIdentity(c, identity)
		c.Next()
	}
}
