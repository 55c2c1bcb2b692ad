package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const claimsKey = "auth.claims"

// Middleware rejects requests without a valid bearer token and stores the
// claims on the context.
func Middleware(tokens *Tokens) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := tokens.ParseBearer(c.GetHeader("Authorization"))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}
		c.Set(claimsKey, claims)
		c.Next()
	}
}

// ClaimsFrom returns the claims stored by Middleware, or nil.
func ClaimsFrom(c *gin.Context) *Claims {
	v, ok := c.Get(claimsKey)
	if !ok {
		return nil
	}
	claims, _ := v.(*Claims)
	return claims
}
