package middleware

import (
	"net/http"
	"strings"

	"github.com/ErlanBelekov/pharmacy-auth/internal/token"
	"github.com/gin-gonic/gin"
)

const (
	claimsKey = "claims"
	userKey   = "user"

	errTokenNotProvided  = "Token not provided"
	errInvalidAuthFormat = "Invalid authorization format"
	errInvalidToken      = "Invalid token"
	errUserIDMissing     = "User ID is missing"
	errNotAuthorized     = "You're not Authorized"
	errInternalServer    = "Internal server error"
)

type TokenVerifier interface {
	VerifyKind(raw string, kind token.Kind) (*token.Claims, error)
}

// Auth validates a Bearer token issued for kind and stores its claims in the
// gin context. A valid token minted for another flow is rejected like a bad one.
func Auth(tokens TokenVerifier, kind token.Kind) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			abort(c, http.StatusUnauthorized, errTokenNotProvided)
			return
		}
		if !strings.HasPrefix(header, "Bearer ") {
			abort(c, http.StatusUnauthorized, errInvalidAuthFormat)
			return
		}

		rawToken := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
		if rawToken == "" {
			abort(c, http.StatusUnauthorized, errTokenNotProvided)
			return
		}

		claims, err := tokens.VerifyKind(rawToken, kind)
		if err != nil {
			abort(c, http.StatusUnauthorized, errInvalidToken)
			return
		}

		c.Set(claimsKey, claims)
		c.Next()
	}
}

// ClaimsFrom returns the claims stored by Auth, or nil.
func ClaimsFrom(c *gin.Context) *token.Claims {
	claims, _ := c.Get(claimsKey)
	tc, _ := claims.(*token.Claims)
	return tc
}

func abort(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{"statusCode": status, "message": message})
}
