package middleware

import (
	"net/http"
	"strings"

	"github.com/eaglebank/auth-api/shared/token"
	"github.com/gin-gonic/gin"
)

const (
	userIDKey = "userId"
	emailKey  = "email"
)

// TokenParser verifies a raw bearer token and returns its claims.
type TokenParser interface {
	Parse(tokenString string) (*token.Claims, error)
}

// AuthMiddleware rejects requests that carry no credential (401). A
// credential that is present but not a valid bearer token, whether under the
// wrong scheme or failing verification, is refused with 403.
func AuthMiddleware(tokens TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			RespondWithError(c, http.StatusUnauthorized, "Unauthorized: no token provided")
			c.Abort()
			return
		}

		scheme, tokenString := splitAuthorization(authHeader)
		if tokenString == "" {
			RespondWithError(c, http.StatusUnauthorized, "Unauthorized: invalid authorization header format")
			c.Abort()
			return
		}
		if !strings.EqualFold(scheme, "Bearer") {
			RespondWithError(c, http.StatusForbidden, "Forbidden: invalid or expired token")
			c.Abort()
			return
		}

		claims, err := tokens.Parse(tokenString)
		if err != nil {
			RespondWithError(c, http.StatusForbidden, "Forbidden: invalid or expired token")
			c.Abort()
			return
		}

		c.Set(userIDKey, claims.UserID)
		c.Set(emailKey, claims.Email)
		c.Next()
	}
}

// splitAuthorization returns the scheme and credential of an Authorization
// header. The credential is empty when the header has no second part.
func splitAuthorization(header string) (scheme, credential string) {
	parts := strings.SplitN(strings.TrimSpace(header), " ", 2)
	if len(parts) != 2 {
		return parts[0], ""
	}
	return parts[0], strings.TrimSpace(parts[1])
}

func GetUserID(c *gin.Context) (int64, bool) {
	userID, exists := c.Get(userIDKey)
	if !exists {
		return 0, false
	}
	id, ok := userID.(int64)
	return id, ok
}

func GetEmail(c *gin.Context) (string, bool) {
	email, exists := c.Get(emailKey)
	if !exists {
		return "", false
	}
	s, ok := email.(string)
	return s, ok
}

// SetIdentity stores an identity the way AuthMiddleware does. Used by
// handler tests that bypass token verification.
func SetIdentity(c *gin.Context, userID int64, email string) {
	c.Set(userIDKey, userID)
	c.Set(emailKey, email)
}
