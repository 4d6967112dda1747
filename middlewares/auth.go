package middlewares

import (
	"errors"
	"net/http"
	"os"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"restaurant-service/utils"
)

// UserIDKey is the gin context key holding the acting user's opaque UUID.
const UserIDKey = "userID"

var jwtSecret []byte

func init() {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "restaurant-service-dev-secret"
	}
	jwtSecret = []byte(secret)
}

// Identify resolves the acting user once at the boundary. The user service in
// front of this API issues HS256 tokens whose subject is the user UUID; the
// X-User-Id header is the fallback for trusted internal calls. The identity
// is only ever read from the context after this point, never re-derived.
func Identify() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := resolveIdentity(c)
		if err != nil {
			utils.RespondError(c, http.StatusUnauthorized, err)
			c.Abort()
			return
		}

		c.Set(UserIDKey, userID)
		c.Next()
	}
}

func resolveIdentity(c *gin.Context) (string, error) {
	authHeader := c.GetHeader("Authorization")
	if authHeader != "" {
		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		claims := &jwt.RegisteredClaims{}
		token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
			return jwtSecret, nil
		})
		if err != nil || !token.Valid {
			return "", errors.New("invalid or expired token")
		}
		if claims.Subject == "" {
			return "", errors.New("token has no subject")
		}
		return claims.Subject, nil
	}

	if userID := c.GetHeader("X-User-Id"); userID != "" {
		return userID, nil
	}

	return "", errors.New("authentication required")
}

// UserID returns the identity stored by Identify.
func UserID(c *gin.Context) string {
	return c.GetString(UserIDKey)
}
