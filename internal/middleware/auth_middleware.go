package middleware

import (
	"net/http"
	"os"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/gotix/gotix/internal/helpers"
)

func parseBearerToken(c *gin.Context) (uuid.UUID, bool) {
	authHeader := c.GetHeader("Authorization")
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return uuid.Nil, false
	}
	tokenString := strings.TrimPrefix(authHeader, "Bearer ")

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(os.Getenv("JWT_SECRET")), nil
	})
	if err != nil || !token.Valid {
		return uuid.Nil, false
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return uuid.Nil, false
	}
	subject, err := claims.GetSubject()
	if err != nil {
		return uuid.Nil, false
	}
	userID, err := uuid.Parse(subject)
	if err != nil {
		return uuid.Nil, false
	}
	return userID, true
}

// OptionalAuthMiddleware attaches the user id from an externally issued
// bearer token when one is present and valid. Anonymous requests pass
// through untouched; bookings simply carry no user then.
func OptionalAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if userID, ok := parseBearerToken(c); ok {
			c.Set("user_id", userID)
		}
		c.Next()
	}
}

// JWTAuthMiddleware rejects requests without a valid bearer token. Used for
// the organizer-facing scan endpoint.
func JWTAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := parseBearerToken(c)
		if !ok {
			helpers.RespondWithError(c, http.StatusUnauthorized, "Invalid or missing token.")
			c.Abort()
			return
		}
		c.Set("user_id", userID)
		c.Next()
	}
}
