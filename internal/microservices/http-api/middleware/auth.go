package middleware

import (
	"errors"
	"log/slog"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"yamdb/internal/apperr"
	"yamdb/internal/microservices/http-api/repository"
	"yamdb/internal/microservices/http-api/service"
	"yamdb/internal/permission"
)

const actorKey = "actor"

// AuthMiddleware is a Gin middleware for JWT authentication of API requests.
// Requests without a valid bearer token are rejected with 401.
func AuthMiddleware(authService service.AuthService, users repository.UserRepository, log *slog.Logger) gin.HandlerFunc {
	return authenticate(authService, users, log, true)
}

// OptionalAuth resolves the actor when a token is present and lets
// anonymous requests through. A present but invalid token is still 401.
func OptionalAuth(authService service.AuthService, users repository.UserRepository, log *slog.Logger) gin.HandlerFunc {
	return authenticate(authService, users, log, false)
}

func authenticate(authService service.AuthService, users repository.UserRepository, log *slog.Logger, required bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			if required {
				WriteError(c, log, apperr.Unauthorized("authentication credentials were not provided"))
				return
			}
			c.Set(actorKey, permission.Anonymous())
			c.Next()
			return
		}

		// Extract token (format: "Bearer <token>")
		parts := strings.Fields(authHeader)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			WriteError(c, log, apperr.Unauthorized("invalid authorization header format"))
			return
		}

		claims, err := authService.ValidateToken(parts[1])
		if err != nil {
			WriteError(c, log, apperr.Unauthorized("invalid or expired token"))
			return
		}

		// reload so role changes and deletions apply to live tokens
		user, err := users.FindByID(c.Request.Context(), claims.UserID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				WriteError(c, log, apperr.Unauthorized("user not found"))
				return
			}
			WriteError(c, log, apperr.Internal(err))
			return
		}

		c.Set(actorKey, permission.Actor{
			UserID:      user.ID,
			Username:    user.Username,
			Role:        permission.Role(user.Role),
			IsSuperuser: user.IsSuperuser,
		})
		c.Next()
	}
}

// ActorFrom returns the actor set by the auth middlewares, anonymous if none.
func ActorFrom(c *gin.Context) permission.Actor {
	if v, ok := c.Get(actorKey); ok {
		if actor, ok := v.(permission.Actor); ok {
			return actor
		}
	}
	return permission.Anonymous()
}

// RequireAuthenticated rejects anonymous actors with 401. It runs after
// OptionalAuth.
func RequireAuthenticated(log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !ActorFrom(c).IsAuthenticated() {
			WriteError(c, log, apperr.Unauthorized("authentication credentials were not provided"))
			return
		}
		c.Next()
	}
}
