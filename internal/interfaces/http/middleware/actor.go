package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cshub/backend/internal/domain/shared"
	"github.com/cshub/backend/internal/infrastructure/auth"
	"github.com/cshub/backend/internal/infrastructure/logger"
	"github.com/cshub/backend/internal/interfaces/http/dto"
)

// Gin context keys set by Actor
const (
	ActorIDKey = "actor_id"
	ClaimsKey  = "jwt_claims"
)

// ActorConfig holds configuration for the actor middleware
type ActorConfig struct {
	// JWT verifies bearer tokens. Nil means tokens are not issued and the
	// X-User-ID header names the actor instead.
	JWT    *auth.JWTService
	Logger *zap.Logger
}

// Actor resolves who is making the request. Anonymous requests pass
// through with no actor; a token or header that is present but invalid
// is rejected.
func Actor(cfg ActorConfig) gin.HandlerFunc {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	return func(c *gin.Context) {
		var actor uuid.UUID

		if cfg.JWT != nil {
			header := c.GetHeader("Authorization")
			if header == "" {
				c.Next()
				return
			}
			token, ok := auth.ExtractBearer(header)
			if !ok {
				abortUnauthorized(c, log, auth.ErrInvalidToken)
				return
			}
			claims, err := cfg.JWT.Verify(token)
			if err != nil {
				abortUnauthorized(c, log, err)
				return
			}
			actor, _ = claims.UserUUID()
			c.Set(ClaimsKey, claims)
		} else {
			raw := c.GetHeader(HeaderUserID)
			if raw == "" {
				c.Next()
				return
			}
			id, err := uuid.Parse(raw)
			if err != nil {
				status, body := dto.FromError(shared.NewValidationError(HeaderUserID, "X-User-ID must be a UUID"), GetRequestID(c))
				c.AbortWithStatusJSON(status, body)
				return
			}
			actor = id
		}

		c.Set(ActorIDKey, actor)
		c.Request = c.Request.WithContext(logger.WithActorID(c.Request.Context(), actor.String()))
		c.Next()
	}
}

func abortUnauthorized(c *gin.Context, log *zap.Logger, err error) {
	log.Warn("Actor authentication failed",
		zap.Error(err),
		zap.String("path", c.Request.URL.Path),
	)

	code, message := dto.ErrCodeTokenInvalid, "Invalid token"
	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		code, message = dto.ErrCodeTokenExpired, "Token has expired"
	case errors.Is(err, auth.ErrTokenNotYetValid):
		message = "Token is not yet valid"
	case errors.Is(err, auth.ErrMissingUserID), errors.Is(err, auth.ErrInvalidClaims):
		message = "Token does not identify a user"
	}
	c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse(code, message, GetRequestID(c)))
}

// GetActor returns the acting user, or nil for anonymous requests
func GetActor(c *gin.Context) *uuid.UUID {
	v, ok := c.Get(ActorIDKey)
	if !ok {
		return nil
	}
	id, ok := v.(uuid.UUID)
	if !ok || id == uuid.Nil {
		return nil
	}
	return &id
}

// GetClaims returns the verified token claims, if any
func GetClaims(c *gin.Context) *auth.Claims {
	if v, ok := c.Get(ClaimsKey); ok {
		if claims, ok := v.(*auth.Claims); ok {
			return claims
		}
	}
	return nil
}
