// Package http provides the HTTP middleware that guards the management and
// ingestion endpoints.
package http

import (
	"log/slog"
	"strings"

	"github.com/gin-gonic/gin"

	authService "github.com/allisson/relay/internal/auth/service"
	apperrors "github.com/allisson/relay/internal/errors"
	"github.com/allisson/relay/internal/httputil"
)

const bearerPrefix = "bearer "

// AdminAuthMiddleware requires an "Authorization: Bearer <token>" header whose token
// matches the configured Argon2id hash. The "bearer" prefix is case-insensitive.
//
// An empty tokenHash rejects every request, so the management API stays closed
// until an operator configures ADMIN_TOKEN_HASH.
func AdminAuthMiddleware(
	tokenHash string,
	tokenService authService.AdminTokenService,
	logger *slog.Logger,
) gin.HandlerFunc {
	if tokenHash == "" {
		logger.Warn("admin token hash is not configured, management API will reject all requests")
	}

	return func(c *gin.Context) {
		plainToken, ok := parseBearerToken(c.GetHeader("Authorization"))
		if !ok {
			logger.Debug("admin authentication failed: missing or malformed authorization header")
			httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, logger)
			c.Abort()
			return
		}

		if !tokenService.VerifyToken(plainToken, tokenHash) {
			logger.Debug("admin authentication failed: token mismatch")
			httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, logger)
			c.Abort()
			return
		}

		c.Next()
	}
}

// parseBearerToken extracts the token from an Authorization header value.
func parseBearerToken(header string) (string, bool) {
	if len(header) < len(bearerPrefix) || !strings.EqualFold(header[:len(bearerPrefix)], bearerPrefix) {
		return "", false
	}
	token := strings.TrimSpace(header[len(bearerPrefix):])
	if token == "" {
		return "", false
	}
	return token, true
}
