package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/todotofu/todotofu/backend/internal/apierror"
	"github.com/todotofu/todotofu/backend/internal/auth"
	"github.com/todotofu/todotofu/backend/internal/logger"
)

// AuthTokenHeader is the legacy header some clients send the bare token in
const AuthTokenHeader = "x-auth-token"

// Auth verifies the bearer token and attaches the caller's identity to the
// request context
func Auth(verifier auth.TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		log := logger.Ctx(c.Request.Context())

		token, ok := extractToken(c)
		if !ok {
			log.Debug("authentication failed: missing or malformed credentials")
			apierror.AbortWithProblem(c, apierror.NewUnauthorizedError(apierror.GetRequestID(c)))
			return
		}

		id, err := verifier.Verify(token)
		if err != nil {
			log.Warn("authentication failed: token verification error", logger.Err(err))
			apierror.AbortWithProblem(c, apierror.NewUnauthorizedError(apierror.GetRequestID(c)))
			return
		}

		c.Set("user_id", id.UserID)
		c.Set("username", id.Username)

		ctx := auth.WithIdentity(c.Request.Context(), id)
		ctx = logger.WithUserID(ctx, id.UserID)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

func extractToken(c *gin.Context) (string, bool) {
	if header := c.GetHeader("Authorization"); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
			return "", false
		}
		return strings.TrimSpace(parts[1]), true
	}
	if token := strings.TrimSpace(c.GetHeader(AuthTokenHeader)); token != "" {
		return token, true
	}
	return "", false
}
