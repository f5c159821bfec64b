package middleware

import (
	"bytes"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/todotofu/todotofu/backend/internal/apierror"
	"github.com/todotofu/todotofu/backend/internal/auth"
	"github.com/todotofu/todotofu/backend/internal/logger"
	"github.com/todotofu/todotofu/backend/internal/repository"
)

const (
	// IdempotencyKeyHeader is the HTTP header name for idempotency keys
	IdempotencyKeyHeader = "Idempotency-Key"
	// ReplayedHeader marks a response served from the idempotency store
	ReplayedHeader = "X-Idempotency-Replayed"

	maxIdempotencyKeyLen = 255
)

// bodyRecorder copies the response body while it is written
type bodyRecorder struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w *bodyRecorder) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

// Idempotency replays the stored response of a POST, PUT or PATCH that repeats
// an Idempotency-Key for the same route and user. Only 2xx responses are
// stored. It must run after Auth.
func Idempotency(repo repository.IdempotencyRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		method := c.Request.Method
		if method != http.MethodPost && method != http.MethodPut && method != http.MethodPatch {
			c.Next()
			return
		}

		key := c.GetHeader(IdempotencyKeyHeader)
		if key == "" {
			c.Next()
			return
		}

		log := logger.Ctx(c.Request.Context())
		requestID := apierror.GetRequestID(c)

		if len(key) > maxIdempotencyKeyLen {
			apierror.AbortWithProblem(c, apierror.NewBadRequestError(requestID,
				"Idempotency-Key must be at most 255 characters", "Invalid Idempotency-Key header"))
			return
		}

		id, ok := auth.IdentityFromContext(c.Request.Context())
		if !ok {
			log.Warn("idempotency check failed: unauthenticated request")
			apierror.AbortWithProblem(c, apierror.NewUnauthorizedError(requestID))
			return
		}

		route := method + " " + c.FullPath()

		existing, err := repo.Get(c.Request.Context(), key, route, id.UserID)
		if err != nil {
			// the store being down must not block writes
			log.Error("failed to check idempotency key", logger.Err(err), logger.String("route", route))
			c.Next()
			return
		}

		if existing != nil {
			log.Info("replaying idempotent response",
				logger.String("route", route),
				logger.Int("status_code", existing.StatusCode),
			)
			c.Header(ReplayedHeader, "true")
			c.Data(existing.StatusCode, "application/json; charset=utf-8", existing.ResponseBody)
			c.Abort()
			return
		}

		rec := &bodyRecorder{ResponseWriter: c.Writer, body: &bytes.Buffer{}}
		c.Writer = rec

		c.Next()

		status := rec.Status()
		if status < 200 || status >= 300 {
			return
		}
		if err := repo.Store(c.Request.Context(), key, route, id.UserID, rec.body.Bytes(), status); err != nil {
			log.Warn("failed to store idempotency key", logger.Err(err), logger.String("route", route))
		}
	}
}
