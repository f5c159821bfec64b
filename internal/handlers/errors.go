package handlers

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/todotofu/todotofu/backend/internal/apierror"
	"github.com/todotofu/todotofu/backend/internal/logger"
	"github.com/todotofu/todotofu/backend/internal/service"
)

// writeServiceError maps service errors to problem responses. Unexpected
// errors are logged with op and hidden from the client.
func writeServiceError(c *gin.Context, err error, op string) {
	requestID := apierror.GetRequestID(c)

	var verr *service.ValidationError
	var nf *service.NotFoundError
	switch {
	case errors.As(err, &verr):
		if len(verr.Fields) == 1 && verr.Fields[0].Code == service.CodeInvalidDate {
			f := verr.Fields[0]
			apierror.WriteProblem(c, apierror.NewInvalidDateError(requestID, f.Field, f.Value))
			return
		}
		fields := make([]apierror.FieldError, len(verr.Fields))
		for i, f := range verr.Fields {
			fields[i] = apierror.FieldError{Field: f.Field, Message: f.Message, Code: f.Code}
		}
		apierror.WriteProblem(c, apierror.NewValidationError(requestID, fields))
	case errors.Is(err, service.ErrUnauthenticated):
		apierror.WriteProblem(c, apierror.NewUnauthorizedError(requestID))
	case errors.Is(err, service.ErrInvalidCredentials):
		apierror.WriteProblem(c, apierror.NewInvalidCredentialsError(requestID))
	case errors.As(err, &nf):
		apierror.WriteProblem(c, apierror.NewNotFoundError(requestID, nf.Resource, nf.ID))
	case errors.Is(err, service.ErrConflict):
		apierror.WriteProblem(c, apierror.NewConflictError(requestID, err.Error()))
	case errors.Is(err, context.Canceled):
		logger.Ctx(c.Request.Context()).Info(op+" canceled", logger.Err(err))
		apierror.WriteProblem(c, apierror.NewCanceledError(requestID))
	case errors.Is(err, context.DeadlineExceeded):
		logger.Ctx(c.Request.Context()).Warn(op+" timed out", logger.Err(err))
		apierror.WriteProblem(c, apierror.NewTimeoutError(requestID))
	default:
		logger.Ctx(c.Request.Context()).Error(op+" failed", logger.Err(err))
		apierror.WriteProblem(c, apierror.NewInternalError(requestID))
	}
}

// currentUser returns the user id set by the Auth middleware, writing a 401
// when there is none
func currentUser(c *gin.Context) (string, bool) {
	if userID := c.GetString("user_id"); userID != "" {
		return userID, true
	}
	apierror.WriteProblem(c, apierror.NewUnauthorizedError(apierror.GetRequestID(c)))
	return "", false
}

// bindJSON decodes the body into req, writing a problem response on failure
func bindJSON(c *gin.Context, req any) bool {
	err := c.ShouldBindJSON(req)
	if err == nil {
		return true
	}

	requestID := apierror.GetRequestID(c)
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make([]apierror.FieldError, len(verrs))
		for i, fe := range verrs {
			fields[i] = apierror.FieldError{
				Field:   jsonFieldName(fe.Field()),
				Message: validationMessage(fe),
				Code:    fe.Tag(),
			}
		}
		apierror.WriteProblem(c, apierror.NewValidationError(requestID, fields))
		return false
	}

	apierror.WriteProblem(c, apierror.NewBadRequestError(requestID, err.Error(), "Invalid JSON format"))
	return false
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "email":
		return "must be a valid email address"
	default:
		return "is invalid"
	}
}

// jsonFieldName converts a Go field name such as ProfilePicture to profile_picture
func jsonFieldName(name string) string {
	var b strings.Builder
	for i, r := range name {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('_')
			}
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}
