package apierror

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestProblemDetailsJSONOmitsEmpty(t *testing.T) {
	data, err := json.Marshal(&ProblemDetails{
		Type:   TypeInternal,
		Title:  TitleInternal,
		Status: http.StatusInternalServerError,
	})
	if err != nil {
		t.Fatalf("Marshal error: %v", err)
	}

	var result map[string]interface{}
	if err := json.Unmarshal(data, &result); err != nil {
		t.Fatalf("Unmarshal error: %v", err)
	}

	for _, field := range []string{"detail", "instance", "request_id", "user_message", "retry_after", "action", "errors"} {
		if _, exists := result[field]; exists {
			t.Errorf("field %q should be omitted when empty", field)
		}
	}
	for _, field := range []string{"type", "title", "status"} {
		if _, exists := result[field]; !exists {
			t.Errorf("required field %q missing", field)
		}
	}
}

func TestWriteProblem(t *testing.T) {
	tests := []struct {
		name           string
		problem        *ProblemDetails
		wantStatus     int
		wantRetryAfter string
	}{
		{"invalid date", NewInvalidDateError("req-1", "date", "2025-13-01"), http.StatusBadRequest, ""},
		{"unauthorized", NewUnauthorizedError("req-1"), http.StatusUnauthorized, ""},
		{"rate limited", NewRateLimitError("req-1", 30), http.StatusTooManyRequests, "30"},
		{"unavailable", NewServiceUnavailableError("req-1", 5), http.StatusServiceUnavailable, "5"},
		{"canceled", NewCanceledError("req-1"), StatusClientClosedRequest, ""},
		{"timeout", NewTimeoutError("req-1"), http.StatusGatewayTimeout, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)

			WriteProblem(c, tt.problem)

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, ContentTypeProblemJSON) {
				t.Errorf("Content-Type = %q, want %q", ct, ContentTypeProblemJSON)
			}
			if got := w.Header().Get("Retry-After"); got != tt.wantRetryAfter {
				t.Errorf("Retry-After = %q, want %q", got, tt.wantRetryAfter)
			}

			var body ProblemDetails
			if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
				t.Fatalf("body is not a problem document: %v", err)
			}
			if body.Type != tt.problem.Type || body.RequestID != "req-1" {
				t.Errorf("body = %+v", body)
			}
		})
	}
}

func TestAbortWithProblem(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	AbortWithProblem(c, NewUnauthorizedError(""))

	if !c.IsAborted() {
		t.Error("context should be aborted")
	}
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestNewInvalidDateError(t *testing.T) {
	p := NewInvalidDateError("req-1", "date", "yesterday")

	if p.Status != http.StatusBadRequest || p.Type != TypeInvalidDate {
		t.Errorf("problem = %+v", p)
	}
	if len(p.Errors) != 1 || p.Errors[0].Field != "date" || p.Errors[0].Code != "invalid_date" {
		t.Errorf("Errors = %+v, want one invalid_date error on date", p.Errors)
	}
	if !strings.Contains(p.Detail, "yesterday") {
		t.Errorf("Detail = %q, want the offending value", p.Detail)
	}
}

func TestNewInternalErrorHidesDetails(t *testing.T) {
	p := NewInternalError("req-1")

	if p.Detail != "An unexpected error occurred" {
		t.Errorf("Detail = %q, want the generic message", p.Detail)
	}
	if len(p.Errors) != 0 {
		t.Error("internal errors must not carry field errors")
	}
}

func TestNewInvalidCredentialsError(t *testing.T) {
	p := NewInvalidCredentialsError("req-1")
	if p.Status != http.StatusUnauthorized || p.Type != TypeInvalidCredentials {
		t.Errorf("problem = %+v", p)
	}
	if p.Action != "" {
		t.Errorf("Action = %q, want none", p.Action)
	}
}

func TestNewNotFoundError(t *testing.T) {
	p := NewNotFoundError("req-1", "task", "t1")
	if p.Status != http.StatusNotFound || !strings.Contains(p.Detail, "t1") {
		t.Errorf("problem = %+v", p)
	}
}

func TestProblemDetailsError(t *testing.T) {
	if got := (&ProblemDetails{Title: "T", Detail: "D"}).Error(); got != "D" {
		t.Errorf("Error() = %q, want D", got)
	}
	if got := (&ProblemDetails{Title: "T"}).Error(); got != "T" {
		t.Errorf("Error() = %q, want T", got)
	}
}

func TestGetRequestID(t *testing.T) {
	tests := []struct {
		name   string
		setCtx string
		header string
		want   string
	}{
		{"from context", "ctx-id", "hdr-id", "ctx-id"},
		{"from header", "", "hdr-id", "hdr-id"},
		{"none", "", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := gin.CreateTestContext(httptest.NewRecorder())
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.setCtx != "" {
				c.Set("request_id", tt.setCtx)
			}
			if tt.header != "" {
				c.Request.Header.Set("X-Request-ID", tt.header)
			}

			if got := GetRequestID(c); got != tt.want {
				t.Errorf("GetRequestID() = %q, want %q", got, tt.want)
			}
		})
	}
}
