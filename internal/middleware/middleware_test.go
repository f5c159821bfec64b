package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/todotofu/todotofu/backend/internal/apierror"
	"github.com/todotofu/todotofu/backend/internal/auth"
	"github.com/todotofu/todotofu/backend/internal/models"
	"github.com/todotofu/todotofu/backend/internal/repository"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// stubVerifier accepts exactly one token
type stubVerifier struct {
	token string
	id    auth.Identity
}

func (v stubVerifier) Verify(token string) (auth.Identity, error) {
	if token != v.token {
		return auth.Identity{}, auth.ErrInvalidToken
	}
	return v.id, nil
}

var testIdentity = auth.Identity{UserID: "user-1", Username: "tofu"}

func newAuthRouter() *gin.Engine {
	r := gin.New()
	r.Use(RequestID(), Auth(stubVerifier{token: "good", id: testIdentity}))
	r.GET("/me", func(c *gin.Context) {
		id, ok := auth.IdentityFromContext(c.Request.Context())
		if !ok {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.JSON(http.StatusOK, gin.H{"user_id": id.UserID, "gin_user_id": c.GetString("user_id")})
	})
	return r
}

func TestAuth(t *testing.T) {
	tests := []struct {
		name       string
		headers    map[string]string
		wantStatus int
	}{
		{"bearer", map[string]string{"Authorization": "Bearer good"}, http.StatusOK},
		{"lowercase scheme", map[string]string{"Authorization": "bearer good"}, http.StatusOK},
		{"legacy header", map[string]string{AuthTokenHeader: "good"}, http.StatusOK},
		{"missing", nil, http.StatusUnauthorized},
		{"wrong scheme", map[string]string{"Authorization": "Basic good"}, http.StatusUnauthorized},
		{"empty bearer", map[string]string{"Authorization": "Bearer "}, http.StatusUnauthorized},
		{"bad token", map[string]string{"Authorization": "Bearer forged"}, http.StatusUnauthorized},
	}

	r := newAuthRouter()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			w := httptest.NewRecorder()

			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d: %s", w.Code, tt.wantStatus, w.Body.String())
			}
			if tt.wantStatus == http.StatusUnauthorized {
				if ct := w.Header().Get("Content-Type"); ct != apierror.ContentTypeProblemJSON {
					t.Errorf("Content-Type = %q, want problem+json", ct)
				}
				var problem apierror.ProblemDetails
				if err := json.Unmarshal(w.Body.Bytes(), &problem); err != nil {
					t.Fatalf("decode problem: %v", err)
				}
				if problem.Type != apierror.TypeUnauthorized || problem.RequestID == "" {
					t.Errorf("problem = %+v", problem)
				}
				return
			}
			var body map[string]string
			_ = json.Unmarshal(w.Body.Bytes(), &body)
			if body["user_id"] != "user-1" || body["gin_user_id"] != "user-1" {
				t.Errorf("body = %v", body)
			}
		})
	}
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, apierror.GetRequestID(c)) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Body.String() != "abc-123" || w.Header().Get(RequestIDHeader) != "abc-123" {
		t.Errorf("propagated id = %q / %q, want abc-123", w.Body.String(), w.Header().Get(RequestIDHeader))
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	if w.Body.Len() == 0 || w.Header().Get(RequestIDHeader) != w.Body.String() {
		t.Errorf("generated id = %q, header %q", w.Body.String(), w.Header().Get(RequestIDHeader))
	}
}

func TestRateLimit(t *testing.T) {
	limiter := NewRateLimiter(0.001, 2, "test")
	defer limiter.Close()

	r := gin.New()
	r.Use(RateLimit(limiter))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	codes := make([]int, 3)
	for i := range codes {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		codes[i] = w.Code
		if w.Code == http.StatusTooManyRequests && w.Header().Get("Retry-After") == "" {
			t.Error("429 without Retry-After")
		}
	}

	if codes[0] != http.StatusOK || codes[1] != http.StatusOK || codes[2] != http.StatusTooManyRequests {
		t.Errorf("codes = %v, want [200 200 429]", codes)
	}
}

func TestSecurityHeaders(t *testing.T) {
	for _, production := range []bool{false, true} {
		r := gin.New()
		r.Use(SecurityHeaders(production))
		r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

		if w.Header().Get("X-Content-Type-Options") != "nosniff" {
			t.Error("missing nosniff")
		}
		if hsts := w.Header().Get("Strict-Transport-Security") != ""; hsts != production {
			t.Errorf("production=%v: HSTS present = %v", production, hsts)
		}
	}
}

// failingIdempotency always errors
type failingIdempotency struct{}

func (failingIdempotency) Get(ctx context.Context, key, route, userID string) (*models.IdempotencyKey, error) {
	return nil, errors.New("store down")
}

func (failingIdempotency) Store(ctx context.Context, key, route, userID string, body []byte, status int) error {
	return errors.New("store down")
}

func newIdempotentRouter(repo repository.IdempotencyRepository, calls *int) *gin.Engine {
	r := gin.New()
	r.Use(RequestID(), Auth(stubVerifier{token: "good", id: testIdentity}), Idempotency(repo))
	r.POST("/tasks", func(c *gin.Context) {
		*calls++
		c.JSON(http.StatusCreated, gin.H{"call": *calls})
	})
	r.POST("/fail", func(c *gin.Context) {
		*calls++
		c.JSON(http.StatusBadRequest, gin.H{"call": *calls})
	})
	return r
}

func post(r *gin.Engine, path, key string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, nil)
	req.Header.Set("Authorization", "Bearer good")
	if key != "" {
		req.Header.Set(IdempotencyKeyHeader, key)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestIdempotency_ReplaysFromRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	calls := 0
	r := newIdempotentRouter(repository.NewRedisIdempotencyRepository(rdb, time.Hour), &calls)

	first := post(r, "/tasks", "key-1")
	second := post(r, "/tasks", "key-1")

	if calls != 1 {
		t.Errorf("handler calls = %d, want 1", calls)
	}
	if second.Code != http.StatusCreated || second.Body.String() != first.Body.String() {
		t.Errorf("replay = %d %s, want %d %s", second.Code, second.Body, first.Code, first.Body)
	}
	if second.Header().Get(ReplayedHeader) != "true" {
		t.Error("replay not marked")
	}

	post(r, "/tasks", "key-2")
	post(r, "/tasks", "")
	if calls != 3 {
		t.Errorf("handler calls = %d, want 3 for a new key and a keyless request", calls)
	}

	mr.FastForward(2 * time.Hour)
	post(r, "/tasks", "key-1")
	if calls != 4 {
		t.Errorf("handler calls = %d, want 4 once the key expired", calls)
	}
}

func TestIdempotency_DoesNotStoreFailures(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	calls := 0
	r := newIdempotentRouter(repository.NewRedisIdempotencyRepository(rdb, time.Hour), &calls)

	post(r, "/fail", "key-1")
	post(r, "/fail", "key-1")
	if calls != 2 {
		t.Errorf("handler calls = %d, want 2", calls)
	}
}

func TestIdempotency_StoreOutageFailsOpen(t *testing.T) {
	calls := 0
	r := newIdempotentRouter(failingIdempotency{}, &calls)

	w := post(r, "/tasks", "key-1")
	if w.Code != http.StatusCreated || calls != 1 {
		t.Errorf("status = %d, calls = %d; want 201, 1", w.Code, calls)
	}
}
