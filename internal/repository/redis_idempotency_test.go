package repository

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

func TestRedisIdempotency_StoreAndGet(t *testing.T) {
	_, rdb := newTestRedis(t)
	repo := NewRedisIdempotencyRepository(rdb, time.Hour)
	ctx := context.Background()

	got, err := repo.Get(ctx, "k1", "POST /api/v1/tasks", "u1")
	if err != nil || got != nil {
		t.Fatalf("Get() on empty store = %v, %v; want nil, nil", got, err)
	}

	if err := repo.Store(ctx, "k1", "POST /api/v1/tasks", "u1", []byte(`{"id":"t1"}`), 201); err != nil {
		t.Fatalf("Store() error: %v", err)
	}

	got, err = repo.Get(ctx, "k1", "POST /api/v1/tasks", "u1")
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if got == nil || got.StatusCode != 201 || string(got.ResponseBody) != `{"id":"t1"}` {
		t.Errorf("Get() = %+v", got)
	}

	// scoped by user
	if other, _ := repo.Get(ctx, "k1", "POST /api/v1/tasks", "u2"); other != nil {
		t.Error("record leaked to another user")
	}
}

func TestRedisIdempotency_KeepsFirstResponse(t *testing.T) {
	_, rdb := newTestRedis(t)
	repo := NewRedisIdempotencyRepository(rdb, time.Hour)
	ctx := context.Background()

	_ = repo.Store(ctx, "k1", "r", "u1", []byte(`{"n":1}`), 201)
	_ = repo.Store(ctx, "k1", "r", "u1", []byte(`{"n":2}`), 201)

	got, err := repo.Get(ctx, "k1", "r", "u1")
	if err != nil {
		t.Fatal(err)
	}
	if string(got.ResponseBody) != `{"n":1}` {
		t.Errorf("ResponseBody = %s, want the first response", got.ResponseBody)
	}
}

func TestRedisIdempotency_Expires(t *testing.T) {
	mr, rdb := newTestRedis(t)
	repo := NewRedisIdempotencyRepository(rdb, time.Minute)
	ctx := context.Background()

	if err := repo.Store(ctx, "k1", "r", "u1", []byte(`{}`), 200); err != nil {
		t.Fatal(err)
	}
	mr.FastForward(2 * time.Minute)

	got, err := repo.Get(ctx, "k1", "r", "u1")
	if err != nil || got != nil {
		t.Errorf("Get() after ttl = %v, %v; want nil, nil", got, err)
	}
}
