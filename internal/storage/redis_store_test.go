package storage

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/angelmondragon/storefront/pkg/redis"
	goredis "github.com/redis/go-redis/v9"
)

func TestRedisStoreScopesKeysToSession(t *testing.T) {
	ctx := context.Background()
	mock := newStubCmdable()
	store := NewRedisStore(redis.NewWithCmdable(mock), "abc", 30*time.Minute)

	if _, found, err := store.Get(ctx, KeyOrder); err != nil || found {
		t.Fatalf("expected missing key, found=%v err=%v", found, err)
	}
	if err := store.Set(ctx, KeyOrder, `{"id":"1"}`); err != nil {
		t.Fatalf("set: %v", err)
	}
	if mock.data["sf:session:abc:order"] != `{"id":"1"}` {
		t.Fatalf("unexpected redis contents %v", mock.data)
	}
	if mock.ttls["sf:session:abc:order"] != 30*time.Minute {
		t.Fatalf("expected session ttl on set, got %v", mock.ttls)
	}

	value, found, err := store.Get(ctx, KeyOrder)
	if err != nil || !found || value != `{"id":"1"}` {
		t.Fatalf("unexpected get %q found=%v err=%v", value, found, err)
	}
	if mock.expires != 1 {
		t.Fatalf("expected ttl refresh on read, got %d", mock.expires)
	}

	if err := store.Remove(ctx, KeyOrder); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, ok := mock.data["sf:session:abc:order"]; ok {
		t.Fatal("expected key deleted")
	}
}

func TestRedisStoreSurfacesBackendErrors(t *testing.T) {
	mock := newStubCmdable()
	mock.err = fmt.Errorf("connection refused")
	store := NewRedisStore(redis.NewWithCmdable(mock), "abc", time.Minute)

	if _, _, err := store.Get(context.Background(), KeyOrder); err == nil {
		t.Fatal("expected backend error")
	}
}

type stubCmdable struct {
	data    map[string]string
	ttls    map[string]time.Duration
	expires int
	err     error
}

func newStubCmdable() *stubCmdable {
	return &stubCmdable{data: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (s *stubCmdable) Ping(context.Context) *goredis.StatusCmd {
	return goredis.NewStatusResult("PONG", s.err)
}

func (s *stubCmdable) Set(_ context.Context, key string, value any, ttl time.Duration) *goredis.StatusCmd {
	if s.err != nil {
		return goredis.NewStatusResult("", s.err)
	}
	s.data[key] = fmt.Sprint(value)
	s.ttls[key] = ttl
	return goredis.NewStatusResult("OK", nil)
}

func (s *stubCmdable) Get(_ context.Context, key string) *goredis.StringCmd {
	if s.err != nil {
		return goredis.NewStringResult("", s.err)
	}
	value, ok := s.data[key]
	if !ok {
		return goredis.NewStringResult("", goredis.Nil)
	}
	return goredis.NewStringResult(value, nil)
}

func (s *stubCmdable) Expire(_ context.Context, key string, ttl time.Duration) *goredis.BoolCmd {
	s.expires++
	s.ttls[key] = ttl
	return goredis.NewBoolResult(true, nil)
}

func (s *stubCmdable) Del(_ context.Context, keys ...string) *goredis.IntCmd {
	for _, key := range keys {
		delete(s.data, key)
	}
	return goredis.NewIntResult(int64(len(keys)), nil)
}
