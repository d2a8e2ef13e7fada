package redis

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/angelmondragon/storefront/pkg/config"
	"github.com/redis/go-redis/v9"
)

func TestSessionValueLifecycle(t *testing.T) {
	ctx := context.Background()
	mock := newMockCmdable()
	client := NewWithCmdable(mock)

	key := client.SessionKey("sess-1", "order")
	if err := client.Set(ctx, key, `{"id":"o-1"}`, 30*time.Minute); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	got, err := client.Get(ctx, key)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got != `{"id":"o-1"}` {
		t.Fatalf("unexpected value %q", got)
	}
	if mock.ttls[key] != 30*time.Minute {
		t.Fatalf("expected ttl to be recorded, got %v", mock.ttls[key])
	}

	if err := client.Touch(ctx, key, time.Hour); err != nil {
		t.Fatalf("touch failed: %v", err)
	}
	if len(mock.expireCalls) != 1 || mock.expireCalls[0].ttl != time.Hour {
		t.Fatalf("expected one expire call with 1h, got %+v", mock.expireCalls)
	}

	if err := client.Del(ctx, key); err != nil {
		t.Fatalf("del failed: %v", err)
	}
	if _, err := client.Get(ctx, key); err != Nil {
		t.Fatalf("expected Nil after delete, got %v", err)
	}
}

func TestTouchSkipsNonPositiveTTL(t *testing.T) {
	mock := newMockCmdable()
	client := NewWithCmdable(mock)
	if err := client.Touch(context.Background(), "k", 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(mock.expireCalls) != 0 {
		t.Fatalf("expire should not be called for zero ttl")
	}
}

func TestUninitializedClientErrors(t *testing.T) {
	client := &Client{}
	if err := client.Set(context.Background(), "k", "v", 0); err == nil {
		t.Fatal("expected error from uninitialized client")
	}
	if err := client.Close(); err != nil {
		t.Fatalf("close on uninitialized client should be a no-op, got %v", err)
	}
}

func TestKeyBuilders(t *testing.T) {
	client := &Client{}
	if got := client.SessionKey("abc", "order"); got != "sf:session:abc:order" {
		t.Fatalf("unexpected session key %s", got)
	}
	if got := client.SessionKey(" ", "order"); got != "sf:session:order" {
		t.Fatalf("blank parts should be skipped, got %s", got)
	}
}

func TestOptionsFromConfig(t *testing.T) {
	if _, err := optionsFromConfig(config.RedisConfig{}); err == nil {
		t.Fatal("expected error without url or address")
	}
	opts, err := optionsFromConfig(config.RedisConfig{URL: "redis://localhost:6379/3", PoolSize: 7, DialTimeout: time.Second})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if opts.DB != 3 || opts.PoolSize != 7 || opts.DialTimeout != time.Second {
		t.Fatalf("unexpected options %+v", opts)
	}
}

type mockCmdable struct {
	data        map[string]string
	ttls        map[string]time.Duration
	expireCalls []expireCall
}

type expireCall struct {
	key string
	ttl time.Duration
}

func newMockCmdable() *mockCmdable {
	return &mockCmdable{
		data: make(map[string]string),
		ttls: make(map[string]time.Duration),
	}
}

func (m *mockCmdable) Ping(context.Context) *redis.StatusCmd {
	return redis.NewStatusResult("PONG", nil)
}

func (m *mockCmdable) Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd {
	m.data[key] = fmt.Sprint(value)
	m.ttls[key] = expiration
	return redis.NewStatusResult("OK", nil)
}

func (m *mockCmdable) Get(ctx context.Context, key string) *redis.StringCmd {
	v, ok := m.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (m *mockCmdable) Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd {
	m.expireCalls = append(m.expireCalls, expireCall{key: key, ttl: expiration})
	m.ttls[key] = expiration
	return redis.NewBoolResult(true, nil)
}

func (m *mockCmdable) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	for _, key := range keys {
		delete(m.data, key)
	}
	return redis.NewIntResult(int64(len(keys)), nil)
}
