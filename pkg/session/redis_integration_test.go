//go:build integration

package session

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/matzehuels/linkscope/pkg/cache"
)

func TestRedisStore(t *testing.T) {
	url := os.Getenv("LINKSCOPE_TEST_REDIS_URL")
	if url == "" {
		t.Skip("LINKSCOPE_TEST_REDIS_URL not set")
	}
	ctx := context.Background()
	client, err := cache.DialRedis(ctx, url)
	if err != nil {
		t.Fatalf("DialRedis: %v", err)
	}
	defer client.Close()

	store := NewRedisStore(client, "linkscope:test:session:")
	rec := testRecord("redis-1", time.Minute)
	if err := store.Set(ctx, rec); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, err := store.Get(ctx, "redis-1")
	if err != nil || got == nil || got.GraphID != rec.GraphID {
		t.Fatalf("Get = %+v, %v", got, err)
	}
	ttl := client.TTL(ctx, "linkscope:test:session:redis-1").Val()
	if ttl <= 0 || ttl > time.Minute {
		t.Errorf("key TTL = %v", ttl)
	}
	if err := store.Delete(ctx, "redis-1"); err != nil {
		t.Fatal(err)
	}
	if got, _ := store.Get(ctx, "redis-1"); got != nil {
		t.Error("record survived delete")
	}
	if err := store.Set(ctx, testRecord("redis-2", -time.Second)); err != nil {
		t.Fatal(err)
	}
	if n := client.Exists(ctx, "linkscope:test:session:redis-2").Val(); n != 0 {
		t.Error("expired record was written")
	}
}
