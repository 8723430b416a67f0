package repository

import (
	"context"
	"os"
	"testing"
	"time"

	redis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Integration-style test: runs only if REDIS_ADDR env is set.
func TestRedisKVIntegration(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set; skipping integration test")
	}

	client := redis.NewClient(&redis.Options{Addr: addr, Password: os.Getenv("REDIS_PASSWORD")})
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	prefix := "taskboard-test:" + time.Now().Format("150405.000000") + ":"
	kv := NewRedisKV(client, prefix)
	defer client.Del(context.Background(), prefix+"tasks")

	require.NoError(t, kv.Ping(ctx))

	_, found, err := kv.Read(ctx, "tasks")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, kv.Write(ctx, "tasks", `[]`))
	v, found, err := kv.Read(ctx, "tasks")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, `[]`, v)
}
