package db

import (
	"context"
	"path/filepath"
	"testing"

	"taskboard/internal/config"
	"taskboard/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenMemory(t *testing.T) {
	s, err := Open(context.Background(), &config.Config{KVDriver: config.DriverMemory})
	require.NoError(t, err)
	defer s.Close()

	assert.IsType(t, &repository.MemoryKV{}, s.KV)
	assert.Nil(t, s.Redis)
}

func TestOpenSQLite(t *testing.T) {
	ctx := context.Background()
	cfg := &config.Config{
		KVDriver:   config.DriverSQLite,
		SQLitePath: filepath.Join(t.TempDir(), "tasks.db"),
	}

	s, err := Open(ctx, cfg)
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.KV.Write(ctx, "tasks", `[]`))
	v, found, err := s.KV.Read(ctx, "tasks")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, `[]`, v)
}

func TestOpenUnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), &config.Config{KVDriver: "etcd"})
	assert.Error(t, err)
}
