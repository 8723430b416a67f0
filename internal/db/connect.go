package db

import (
	"context"
	"fmt"
	"time"

	"taskboard/internal/config"
	"taskboard/internal/logger"
	"taskboard/internal/repository"

	"github.com/jackc/pgx/v5/pgxpool"
	redis "github.com/redis/go-redis/v9"
)

func ConnectPostgres(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("create database pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	logger.Info("database connected")
	return pool, nil
}

func ConnectRedis(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis %s: %w", addr, err)
	}

	logger.Info("redis connected", "addr", addr)
	return client, nil
}

// Storage is the opened task backend plus the optional shared Redis client.
type Storage struct {
	KV    repository.KV
	Redis *redis.Client

	closers []func()
}

func (s *Storage) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
}

// Open connects the backend named by cfg.KVDriver. When REDIS_ADDR is set a
// Redis client is opened as well (it backs rate limiting). For drivers other
// than redis a failed Redis ping only disables it.
func Open(ctx context.Context, cfg *config.Config) (*Storage, error) {
	s := &Storage{}

	if cfg.RedisAddr != "" {
		client, err := ConnectRedis(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			if cfg.KVDriver == config.DriverRedis {
				return nil, err
			}
			logger.Warn("redis unavailable, falling back to in-process rate limiting", "error", err)
		} else {
			s.Redis = client
			s.closers = append(s.closers, func() { client.Close() })
		}
	}

	switch cfg.KVDriver {
	case config.DriverMemory:
		s.KV = repository.NewMemoryKV()

	case config.DriverSQLite:
		kv, err := repository.OpenSQLite(cfg.SQLitePath)
		if err != nil {
			s.Close()
			return nil, err
		}
		s.KV = kv
		s.closers = append(s.closers, func() { kv.Close() })

	case config.DriverPostgres:
		pool, err := ConnectPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			s.Close()
			return nil, err
		}
		s.closers = append(s.closers, pool.Close)
		kv := repository.NewPostgresKV(pool)
		if err := kv.EnsureSchema(ctx); err != nil {
			s.Close()
			return nil, fmt.Errorf("ensure kv_store: %w", err)
		}
		s.KV = kv

	case config.DriverRedis:
		s.KV = repository.NewRedisKV(s.Redis, cfg.RedisPrefix)

	default:
		s.Close()
		return nil, fmt.Errorf("unknown kv driver %q", cfg.KVDriver)
	}

	logger.Info("task storage ready", "driver", cfg.KVDriver)
	return s, nil
}
