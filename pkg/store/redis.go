package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"

	"github.com/redis/go-redis/v9"

	"github.com/kmathys/orgcanvas/pkg/chart"
)

const (
	redisKeyPrefix = "orgcanvas:chart:"
	redisIndexKey  = "orgcanvas:charts"
)

// RedisConfig holds Redis connection parameters.
type RedisConfig struct {
	Addr     string // host:port
	Password string
	DB       int
}

// RedisStore is a Redis-backed store for multi-instance deployments.
// Charts are stored as JSON values under prefixed keys, with a set
// tracking the stored names.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore connects to Redis and verifies the connection.
func NewRedisStore(ctx context.Context, cfg RedisConfig) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	return &RedisStore{client: client}, nil
}

func (s *RedisStore) Save(ctx context.Context, name string, c chart.Chart) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal chart: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, redisKeyPrefix+name, data, 0)
	pipe.SAdd(ctx, redisIndexKey, name)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("save chart %s: %w", name, err)
	}
	return nil
}

func (s *RedisStore) Load(ctx context.Context, name string) (chart.Chart, error) {
	if err := ValidateName(name); err != nil {
		return chart.Chart{}, err
	}
	data, err := s.client.Get(ctx, redisKeyPrefix+name).Bytes()
	if errors.Is(err, redis.Nil) {
		return chart.Chart{}, fmt.Errorf("%s: %w", name, ErrNotFound)
	}
	if err != nil {
		return chart.Chart{}, fmt.Errorf("load chart %s: %w", name, err)
	}

	var c chart.Chart
	if err := json.Unmarshal(data, &c); err != nil {
		return chart.Chart{}, fmt.Errorf("parse chart %s: %w", name, err)
	}
	return c, nil
}

func (s *RedisStore) List(ctx context.Context) ([]string, error) {
	names, err := s.client.SMembers(ctx, redisIndexKey).Result()
	if err != nil {
		return nil, fmt.Errorf("list charts: %w", err)
	}
	slices.Sort(names)
	return names, nil
}

func (s *RedisStore) Delete(ctx context.Context, name string) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	pipe := s.client.TxPipeline()
	pipe.Del(ctx, redisKeyPrefix+name)
	pipe.SRem(ctx, redisIndexKey, name)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("delete chart %s: %w", name, err)
	}
	return nil
}

func (s *RedisStore) Close() error { return s.client.Close() }

var _ Store = (*RedisStore)(nil)
