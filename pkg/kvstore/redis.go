package kvstore

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/slicemaster/storefront/config"
)

// redisStore keeps client state in Redis so several terminals share one cart
// and session. Values never expire; the storefront owns their lifecycle.
type redisStore struct {
	rdb *redis.Client
	ctx context.Context
}

func openRedis() (*redisStore, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     config.RedisAddr(),
		Password: config.RedisPassword(),
		DB:       0,
	})

	ctx := context.Background()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("kvstore/redis: ping: %w", err)
	}
	return &redisStore{rdb: rdb, ctx: ctx}, nil
}

func redisKey(key string) string { return "slicemaster:state:" + key }

func (s *redisStore) Get(key string, dest interface{}) bool {
	val, err := s.rdb.Get(s.ctx, redisKey(key)).Result()
	if err != nil {
		return false
	}
	return json.Unmarshal([]byte(val), dest) == nil
}

func (s *redisStore) Put(key string, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("kvstore/redis: marshal %s: %w", key, err)
	}
	return s.rdb.Set(s.ctx, redisKey(key), raw, 0).Err()
}

func (s *redisStore) Delete(key string) error {
	return s.rdb.Del(s.ctx, redisKey(key)).Err()
}
