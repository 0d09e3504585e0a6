package github

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/hitoshi/devconnect/internal/model"
)

const cacheKeyPrefix = "devconnect:github:repos:"

// RedisCache はRedisを使用したリポジトリ一覧キャッシュ。
// 値はJSONで保存し、TTL経過後に失効する。
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache はRedisCacheを生成する。
func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

// NewRedisClient はredis://形式のURLからクライアントを生成する。
func NewRedisClient(redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}
	return redis.NewClient(opts), nil
}

// Get はキャッシュ済みのリポジトリ一覧を返す。
func (c *RedisCache) Get(ctx context.Context, username string) ([]model.Repo, bool, error) {
	b, err := c.client.Get(ctx, cacheKey(username)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get cached repos: %w", err)
	}

	var repos []model.Repo
	if err := json.Unmarshal(b, &repos); err != nil {
		return nil, false, fmt.Errorf("failed to decode cached repos: %w", err)
	}
	return repos, true, nil
}

// Set はリポジトリ一覧を保存する。
func (c *RedisCache) Set(ctx context.Context, username string, repos []model.Repo) error {
	b, err := json.Marshal(repos)
	if err != nil {
		return fmt.Errorf("failed to encode repos: %w", err)
	}
	if err := c.client.Set(ctx, cacheKey(username), b, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache repos: %w", err)
	}
	return nil
}

// cacheKey はユーザー名の大文字小文字を区別しないキーを返す。
func cacheKey(username string) string {
	return cacheKeyPrefix + strings.ToLower(username)
}

var _ RepoCache = (*RedisCache)(nil)
