package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// PostCache 公开文章详情的旁路缓存（cache-aside）。
// 只缓存 published 且 is_public 的渲染结果，任何写操作后按 slug 失效。
type PostCache struct {
	cli *redis.Client
	ttl time.Duration
}

func NewPostCache(cli *redis.Client, ttl time.Duration) *PostCache {
	return &PostCache{cli: cli, ttl: ttl}
}

func key(slug string) string { return "post:slug:" + slug }

// Get 命中返回缓存值；未命中或未启用返回 ok=false
func (c *PostCache) Get(ctx context.Context, slug string) ([]byte, bool) {
	if c == nil {
		return nil, false
	}
	val, err := c.cli.Get(ctx, key(slug)).Bytes()
	if err != nil {
		return nil, false
	}
	return val, true
}

// Set 写入为尽力而为，失败不影响请求
func (c *PostCache) Set(ctx context.Context, slug string, val []byte) {
	if c == nil {
		return
	}
	_ = c.cli.Set(ctx, key(slug), val, c.ttl).Err()
}

func (c *PostCache) Del(ctx context.Context, slug string) {
	if c == nil {
		return
	}
	_ = c.cli.Del(ctx, key(slug)).Err()
}
