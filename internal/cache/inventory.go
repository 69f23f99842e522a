package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	UserKeyPrefix     = "user:%d"
	PostKeyPrefix     = "post:%d"
	CategoryKeyPrefix = "category:%d"
	PostsListVersion  = "posts:list:version"
	PostsListPrefix   = "posts:list:v%d:page:%d"
)

const (
	UserTTL     = 5 * time.Minute
	PostTTL     = 30 * time.Minute
	CategoryTTL = 30 * time.Minute
	ListTTL     = 1 * time.Minute
)

func UserKey(userID uint) string {
	return fmt.Sprintf(UserKeyPrefix, userID)
}

func PostKey(postID uint) string {
	return fmt.Sprintf(PostKeyPrefix, postID)
}

func CategoryKey(categoryID uint) string {
	return fmt.Sprintf(CategoryKeyPrefix, categoryID)
}

// PostsListKey returns the cache key for a paginated posts listing. The key
// embeds a version counter so a single INCR invalidates every cached page.
func PostsListKey(ctx context.Context, page int) string {
	var version int64
	if client != nil {
		version, _ = client.Get(ctx, PostsListVersion).Int64()
	}
	return fmt.Sprintf(PostsListPrefix, version, page)
}

// Aside implements the cache-aside pattern: on hit, dest is populated from
// the cached JSON value; on miss, fetch is called and its result is stored
// under key with the given TTL. A nil client degrades to calling fetch
// directly.
func Aside(ctx context.Context, key string, dest any, ttl time.Duration, fetch func() error) error {
	if client == nil {
		return fetch()
	}

	raw, err := client.Get(ctx, key).Bytes()
	if err == nil {
		if unmarshalErr := json.Unmarshal(raw, dest); unmarshalErr == nil {
			return nil
		}
		// Corrupt entry, drop it and fall through to fetch
		client.Del(ctx, key)
	} else if err != redis.Nil {
		// Redis unavailable, serve from source
		return fetch()
	}

	if err := fetch(); err != nil {
		return err
	}

	if encoded, err := json.Marshal(dest); err == nil {
		client.Set(ctx, key, encoded, ttl)
	}
	return nil
}

func Invalidate(ctx context.Context, key string) {
	if client != nil {
		client.Del(ctx, key)
	}
}

func InvalidateUser(ctx context.Context, userID uint) {
	Invalidate(ctx, UserKey(userID))
}

func InvalidatePost(ctx context.Context, postID uint) {
	Invalidate(ctx, PostKey(postID))
}

func InvalidateCategory(ctx context.Context, categoryID uint) {
	Invalidate(ctx, CategoryKey(categoryID))
}

// InvalidatePostsList bumps the list version so all cached pages expire.
func InvalidatePostsList(ctx context.Context) {
	if client != nil {
		client.Incr(ctx, PostsListVersion)
	}
}
