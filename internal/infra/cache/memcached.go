package cache

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/bradfitz/gomemcache/memcache"
	"github.com/zeebo/xxh3"

	"github.com/totegamma/weird/leaf"
)

const linkTTL = 60 * 60

// MemcachedLinkCache shares username lookups between instances. Keys are
// hashed since usernames may contain characters memcached rejects.
type MemcachedLinkCache struct {
	mc *memcache.Client
}

func NewMemcachedLinkCache(mc *memcache.Client) *MemcachedLinkCache {
	return &MemcachedLinkCache{mc: mc}
}

func linkKey(username string) string {
	return "weird:username:" + strconv.FormatUint(xxh3.HashString(username), 16)
}

func (c *MemcachedLinkCache) Get(ctx context.Context, username string) (leaf.Link, bool) {
	item, err := c.mc.Get(linkKey(username))
	if err != nil {
		if err != memcache.ErrCacheMiss {
			slog.WarnContext(ctx, "link cache get failed", slog.String("error", err.Error()), slog.String("module", "cache"))
		}
		return leaf.Link{}, false
	}
	link, err := leaf.ParseLink(string(item.Value))
	if err != nil {
		return leaf.Link{}, false
	}
	return link, true
}

func (c *MemcachedLinkCache) Set(ctx context.Context, username string, link leaf.Link) {
	err := c.mc.Set(&memcache.Item{
		Key:        linkKey(username),
		Value:      []byte(link.String()),
		Expiration: linkTTL,
	})
	if err != nil {
		slog.WarnContext(ctx, "link cache set failed", slog.String("error", err.Error()), slog.String("module", "cache"))
	}
}

func (c *MemcachedLinkCache) Delete(ctx context.Context, username string) {
	err := c.mc.Delete(linkKey(username))
	if err != nil && err != memcache.ErrCacheMiss {
		slog.WarnContext(ctx, "link cache delete failed", slog.String("error", err.Error()), slog.String("module", "cache"))
	}
}
