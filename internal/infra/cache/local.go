package cache

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/totegamma/weird/leaf"
)

// LocalLinkCache keeps username lookups in process memory.
type LocalLinkCache struct {
	c *gocache.Cache
}

func NewLocalLinkCache(ttl time.Duration) *LocalLinkCache {
	return &LocalLinkCache{c: gocache.New(ttl, 2*ttl)}
}

func (l *LocalLinkCache) Get(ctx context.Context, username string) (leaf.Link, bool) {
	v, ok := l.c.Get(username)
	if !ok {
		return leaf.Link{}, false
	}
	return v.(leaf.Link).Join(), true
}

func (l *LocalLinkCache) Set(ctx context.Context, username string, link leaf.Link) {
	l.c.SetDefault(username, link.Join())
}

func (l *LocalLinkCache) Delete(ctx context.Context, username string) {
	l.c.Delete(username)
}
