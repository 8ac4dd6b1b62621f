package cacheadapter

import (
	"context"
	"time"

	"github.com/sajithdilhan/ECommerceBackend/contexts/identity/user-service/ports"
	"github.com/sajithdilhan/ECommerceBackend/internal/platform/cache"
)

// UserCache adapts the platform cache-aside layer to the user-service port.
type UserCache struct {
	Cache *cache.Cache
	Keys  cache.KeyConfig
	TTL   time.Duration
}

func (c UserCache) GetOrLoadUser(ctx context.Context, id string, loader func(context.Context) (ports.User, error)) (ports.User, error) {
	return cache.GetOrLoad(ctx, c.Cache, c.Keys.UserKey(id), c.TTL, loader)
}

func (c UserCache) PutUser(ctx context.Context, user ports.User) error {
	return c.Cache.Put(ctx, c.Keys.UserKey(user.ID), user, c.TTL)
}
