package cacheadapter

import (
	"context"
	"time"

	"github.com/sajithdilhan/ECommerceBackend/contexts/commerce/order-service/ports"
	"github.com/sajithdilhan/ECommerceBackend/internal/platform/cache"
)

// OrderCache adapts the platform cache-aside layer to the order-service port.
type OrderCache struct {
	Cache *cache.Cache
	Keys  cache.KeyConfig
	TTL   time.Duration
}

func (c OrderCache) GetOrLoadOrder(ctx context.Context, id string, loader func(context.Context) (ports.Order, error)) (ports.Order, error) {
	return cache.GetOrLoad(ctx, c.Cache, c.Keys.OrderKey(id), c.TTL, loader)
}

func (c OrderCache) PutOrder(ctx context.Context, order ports.Order) error {
	return c.Cache.Put(ctx, c.Keys.OrderKey(order.ID), order, c.TTL)
}
