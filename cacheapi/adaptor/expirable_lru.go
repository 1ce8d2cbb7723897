package cachewrap

import (
	"context"

	explru "github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/xxxsen/davbox/cacheapi"
)

type expirableLru[K comparable, V any] struct {
	c *explru.LRU[K, V]
}

func (e *expirableLru[K, V]) Get(ctx context.Context, k K) (V, error) {
	if v, ok := e.c.Get(k); ok {
		return v, nil
	}
	var zero V
	return zero, cacheapi.ErrCacheKeyNotExist
}

func (e *expirableLru[K, V]) Set(ctx context.Context, k K, v V) error {
	e.c.Add(k, v)
	return nil
}

func (e *expirableLru[K, V]) Del(ctx context.Context, k K) error {
	e.c.Remove(k)
	return nil
}

func WrapExpirableLru[K comparable, V any](c *explru.LRU[K, V]) cacheapi.ICache[K, V] {
	return &expirableLru[K, V]{c: c}
}
