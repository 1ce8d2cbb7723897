package cachewrap

import (
	"context"

	"github.com/dgraph-io/ristretto/v2"
	"github.com/xxxsen/davbox/cacheapi"
)

type RistrettoKey interface {
	uint64 | string | byte | int | int32 | uint32 | int64
}

type ristrettoCache[K RistrettoKey, V any] struct {
	c *ristretto.Cache[K, V]
}

func (r *ristrettoCache[K, V]) Get(ctx context.Context, k K) (V, error) {
	if v, ok := r.c.Get(k); ok {
		return v, nil
	}
	var zero V
	return zero, cacheapi.ErrCacheKeyNotExist
}

// Set cost传0, 由创建cache时配置的Cost函数计算
func (r *ristrettoCache[K, V]) Set(ctx context.Context, k K, v V) error {
	r.c.Set(k, v, 0)
	return nil
}

func (r *ristrettoCache[K, V]) Del(ctx context.Context, k K) error {
	r.c.Del(k)
	return nil
}

func WrapRistretto[K RistrettoKey, V any](c *ristretto.Cache[K, V]) cacheapi.ICache[K, V] {
	return &ristrettoCache[K, V]{c: c}
}
