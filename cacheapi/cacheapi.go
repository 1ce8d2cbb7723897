package cacheapi

import (
	"context"
	"errors"
)

var ErrCacheKeyNotExist = errors.New("cache key not exist")

type ICache[K comparable, V any] interface {
	Get(ctx context.Context, k K) (V, error)
	Set(ctx context.Context, k K, v V) error
	Del(ctx context.Context, k K) error
}

// LoadFunc 回源函数, 只需要返回存在的key
type LoadFunc[K comparable, V any] func(ctx context.Context, miss []K) (map[K]V, error)

func Load[K comparable, V any](ctx context.Context, c ICache[K, V], k K, fn LoadFunc[K, V]) (V, bool, error) {
	rs, err := LoadMany(ctx, c, []K{k}, fn)
	if err != nil {
		var zero V
		return zero, false, err
	}
	v, ok := rs[k]
	return v, ok, nil
}

func LoadMany[K comparable, V any](ctx context.Context, c ICache[K, V], ks []K, fn LoadFunc[K, V]) (map[K]V, error) {
	rs := make(map[K]V, len(ks))
	var miss []K
	for _, k := range ks {
		v, err := c.Get(ctx, k)
		if errors.Is(err, ErrCacheKeyNotExist) {
			miss = append(miss, k)
			continue
		}
		if err != nil {
			return nil, err
		}
		rs[k] = v
	}
	if len(miss) == 0 {
		return rs, nil
	}
	loaded, err := fn(ctx, miss)
	if err != nil {
		return nil, err
	}
	for k, v := range loaded {
		rs[k] = v
		_ = c.Set(ctx, k, v)
	}
	return rs, nil
}

func DelMany[K comparable, V any](ctx context.Context, c ICache[K, V], ks []K) {
	for _, k := range ks {
		_ = c.Del(ctx, k)
	}
}
