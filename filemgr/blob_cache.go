package filemgr

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/dgraph-io/ristretto/v2"
	"github.com/dustin/go-humanize"
	"github.com/xxxsen/common/logutil"
	"github.com/xxxsen/davbox/blobio"
	"github.com/xxxsen/davbox/cacheapi"
	cachewrap "github.com/xxxsen/davbox/cacheapi/adaptor"
	"go.uber.org/zap"
)

const (
	defaultBlobCacheSize       = 16 * 1024 * 1024
	defaultBlobCacheKeyLimit   = 64 * 1024
	defaultBlobCacheCounterMul = 10
)

type IBlobCache interface {
	Load(ctx context.Context, id string, info *blobio.BlobInfo, onMiss func(ctx context.Context) (io.ReadCloser, error)) (io.ReadCloser, error)
}

type BlobCacheConfig struct {
	MaxMem       int64
	KeySizeLimit int64
}

// blobCache 小文件内存缓存, 大于KeySizeLimit的文件直接回源.
// key带上size与mtime, 内容被覆盖后旧的缓存项不会再被命中, 等待自然淘汰
type blobCache struct {
	c     *BlobCacheConfig
	cache cacheapi.ICache[string, []byte]
}

func NewBlobCache(c *BlobCacheConfig) (IBlobCache, error) {
	if c.MaxMem <= 0 {
		c.MaxMem = defaultBlobCacheSize
	}
	if c.KeySizeLimit <= 0 {
		c.KeySizeLimit = defaultBlobCacheKeyLimit
	}
	cc, err := ristretto.NewCache(&ristretto.Config[string, []byte]{
		NumCounters: c.MaxMem / c.KeySizeLimit * defaultBlobCacheCounterMul,
		MaxCost:     c.MaxMem,
		BufferItems: 64,
		Cost: func(value []byte) int64 {
			return int64(len(value))
		},
		OnEvict: func(item *ristretto.Item[[]byte]) {
			logutil.GetLogger(context.Background()).Debug("evict blob from cache", zap.String("size", humanize.IBytes(uint64(len(item.Value)))))
		},
	})
	if err != nil {
		return nil, err
	}
	return &blobCache{c: c, cache: cachewrap.WrapRistretto(cc)}, nil
}

func (b *blobCache) cacheKey(id string, info *blobio.BlobInfo) string {
	return fmt.Sprintf("%s#%d#%d", id, info.Size, info.Mtime.UnixNano())
}

func (b *blobCache) Load(ctx context.Context, id string, info *blobio.BlobInfo, onMiss func(ctx context.Context) (io.ReadCloser, error)) (io.ReadCloser, error) {
	if info.Size > b.c.KeySizeLimit {
		return onMiss(ctx)
	}
	key := b.cacheKey(id, info)
	if raw, err := b.cache.Get(ctx, key); err == nil {
		logutil.GetLogger(ctx).Debug("read blob from cache", zap.String("id", id))
		return io.NopCloser(bytes.NewReader(raw)), nil
	}
	rc, err := onMiss(ctx)
	if err != nil {
		return nil, err
	}
	raw, err := io.ReadAll(rc)
	_ = rc.Close()
	if err != nil {
		return nil, err
	}
	_ = b.cache.Set(ctx, key, raw)
	return io.NopCloser(bytes.NewReader(raw)), nil
}

type noopBlobCache struct{}

func NoopBlobCache() IBlobCache {
	return noopBlobCache{}
}

func (noopBlobCache) Load(ctx context.Context, id string, info *blobio.BlobInfo, onMiss func(ctx context.Context) (io.ReadCloser, error)) (io.ReadCloser, error) {
	return onMiss(ctx)
}
