package filemgr

import (
	"bytes"
	"context"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xxxsen/davbox/blobio"
)

func TestBlobCacheLoad(t *testing.T) {
	ctx := context.Background()
	c, err := NewBlobCache(&BlobCacheConfig{MaxMem: 1 << 20, KeySizeLimit: 8})
	require.NoError(t, err)
	impl := c.(*blobCache)
	misses := 0
	onMiss := func(data string) func(ctx context.Context) (io.ReadCloser, error) {
		return func(ctx context.Context) (io.ReadCloser, error) {
			misses++
			return io.NopCloser(bytes.NewReader([]byte(data))), nil
		}
	}
	info := &blobio.BlobInfo{Size: 2, Mtime: time.Unix(100, 0)}
	for i := 0; i < 5; i++ {
		rc, err := c.Load(ctx, "a", info, onMiss("hi"))
		require.NoError(t, err)
		raw, err := io.ReadAll(rc)
		require.NoError(t, err)
		assert.Equal(t, "hi", string(raw))
		if i == 0 {
			//ristretto写入是异步的
			_, _ = impl.cache.Get(ctx, impl.cacheKey("a", info))
			time.Sleep(10 * time.Millisecond)
		}
	}
	assert.Less(t, misses, 5)

	//内容变更后key随之变化
	info2 := &blobio.BlobInfo{Size: 3, Mtime: time.Unix(200, 0)}
	rc, err := c.Load(ctx, "a", info2, onMiss("new"))
	require.NoError(t, err)
	raw, _ := io.ReadAll(rc)
	assert.Equal(t, "new", string(raw))

	//超过限制的文件不会进入缓存
	big := &blobio.BlobInfo{Size: 100}
	before := misses
	for i := 0; i < 3; i++ {
		rc, err := c.Load(ctx, "big", big, onMiss("0123456789"))
		require.NoError(t, err)
		_ = rc.Close()
	}
	assert.Equal(t, before+3, misses)
}
