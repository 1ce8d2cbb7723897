package blobio

import (
	"context"
	"io"
)

// rotateIO 落盘前对每个字节做偏移, 读取时反向还原
type rotateIO struct {
	IBlobIO
	val int
}

func NewRotateIO(impl IBlobIO, val int) IBlobIO {
	if val%256 == 0 {
		return impl
	}
	return &rotateIO{IBlobIO: impl, val: val}
}

func (rt *rotateIO) Write(ctx context.Context, key string, r io.Reader, size int64) error {
	return rt.IBlobIO.Write(ctx, key, &rotateReader{r: r, val: rt.val}, size)
}

func (rt *rotateIO) Read(ctx context.Context, key string) (io.ReadCloser, error) {
	rc, err := rt.IBlobIO.Read(ctx, key)
	if err != nil {
		return nil, err
	}
	return &rotateReadCloser{rotateReader: rotateReader{r: rc, val: -rt.val}, c: rc}, nil
}

type rotateReader struct {
	r   io.Reader
	val int
}

func (r *rotateReader) Read(p []byte) (int, error) {
	n, err := r.r.Read(p)
	for i := 0; i < n; i++ {
		p[i] = byte(int(p[i]) + r.val)
	}
	return n, err
}

type rotateReadCloser struct {
	rotateReader
	c io.Closer
}

func (r *rotateReadCloser) Close() error {
	return r.c.Close()
}
