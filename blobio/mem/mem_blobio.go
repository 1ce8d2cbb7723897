package mem

import (
	"bytes"
	"context"
	"io"
	"sync"
	"time"

	"github.com/xxxsen/davbox/blobio"
)

type memBlob struct {
	data  []byte
	mtime time.Time
}

type memBlobIO struct {
	m sync.Map
}

func New() blobio.IBlobIO {
	return &memBlobIO{}
}

func (m *memBlobIO) Name() string {
	return "mem"
}

func (m *memBlobIO) Write(ctx context.Context, key string, r io.Reader, size int64) error {
	raw, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	m.m.Store(key, &memBlob{data: raw, mtime: time.Now()})
	return nil
}

func (m *memBlobIO) load(key string) (*memBlob, error) {
	v, ok := m.m.Load(key)
	if !ok {
		return nil, blobio.ErrNotFound
	}
	return v.(*memBlob), nil
}

func (m *memBlobIO) Read(ctx context.Context, key string) (io.ReadCloser, error) {
	b, err := m.load(key)
	if err != nil {
		return nil, err
	}
	return io.NopCloser(bytes.NewReader(b.data)), nil
}

func (m *memBlobIO) Copy(ctx context.Context, src, dst string) error {
	b, err := m.load(src)
	if err != nil {
		return err
	}
	m.m.Store(dst, &memBlob{data: append([]byte(nil), b.data...), mtime: time.Now()})
	return nil
}

func (m *memBlobIO) Delete(ctx context.Context, key string) error {
	m.m.Delete(key)
	return nil
}

func (m *memBlobIO) Stat(ctx context.Context, key string) (*blobio.BlobInfo, error) {
	b, err := m.load(key)
	if err != nil {
		return nil, err
	}
	return &blobio.BlobInfo{Size: int64(len(b.data)), Mtime: b.mtime}, nil
}

func create(args interface{}) (blobio.IBlobIO, error) {
	return New(), nil
}

func init() {
	blobio.Register("mem", create)
}
