package local

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/xxxsen/davbox/blobio"
	"github.com/xxxsen/davbox/utils"

	commonutils "github.com/xxxsen/common/utils"
)

type config struct {
	Dir string `json:"dir"`
}

// localBlobIO 按 dir/<xxhash桶>/<key> 存储
type localBlobIO struct {
	dir string
}

func New(dir string) (blobio.IBlobIO, error) {
	if len(dir) == 0 {
		return nil, fmt.Errorf("no local blob dir provided")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create blob dir failed, err:%w", err)
	}
	return &localBlobIO{dir: dir}, nil
}

func (l *localBlobIO) Name() string {
	return "local"
}

func (l *localBlobIO) location(key string) string {
	return filepath.Join(l.dir, utils.EntryIdBucket(key), key)
}

func (l *localBlobIO) Write(ctx context.Context, key string, r io.Reader, size int64) error {
	loc := l.location(key)
	n, err := utils.SafeSaveIOToFile(loc, r)
	if err != nil {
		return err
	}
	if size >= 0 && n != size {
		_ = os.Remove(loc)
		return fmt.Errorf("short write, expect:%d, got:%d", size, n)
	}
	return nil
}

func (l *localBlobIO) Read(ctx context.Context, key string) (io.ReadCloser, error) {
	f, err := os.Open(l.location(key))
	if err != nil {
		return nil, convErr(err)
	}
	return f, nil
}

func (l *localBlobIO) Copy(ctx context.Context, src, dst string) error {
	f, err := os.Open(l.location(src))
	if err != nil {
		return convErr(err)
	}
	defer f.Close()
	if _, err := utils.SafeSaveIOToFile(l.location(dst), f); err != nil {
		return err
	}
	return nil
}

func (l *localBlobIO) Delete(ctx context.Context, key string) error {
	if err := os.Remove(l.location(key)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

func (l *localBlobIO) Stat(ctx context.Context, key string) (*blobio.BlobInfo, error) {
	st, err := os.Stat(l.location(key))
	if err != nil {
		return nil, convErr(err)
	}
	return &blobio.BlobInfo{Size: st.Size(), Mtime: st.ModTime()}, nil
}

func convErr(err error) error {
	if errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%w, err:%w", blobio.ErrNotFound, err)
	}
	return err
}

func create(args interface{}) (blobio.IBlobIO, error) {
	c := &config{}
	if err := commonutils.ConvStructJson(args, c); err != nil {
		return nil, err
	}
	return New(c.Dir)
}

func init() {
	blobio.Register("local", create)
}
