package blobio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"time"
)

var ErrNotFound = errors.New("blob not found")

type BlobInfo struct {
	Size  int64
	Mtime time.Time
}

// IBlobIO 以entry id为key的对象存储, 不假设底层是文件系统
type IBlobIO interface {
	Name() string
	// Write 覆盖写入, size<0表示长度未知
	Write(ctx context.Context, key string, r io.Reader, size int64) error
	Read(ctx context.Context, key string) (io.ReadCloser, error)
	Copy(ctx context.Context, src, dst string) error
	// Delete key不存在时不报错
	Delete(ctx context.Context, key string) error
	Stat(ctx context.Context, key string) (*BlobInfo, error)
}

type CreateFunc func(args interface{}) (IBlobIO, error)

var mp = make(map[string]CreateFunc)

func Register(name string, fn CreateFunc) {
	mp[name] = fn
}

func Create(name string, args interface{}) (IBlobIO, error) {
	fn, ok := mp[name]
	if !ok {
		return nil, fmt.Errorf("blob io type not found, name:%s", name)
	}
	return fn(args)
}

func List() []string {
	rs := make([]string, 0, len(mp))
	for name := range mp {
		rs = append(rs, name)
	}
	sort.Strings(rs)
	return rs
}
