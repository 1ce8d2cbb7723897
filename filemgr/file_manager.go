package filemgr

import (
	"context"
	"io"
	"time"

	"github.com/xxxsen/davbox/blobio"
	"github.com/xxxsen/davbox/entity"
)

// IFileManager 组合entry元数据与blob内容, 对webdav层屏蔽具体存储
type IFileManager interface {
	ListEntries(ctx context.Context, owner string) ([]*entity.FileEntry, error)
	GetEntry(ctx context.Context, id string) (*entity.FileEntry, bool, error)
	IsFolder(ctx context.Context, id string) (bool, error)
	CreateEntry(ctx context.Context, owner string, parent string, name string, kind int32) (*entity.FileEntry, error)
	MoveEntry(ctx context.Context, id string, parent string, name string) error
	TouchEntry(ctx context.Context, id string, mtime time.Time) error
	RemoveEntries(ctx context.Context, ents []*entity.FileEntry) error
	WriteContent(ctx context.Context, id string, r io.Reader, size int64) error
	OpenContent(ctx context.Context, id string) (io.ReadCloser, *blobio.BlobInfo, error)
	StatContent(ctx context.Context, id string) (*blobio.BlobInfo, error)
	CopyContent(ctx context.Context, src string, dst string) error
}
