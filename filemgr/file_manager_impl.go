package filemgr

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/xxxsen/davbox/blobio"
	"github.com/xxxsen/davbox/dao"
	"github.com/xxxsen/davbox/entity"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"
)

type defaultFileManager struct {
	entryDao dao.IFileEntryDao
	bio      blobio.IBlobIO
	cache    IBlobCache
}

func NewFileManager(entryDao dao.IFileEntryDao, bio blobio.IBlobIO, cache IBlobCache) IFileManager {
	if cache == nil {
		cache = NoopBlobCache()
	}
	return &defaultFileManager{
		entryDao: entryDao,
		bio:      bio,
		cache:    cache,
	}
}

func (d *defaultFileManager) ListEntries(ctx context.Context, owner string) ([]*entity.FileEntry, error) {
	rsp, err := d.entryDao.ListEntry(ctx, &entity.ListEntryRequest{OwnerId: owner})
	if err != nil {
		return nil, fmt.Errorf("list entry failed, owner:%s, err:%w", owner, err)
	}
	return rsp.List, nil
}

func (d *defaultFileManager) GetEntry(ctx context.Context, id string) (*entity.FileEntry, bool, error) {
	rsp, err := d.entryDao.GetEntry(ctx, &entity.GetEntryRequest{EntryIds: []string{id}})
	if err != nil {
		return nil, false, err
	}
	if len(rsp.List) == 0 {
		return nil, false, nil
	}
	return rsp.List[0], true, nil
}

func (d *defaultFileManager) IsFolder(ctx context.Context, id string) (bool, error) {
	return dao.IsFolder(ctx, d.entryDao, id)
}

func (d *defaultFileManager) CreateEntry(ctx context.Context, owner string, parent string, name string, kind int32) (*entity.FileEntry, error) {
	rsp, err := d.entryDao.CreateEntry(ctx, &entity.CreateEntryRequest{
		OwnerId:  owner,
		ParentId: parent,
		FileName: name,
		FileKind: kind,
	})
	if err != nil {
		return nil, fmt.Errorf("create entry failed, name:%s, err:%w", name, err)
	}
	return rsp.Entry, nil
}

func (d *defaultFileManager) MoveEntry(ctx context.Context, id string, parent string, name string) error {
	_, err := d.entryDao.UpdateEntry(ctx, &entity.UpdateEntryRequest{
		EntryId:  id,
		ParentId: &parent,
		FileName: &name,
	})
	return err
}

func (d *defaultFileManager) TouchEntry(ctx context.Context, id string, mtime time.Time) error {
	ms := mtime.UnixMilli()
	_, err := d.entryDao.UpdateEntry(ctx, &entity.UpdateEntryRequest{
		EntryId: id,
		Mtime:   &ms,
	})
	return err
}

// RemoveEntries 先删元数据, 再尽力删除文件内容, 内容删除失败只记录日志
func (d *defaultFileManager) RemoveEntries(ctx context.Context, ents []*entity.FileEntry) error {
	ids := make([]string, 0, len(ents))
	for _, ent := range ents {
		ids = append(ids, ent.EntryId)
	}
	if _, err := d.entryDao.DeleteEntry(ctx, &entity.DeleteEntryRequest{EntryIds: ids}); err != nil {
		return fmt.Errorf("delete entry failed, err:%w", err)
	}
	for _, ent := range ents {
		if ent.IsFolder() {
			continue
		}
		if err := d.bio.Delete(ctx, ent.EntryId); err != nil {
			logutil.GetLogger(ctx).Error("delete blob failed", zap.Error(err), zap.String("id", ent.EntryId))
		}
	}
	return nil
}

func (d *defaultFileManager) WriteContent(ctx context.Context, id string, r io.Reader, size int64) error {
	if err := d.bio.Write(ctx, id, r, size); err != nil {
		return fmt.Errorf("write blob failed, id:%s, err:%w", id, err)
	}
	return d.TouchEntry(ctx, id, time.Now())
}

func (d *defaultFileManager) StatContent(ctx context.Context, id string) (*blobio.BlobInfo, error) {
	info, err := d.bio.Stat(ctx, id)
	if errors.Is(err, blobio.ErrNotFound) {
		return &blobio.BlobInfo{}, nil
	}
	return info, err
}

func (d *defaultFileManager) OpenContent(ctx context.Context, id string) (io.ReadCloser, *blobio.BlobInfo, error) {
	info, err := d.StatContent(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if info.Size == 0 {
		return io.NopCloser(eofReader{}), info, nil
	}
	rc, err := d.cache.Load(ctx, id, info, func(ctx context.Context) (io.ReadCloser, error) {
		return d.bio.Read(ctx, id)
	})
	if err != nil {
		return nil, nil, err
	}
	return rc, info, nil
}

func (d *defaultFileManager) CopyContent(ctx context.Context, src string, dst string) error {
	err := d.bio.Copy(ctx, src, dst)
	if errors.Is(err, blobio.ErrNotFound) {
		//源文件没有内容(空文件), 目标同样保持为空
		return nil
	}
	return err
}

type eofReader struct{}

func (eofReader) Read([]byte) (int, error) {
	return 0, io.EOF
}
