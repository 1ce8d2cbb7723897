package webdav

import (
	"context"
	"fmt"

	"github.com/xxxsen/davbox/entity"
	"github.com/xxxsen/davbox/httpd"
	"github.com/xxxsen/davbox/metrics"
	"github.com/xxxsen/davbox/vfs"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"
)

func (h *WebdavHandler) handlePut(ctx context.Context, r *httpd.Request, tree *vfs.Tree) (*httpd.Response, error) {
	logger := logutil.GetLogger(ctx).With(zap.String("path", r.Path))
	parent, name, ok := tree.ResolveParent(r.Path)
	if ok && len(name) == 0 {
		return status(httpd.StatusMethodNotAllowed), nil
	}
	if !ok || !parent.IsFolder() {
		return status(httpd.StatusConflict), nil
	}
	alive, err := h.parentAlive(ctx, parent)
	if err != nil {
		return nil, err
	}
	if !alive {
		return status(httpd.StatusConflict), nil
	}
	var (
		entryId string
		created bool
	)
	if exist, ok := tree.Lookup(parent, name); ok {
		if exist.IsFolder() {
			return status(httpd.StatusMethodNotAllowed), nil
		}
		// 快照中存在但可能已被并发删除, 此时重新创建
		_, found, err := h.fmgr.GetEntry(ctx, exist.Id())
		if err != nil {
			return nil, fmt.Errorf("get exist entry failed, entry_id:%s, err:%w", exist.Id(), err)
		}
		if found {
			entryId = exist.Id()
		}
	}
	if len(entryId) == 0 {
		ent, err := h.fmgr.CreateEntry(ctx, tree.Owner(), parent.Id(), name, entity.FileKindFile)
		if err != nil {
			return nil, fmt.Errorf("create file entry failed, err:%w", err)
		}
		entryId = ent.EntryId
		created = true
	}
	size := r.ContentLength
	if size < 0 {
		size = 0
	}
	if err := h.fmgr.WriteContent(ctx, entryId, r.BodyReader(), size); err != nil {
		if created {
			if rerr := h.fmgr.RemoveEntries(ctx, []*entity.FileEntry{{EntryId: entryId, FileKind: entity.FileKindFile}}); rerr != nil {
				logger.Error("cleanup entry failed", zap.String("entry_id", entryId), zap.Error(rerr))
			}
		}
		return nil, fmt.Errorf("write content failed, entry_id:%s, err:%w", entryId, err)
	}
	metrics.AddUploadBytes(size)
	logger.Info("put file succ", zap.String("entry_id", entryId), zap.Int64("size", size), zap.Bool("created", created))
	return status(httpd.StatusCreated), nil
}
