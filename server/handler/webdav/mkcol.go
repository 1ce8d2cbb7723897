package webdav

import (
	"context"
	"fmt"

	"github.com/xxxsen/davbox/entity"
	"github.com/xxxsen/davbox/httpd"
	"github.com/xxxsen/davbox/vfs"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"
)

func (h *WebdavHandler) handleMkcol(ctx context.Context, r *httpd.Request, tree *vfs.Tree) (*httpd.Response, error) {
	parent, name, ok := tree.ResolveParent(r.Path)
	if ok && len(name) == 0 {
		return status(httpd.StatusMethodNotAllowed), nil
	}
	if r.HasBody() && r.ContentLength > 0 {
		return status(httpd.StatusUnsupportedMediaType), nil
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
	ent, err := h.fmgr.CreateEntry(ctx, tree.Owner(), parent.Id(), name, entity.FileKindFolder)
	if err != nil {
		return nil, fmt.Errorf("create folder failed, path:%s, err:%w", r.Path, err)
	}
	logutil.GetLogger(ctx).Info("create folder succ", zap.String("path", r.Path), zap.String("entry_id", ent.EntryId))
	return status(httpd.StatusCreated), nil
}
