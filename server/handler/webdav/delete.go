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

func (h *WebdavHandler) handleDelete(ctx context.Context, r *httpd.Request, tree *vfs.Tree) (*httpd.Response, error) {
	node, ok := tree.Resolve(r.Path)
	if !ok {
		return status(httpd.StatusNotFound), nil
	}
	if node.IsRoot() || node.Entry.OwnerId != h.owner(ctx) {
		return status(httpd.StatusForbidden), nil
	}
	if err := h.removeTree(ctx, node); err != nil {
		return nil, fmt.Errorf("delete failed, path:%s, err:%w", r.Path, err)
	}
	logutil.GetLogger(ctx).Info("delete entry succ", zap.String("path", r.Path), zap.String("entry_id", node.Id()))
	return status(httpd.StatusNoContent), nil
}

// removeTree 子节点先于父节点删除
func (h *WebdavHandler) removeTree(ctx context.Context, node *vfs.Node) error {
	nodes := node.PostOrder()
	ents := make([]*entity.FileEntry, 0, len(nodes))
	for _, n := range nodes {
		ents = append(ents, n.Entry)
	}
	return h.fmgr.RemoveEntries(ctx, ents)
}
