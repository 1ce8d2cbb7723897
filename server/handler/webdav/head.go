package webdav

import (
	"context"
	"fmt"

	"github.com/xxxsen/davbox/httpd"
	"github.com/xxxsen/davbox/server/httpkit"
	"github.com/xxxsen/davbox/vfs"
)

// handleHead 与GET相同的头部, 不带body
func (h *WebdavHandler) handleHead(ctx context.Context, r *httpd.Request, tree *vfs.Tree) (*httpd.Response, error) {
	node, ok := tree.Resolve(r.Path)
	if !ok {
		return status(httpd.StatusNotFound), nil
	}
	if node.IsFolder() {
		rsp := status(httpd.StatusOK)
		rsp.Header.Set("Content-Type", "text/plain; charset=utf-8")
		return rsp, nil
	}
	info, err := h.fmgr.StatContent(ctx, node.Id())
	if err != nil {
		return nil, fmt.Errorf("stat content failed, entry_id:%s, err:%w", node.Id(), err)
	}
	rsp := status(httpd.StatusOK)
	httpkit.SetDefaultDownloadHeader(rsp, node.Name(), httpkit.DetermineMimeType(node.Name()), info.Size, entryMtime(node, info.Mtime))
	return rsp, nil
}
