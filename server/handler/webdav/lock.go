package webdav

import (
	"context"

	"github.com/xxxsen/davbox/httpd"
	"github.com/xxxsen/davbox/vfs"
)

// handleLock 不支持锁
func (h *WebdavHandler) handleLock(ctx context.Context, r *httpd.Request, tree *vfs.Tree) (*httpd.Response, error) {
	rsp := status(httpd.StatusMethodNotAllowed)
	h.setDavHeader(rsp)
	return rsp, nil
}
