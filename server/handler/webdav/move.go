package webdav

import (
	"context"
	"fmt"

	"github.com/xxxsen/davbox/httpd"
	"github.com/xxxsen/davbox/vfs"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"
)

func (h *WebdavHandler) handleMove(ctx context.Context, r *httpd.Request, tree *vfs.Tree) (*httpd.Response, error) {
	t, rsp := h.prepareTransfer(ctx, r, tree)
	if rsp != nil {
		return rsp, nil
	}
	code, rsp, err := h.settleExist(ctx, r, t)
	if err != nil || rsp != nil {
		return rsp, err
	}
	if err := h.fmgr.MoveEntry(ctx, t.src.Id(), t.dstParent.Id(), t.dstName); err != nil {
		return nil, fmt.Errorf("move failed, src:%s, dst:%s, err:%w", r.Path, t.dstPath, err)
	}
	logutil.GetLogger(ctx).Info("move entry succ", zap.String("src", r.Path), zap.String("dst", t.dstPath))
	return status(code), nil
}
