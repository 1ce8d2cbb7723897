package webdav

import (
	"context"
	"fmt"

	"github.com/xxxsen/davbox/httpd"
	"github.com/xxxsen/davbox/vfs"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"
)

// transferTarget COPY/MOVE共用的前置检查结果
type transferTarget struct {
	src       *vfs.Node
	dstParent *vfs.Node
	dstName   string
	dstPath   string
	exist     *vfs.Node
}

func (h *WebdavHandler) prepareTransfer(ctx context.Context, r *httpd.Request, tree *vfs.Tree) (*transferTarget, *httpd.Response) {
	logger := logutil.GetLogger(ctx).With(zap.String("method", r.Method), zap.String("path", r.Path))
	src, ok := tree.Resolve(r.Path)
	if !ok {
		return nil, status(httpd.StatusNotFound)
	}
	if src.IsRoot() {
		return nil, status(httpd.StatusForbidden)
	}
	dstPath, err := tryBuildDstPath(r)
	if err != nil {
		logger.Info("invalid destination", zap.Error(err))
		return nil, status(httpd.StatusBadRequest)
	}
	parent, name, ok := tree.ResolveParent(dstPath)
	if !ok {
		return nil, status(httpd.StatusConflict)
	}
	if len(name) == 0 {
		return nil, status(httpd.StatusForbidden)
	}
	t := &transferTarget{src: src, dstParent: parent, dstName: name, dstPath: dstPath}
	if exist, ok := tree.Lookup(parent, name); ok {
		// 目标是源自身或者源的祖先
		if isAncestor(exist, src) {
			return nil, status(httpd.StatusForbidden)
		}
		t.exist = exist
	}
	if isAncestor(src, parent) {
		logger.Info("destination inside source", zap.String("dst", dstPath))
		return nil, status(httpd.StatusForbidden)
	}
	return t, nil
}

// settleExist 处理已存在的目标, 返回成功时应使用的状态码
func (h *WebdavHandler) settleExist(ctx context.Context, r *httpd.Request, t *transferTarget) (int, *httpd.Response, error) {
	if t.exist == nil {
		return httpd.StatusCreated, nil, nil
	}
	if !isOverwrite(r) {
		return 0, status(httpd.StatusPreconditionFailed), nil
	}
	if err := h.removeTree(ctx, t.exist); err != nil {
		return 0, nil, fmt.Errorf("remove exist destination failed, dst:%s, err:%w", t.dstPath, err)
	}
	return httpd.StatusNoContent, nil, nil
}

func (h *WebdavHandler) handleCopy(ctx context.Context, r *httpd.Request, tree *vfs.Tree) (*httpd.Response, error) {
	t, rsp := h.prepareTransfer(ctx, r, tree)
	if rsp != nil {
		return rsp, nil
	}
	code, rsp, err := h.settleExist(ctx, r, t)
	if err != nil || rsp != nil {
		return rsp, err
	}
	depth := parseDepth(r.Header.Get("Depth"))
	cnt, err := h.copyNode(ctx, tree.Owner(), t.src, t.dstParent.Id(), t.dstName, depth)
	if err != nil {
		return nil, fmt.Errorf("copy failed, src:%s, dst:%s, err:%w", r.Path, t.dstPath, err)
	}
	logutil.GetLogger(ctx).Info("copy entry succ", zap.String("src", r.Path), zap.String("dst", t.dstPath), zap.Int("count", cnt))
	return status(code), nil
}

// copyNode 为每个节点创建新entry, depth为0时只复制目录本身
func (h *WebdavHandler) copyNode(ctx context.Context, owner string, src *vfs.Node, parent string, name string, depth int) (int, error) {
	ent, err := h.fmgr.CreateEntry(ctx, owner, parent, name, src.Entry.FileKind)
	if err != nil {
		return 0, fmt.Errorf("create entry failed, name:%s, err:%w", name, err)
	}
	if !src.IsFolder() {
		if err := h.fmgr.CopyContent(ctx, src.Id(), ent.EntryId); err != nil {
			return 0, fmt.Errorf("copy content failed, src:%s, dst:%s, err:%w", src.Id(), ent.EntryId, err)
		}
		return 1, nil
	}
	cnt := 1
	if depth == 0 {
		return cnt, nil
	}
	for _, c := range src.Children() {
		sub, err := h.copyNode(ctx, owner, c, ent.EntryId, c.Name(), depth)
		if err != nil {
			return cnt, err
		}
		cnt += sub
	}
	return cnt, nil
}
