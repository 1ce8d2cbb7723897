package webdav

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/xxxsen/davbox/httpd"
	"github.com/xxxsen/davbox/metrics"
	"github.com/xxxsen/davbox/server/httpkit"
	"github.com/xxxsen/davbox/vfs"
)

const mimeSniffSize = 512

type readCloser struct {
	io.Reader
	io.Closer
}

func (h *WebdavHandler) resolveFile(tree *vfs.Tree, p string) (*vfs.Node, *httpd.Response, error) {
	node, ok := tree.Resolve(p)
	if !ok {
		return nil, status(httpd.StatusNotFound), nil
	}
	if node.IsFolder() {
		return nil, nil, httpd.NewProtocolError("folder download is not supported, path:%s", p)
	}
	return node, nil, nil
}

func (h *WebdavHandler) handleGet(ctx context.Context, r *httpd.Request, tree *vfs.Tree) (*httpd.Response, error) {
	node, rsp, err := h.resolveFile(tree, r.Path)
	if err != nil || rsp != nil {
		return rsp, err
	}
	rc, info, err := h.fmgr.OpenContent(ctx, node.Id())
	if err != nil {
		return nil, fmt.Errorf("open content failed, entry_id:%s, err:%w", node.Id(), err)
	}
	br := bufio.NewReaderSize(rc, mimeSniffSize)
	head, _ := br.Peek(mimeSniffSize)
	metrics.AddDownloadBytes(info.Size)
	rsp = httpd.NewResponse(httpd.StatusOK)
	rsp.SetStream(&readCloser{Reader: br, Closer: rc}, info.Size)
	httpkit.SetDefaultDownloadHeader(rsp, node.Name(), httpkit.DetectMimeType(node.Name(), head), info.Size, entryMtime(node, info.Mtime))
	return rsp, nil
}

func entryMtime(n *vfs.Node, fallback time.Time) time.Time {
	if n.Entry != nil && n.Entry.Mtime > 0 {
		return time.UnixMilli(n.Entry.Mtime)
	}
	return fallback
}
