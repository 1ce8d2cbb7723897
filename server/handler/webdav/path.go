package webdav

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/xxxsen/davbox/dao"
	"github.com/xxxsen/davbox/davxml"
	"github.com/xxxsen/davbox/httpd"
	"github.com/xxxsen/davbox/vfs"
)

// parseDepth "0"/"1"之外的取值(包括缺失)都视为不限层级
func parseDepth(v string) int {
	switch strings.TrimSpace(v) {
	case "0":
		return 0
	case "1":
		return 1
	}
	return -1
}

func isOverwrite(r *httpd.Request) bool {
	return !strings.EqualFold(strings.TrimSpace(r.Header.Get("Overwrite")), "F")
}

// buildHref 逐段转义, 目录以'/'结尾
func buildHref(n *vfs.Node) string {
	segs := n.Segments()
	items := make([]string, 0, len(segs))
	for _, seg := range segs {
		items = append(items, url.PathEscape(seg))
	}
	href := "/" + strings.Join(items, "/")
	if n.IsFolder() && !strings.HasSuffix(href, "/") {
		href += "/"
	}
	return href
}

// tryBuildDstPath 丢弃Destination中直到与Host相同的那一段, 剩余部分逐段解码
func tryBuildDstPath(r *httpd.Request) (string, error) {
	dst := strings.TrimSpace(r.Header.Get("Destination"))
	if len(dst) == 0 {
		return "", fmt.Errorf("no destination found")
	}
	if idx := strings.IndexByte(dst, '?'); idx >= 0 {
		dst = dst[:idx]
	}
	segs := strings.Split(dst, "/")
	if strings.Contains(dst, "://") {
		host := r.Header.Get("Host")
		found := -1
		for i, seg := range segs {
			if len(host) > 0 && seg == host {
				found = i
				break
			}
		}
		if found < 0 {
			return "", fmt.Errorf("destination host not match, dst:%s, host:%s", dst, host)
		}
		segs = segs[found+1:]
	}
	items := make([]string, 0, len(segs))
	for _, seg := range segs {
		if len(seg) == 0 {
			continue
		}
		item, err := url.PathUnescape(seg)
		if err != nil {
			return "", fmt.Errorf("decode destination failed, seg:%s, err:%w", seg, err)
		}
		items = append(items, item)
	}
	return "/" + strings.Join(items, "/"), nil
}

// readXMLBody 没有请求体时返回nil
func (h *WebdavHandler) readXMLBody(r *httpd.Request) (*davxml.Fragment, error) {
	if !r.HasBody() || r.ContentLength == 0 {
		return nil, nil
	}
	if ct := r.Header.Get("Content-Type"); len(ct) > 0 && !strings.Contains(strings.ToLower(ct), "xml") {
		return nil, httpd.NewProtocolErrorWithStatus(httpd.StatusUnsupportedMediaType, "unsupported content type:%s", ct)
	}
	raw, err := r.ReadBody(h.c.maxXMLBody)
	if err != nil {
		return nil, err
	}
	frag, err := davxml.Parse(string(raw))
	if errors.Is(err, davxml.ErrEmptyDocument) {
		return nil, nil
	}
	if err != nil {
		return nil, httpd.NewProtocolError("parse xml body failed, err:%v", err)
	}
	return frag, nil
}

func isAncestor(ancestor *vfs.Node, n *vfs.Node) bool {
	for c := n; c != nil; c = c.Parent() {
		if c == ancestor {
			return true
		}
	}
	return false
}

// parentAlive 目录树是请求开始时的快照, 写入前回查父目录是否还在
func (h *WebdavHandler) parentAlive(ctx context.Context, parent *vfs.Node) (bool, error) {
	if parent.IsRoot() {
		return true, nil
	}
	isdir, err := h.fmgr.IsFolder(ctx, parent.Id())
	if errors.Is(err, dao.ErrEntryNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check parent failed, entry_id:%s, err:%w", parent.Id(), err)
	}
	return isdir, nil
}
