package webdav

import (
	"context"
	"fmt"
	"strings"

	"github.com/xxxsen/davbox/davxml"
	"github.com/xxxsen/davbox/httpd"
	"github.com/xxxsen/davbox/vfs"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"
)

type propfindMode int

const (
	propfindAll propfindMode = iota
	propfindName
	propfindProp
)

type propfindRequest struct {
	mode  propfindMode
	props []*davxml.Fragment
	attrs []davxml.Attr
}

func parsePropfind(root *davxml.Fragment) (*propfindRequest, error) {
	req := &propfindRequest{mode: propfindAll}
	if root == nil {
		return req, nil
	}
	if root.Name != "propfind" {
		return nil, httpd.NewProtocolError("invalid propfind root:%s", root.QName())
	}
	for _, attr := range root.Attrs {
		// D已经由multistatus声明
		if strings.HasPrefix(attr.Key, "xmlns:") && attr.Key != "xmlns:D" {
			req.attrs = append(req.attrs, attr)
		}
	}
	for _, item := range root.Elements() {
		switch item.Name {
		case "allprop":
			req.mode = propfindAll
			return req, nil
		case "propname":
			req.mode = propfindName
			return req, nil
		case "prop":
			req.mode = propfindProp
			req.props = append(req.props, item.Elements()...)
		}
	}
	return req, nil
}

func (h *WebdavHandler) handlePropfind(ctx context.Context, r *httpd.Request, tree *vfs.Tree) (*httpd.Response, error) {
	node, ok := tree.Resolve(r.Path)
	if !ok {
		return status(httpd.StatusNotFound), nil
	}
	body, err := h.readXMLBody(r)
	if err != nil {
		return nil, err
	}
	req, err := parsePropfind(body)
	if err != nil {
		return nil, err
	}
	depth := parseDepth(r.Header.Get("Depth"))
	ms := newMultistatus()
	for _, attr := range req.attrs {
		ms.SetAttr(attr.Key, attr.Value)
	}
	err = node.Walk(depth, func(n *vfs.Node, level int) error {
		rsp, err := h.buildPropfindResponse(ctx, n, req)
		if err != nil {
			return err
		}
		ms.AddChild(rsp)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk propfind failed, path:%s, err:%w", r.Path, err)
	}
	logutil.GetLogger(ctx).Debug("propfind finish", zap.String("path", r.Path), zap.Int("depth", depth), zap.Int("count", len(ms.Children)))
	return multistatusResponse(ms), nil
}

func (h *WebdavHandler) buildPropfindResponse(ctx context.Context, n *vfs.Node, req *propfindRequest) (*davxml.Fragment, error) {
	found := make([]*davxml.Fragment, 0, 8)
	missing := make([]*davxml.Fragment, 0, 4)
	switch req.mode {
	case propfindAll:
		for _, p := range h.props.All() {
			if !p.PossibleFor(n) {
				continue
			}
			v, err := p.Get(ctx, n)
			if err != nil {
				return nil, fmt.Errorf("get prop failed, name:%s, err:%w", p.Name(), err)
			}
			found = append(found, v)
		}
	case propfindName:
		for _, p := range h.props.All() {
			if p.PossibleFor(n) {
				found = append(found, davxml.NewElement(p.Namespace(), p.Name()))
			}
		}
	case propfindProp:
		for _, want := range req.props {
			p, ok := h.props.Find(want.Name)
			if !ok || !p.PossibleFor(n) {
				missing = append(missing, missingProp(want))
				continue
			}
			v, err := p.Get(ctx, n)
			if err != nil {
				return nil, fmt.Errorf("get prop failed, name:%s, err:%w", p.Name(), err)
			}
			found = append(found, v)
		}
	}
	rsp := newResponse(buildHref(n))
	if len(found) > 0 {
		rsp.AddChild(newPropstat(httpd.StatusOK, found...))
	}
	if len(missing) > 0 {
		rsp.AddChild(newPropstat(httpd.StatusNotFound, missing...))
	}
	return rsp, nil
}

// missingProp 保留请求中的前缀及元素自身的命名空间声明
func missingProp(want *davxml.Fragment) *davxml.Fragment {
	item := davxml.NewElement(want.Namespace, want.Name)
	for _, attr := range want.Attrs {
		if attr.Key == "xmlns" || strings.HasPrefix(attr.Key, "xmlns:") {
			item.SetAttr(attr.Key, attr.Value)
		}
	}
	return item
}

