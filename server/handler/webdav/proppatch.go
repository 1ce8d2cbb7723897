package webdav

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/xxxsen/davbox/davprop"
	"github.com/xxxsen/davbox/davxml"
	"github.com/xxxsen/davbox/httpd"
	"github.com/xxxsen/davbox/vfs"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"
)

func (h *WebdavHandler) handleProppatch(ctx context.Context, r *httpd.Request, tree *vfs.Tree) (*httpd.Response, error) {
	node, ok := tree.Resolve(r.Path)
	if !ok {
		return status(httpd.StatusNotFound), nil
	}
	if node.IsRoot() {
		return status(httpd.StatusForbidden), nil
	}
	body, err := h.readXMLBody(r)
	if err != nil {
		return nil, err
	}
	if body == nil || body.Name != "propertyupdate" {
		return nil, httpd.NewProtocolError("proppatch body should be propertyupdate")
	}
	ok200 := make([]*davxml.Fragment, 0, 4)
	conflict := make([]*davxml.Fragment, 0, 1)
	for _, action := range body.Elements() {
		if action.Name != "set" && action.Name != "remove" {
			continue
		}
		prop := action.Child("prop")
		if prop == nil {
			continue
		}
		for _, item := range prop.Elements() {
			if action.Name == "set" {
				err := h.applyProp(ctx, node, item)
				if errors.Is(err, davprop.ErrInvalidValue) {
					logutil.GetLogger(ctx).Info("invalid prop value", zap.String("prop", item.QName()), zap.Error(err))
					conflict = append(conflict, davxml.NewElement(item.Namespace, item.Name))
					continue
				}
				if err != nil {
					return nil, fmt.Errorf("set prop failed, prop:%s, err:%w", item.QName(), err)
				}
			}
			ok200 = append(ok200, davxml.NewElement(item.Namespace, item.Name))
		}
	}
	rsp := newResponse(buildHref(node))
	if len(ok200) > 0 {
		rsp.AddChild(newPropstat(httpd.StatusOK, ok200...))
	}
	if len(conflict) > 0 {
		rsp.AddChild(newPropstat(httpd.StatusConflict, conflict...))
	}
	ms := newMultistatus()
	for _, attr := range body.Attrs {
		if attr.Key != "xmlns:D" && strings.HasPrefix(attr.Key, "xmlns:") {
			ms.SetAttr(attr.Key, attr.Value)
		}
	}
	ms.AddChild(rsp)
	return multistatusResponse(ms), nil
}

// applyProp 未知或只读属性静默忽略
func (h *WebdavHandler) applyProp(ctx context.Context, n *vfs.Node, item *davxml.Fragment) error {
	p, ok := h.props.Find(item.Name)
	if !ok || !p.Settable() || !p.PossibleFor(n) {
		return nil
	}
	return p.Set(ctx, n, item)
}
