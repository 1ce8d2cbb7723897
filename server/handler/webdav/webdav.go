package webdav

import (
	"context"
	"fmt"

	"github.com/xxxsen/davbox/auth"
	"github.com/xxxsen/davbox/davprop"
	"github.com/xxxsen/davbox/filemgr"
	"github.com/xxxsen/davbox/httpd"
	"github.com/xxxsen/davbox/session"
	"github.com/xxxsen/davbox/vfs"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"
)

type methodFunc func(ctx context.Context, r *httpd.Request, tree *vfs.Tree) (*httpd.Response, error)

type WebdavHandler struct {
	c     *config
	fmgr  filemgr.IFileManager
	st    *session.Store
	props *davprop.Registry
	route map[string]methodFunc
}

func New(fmgr filemgr.IFileManager, st *session.Store, opts ...Option) (*WebdavHandler, error) {
	if fmgr == nil || st == nil {
		return nil, fmt.Errorf("file manager and session store are required")
	}
	c := applyOpts(opts...)
	h := &WebdavHandler{
		c:     c,
		fmgr:  fmgr,
		st:    st,
		props: davprop.NewRegistry(fmgr, c.davName),
	}
	h.route = map[string]methodFunc{
		MethodGet:       h.handleGet,
		MethodHead:      h.handleHead,
		MethodPut:       h.handlePut,
		MethodDelete:    h.handleDelete,
		MethodPropfind:  h.handlePropfind,
		MethodProppatch: h.handleProppatch,
		MethodMkcol:     h.handleMkcol,
		MethodCopy:      h.handleCopy,
		MethodMove:      h.handleMove,
		MethodLock:      h.handleLock,
		MethodUnlock:    h.handleLock,
	}
	return h, nil
}

func (h *WebdavHandler) Name() string {
	return "webdav"
}

// CanHandle GET/HEAD仅在带Authorization时视为webdav请求
func (h *WebdavHandler) CanHandle(r *httpd.Request) bool {
	if davOnlyMethods[r.Method] {
		return true
	}
	if r.Method == MethodGet || r.Method == MethodHead {
		return r.Header.Has("Authorization")
	}
	return false
}

func (h *WebdavHandler) Handle(ctx context.Context, r *httpd.Request) (*httpd.Response, error) {
	if r.Method == MethodOptions {
		return h.handleOption(ctx, r)
	}
	logger := logutil.GetLogger(ctx).With(zap.String("method", r.Method), zap.String("path", r.Path), zap.String("ip", r.RemoteIp()))
	u, err := auth.Authenticate(ctx, r, h.st)
	if err != nil {
		logger.Info("webdav auth failed", zap.Error(err))
		return h.unauthorized(), nil
	}
	fn, ok := h.route[r.Method]
	if !ok {
		logger.Error("unsupported method")
		return httpd.TextResponse(httpd.StatusMethodNotAllowed, "Method Not Allowed"), nil
	}
	ctx = auth.SetUserInfo(ctx, u)
	tree, err := vfs.Load(ctx, h.fmgr, u.UserId)
	if err != nil {
		return nil, fmt.Errorf("build projection failed, user:%s, err:%w", u.UserId, err)
	}
	rsp, err := fn(ctx, r, tree)
	if err != nil {
		return nil, err
	}
	logger.Debug("webdav request finish", zap.String("user", u.UserId), zap.Int("status", rsp.Status))
	return rsp, nil
}

// unauthorized 每次认证失败都重新下发Basic质询
func (h *WebdavHandler) unauthorized() *httpd.Response {
	rsp := httpd.TextResponse(httpd.StatusUnauthorized, "Unauthorized")
	rsp.Header.Set("WWW-Authenticate", auth.BasicChallenge)
	return rsp
}

func (h *WebdavHandler) owner(ctx context.Context) string {
	u, ok := auth.GetUserInfo(ctx)
	if !ok {
		return ""
	}
	return u.UserId
}

func status(code int) *httpd.Response {
	return httpd.NewResponse(code)
}
