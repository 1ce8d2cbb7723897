package api

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/xxxsen/davbox/dao"
	"github.com/xxxsen/davbox/httpd"
	"github.com/xxxsen/davbox/server/httpkit"
	"github.com/xxxsen/davbox/session"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"
)

const (
	Prefix         = "/a/v1/"
	maxRequestBody = 64 * 1024
)

type routeFunc func(ctx context.Context, r *httpd.Request) (*httpd.Response, error)

type ApiHandler struct {
	c       *config
	userDao dao.IUserDao
	st      *session.Store
	route   map[string]routeFunc
}

func New(userDao dao.IUserDao, st *session.Store, opts ...Option) *ApiHandler {
	h := &ApiHandler{
		c:       applyOpts(opts...),
		userDao: userDao,
		st:      st,
	}
	h.route = map[string]routeFunc{
		"register": h.handleRegister,
		"login":    h.handleLogin,
		"logout":   h.handleLogout,
	}
	return h
}

func (h *ApiHandler) Name() string {
	return "api"
}

func (h *ApiHandler) CanHandle(r *httpd.Request) bool {
	return strings.HasPrefix(r.Path, Prefix)
}

func (h *ApiHandler) Handle(ctx context.Context, r *httpd.Request) (*httpd.Response, error) {
	action, _, _ := strings.Cut(strings.TrimPrefix(r.Path, Prefix), "/")
	fn, ok := h.route[action]
	if !ok || r.Method != "POST" {
		logutil.GetLogger(ctx).Debug("unknown api", zap.String("method", r.Method), zap.String("path", r.Path))
		return httpd.TextResponse(httpd.StatusNotFound, "This page could not be found!"), nil
	}
	return fn(ctx, r)
}

// decodeBody 非json的请求体按空对象处理, 由后续校验给出具体错误
func decodeBody(r *httpd.Request, v interface{}) error {
	if !r.HasBody() {
		return nil
	}
	if ct := r.Header.Get("Content-Type"); !strings.HasPrefix(strings.ToLower(ct), "application/json") {
		return nil
	}
	raw, err := r.ReadBody(maxRequestBody)
	if err != nil {
		return err
	}
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return httpd.NewProtocolError("decode json body failed, err:%v", err)
	}
	return nil
}

func invalidData(message string) *httpd.Response {
	return httpkit.FailStatus(httpd.StatusBadRequest, errors.New(message))
}
