package fallback

import (
	"context"

	"github.com/xxxsen/davbox/httpd"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"
)

const notFoundText = "This page could not be found!"

// FallbackHandler 放在处理链末尾, 兜底返回404
type FallbackHandler struct{}

func New() *FallbackHandler {
	return &FallbackHandler{}
}

func (h *FallbackHandler) Name() string {
	return "fallback"
}

func (h *FallbackHandler) CanHandle(r *httpd.Request) bool {
	return true
}

func (h *FallbackHandler) Handle(ctx context.Context, r *httpd.Request) (*httpd.Response, error) {
	logutil.GetLogger(ctx).Debug("no page found", zap.String("method", r.Method), zap.String("path", r.Path))
	return httpd.TextResponse(httpd.StatusNotFound, notFoundText), nil
}
