package httpd

import "context"

// IHandler 处理链中的一环, 第一个CanHandle返回true的handler负责响应
type IHandler interface {
	Name() string
	CanHandle(r *Request) bool
	Handle(ctx context.Context, r *Request) (*Response, error)
}

type funcHandler struct {
	name   string
	match  func(r *Request) bool
	handle func(ctx context.Context, r *Request) (*Response, error)
}

func (f *funcHandler) Name() string {
	return f.name
}

func (f *funcHandler) CanHandle(r *Request) bool {
	return f.match(r)
}

func (f *funcHandler) Handle(ctx context.Context, r *Request) (*Response, error) {
	return f.handle(ctx, r)
}

func HandlerFunc(name string, match func(r *Request) bool, handle func(ctx context.Context, r *Request) (*Response, error)) IHandler {
	return &funcHandler{name: name, match: match, handle: handle}
}

func findHandler(hs []IHandler, r *Request) (IHandler, bool) {
	for _, h := range hs {
		if h.CanHandle(r) {
			return h, true
		}
	}
	return nil, false
}
