package server

import (
	"context"
	"crypto/tls"
	"fmt"

	"github.com/xxxsen/davbox/httpd"
	"github.com/xxxsen/davbox/metrics"
	"github.com/xxxsen/davbox/server/handler/api"
	"github.com/xxxsen/davbox/server/handler/fallback"
	metricsHandler "github.com/xxxsen/davbox/server/handler/metrics"
	"github.com/xxxsen/davbox/server/handler/webdav"

	"golang.org/x/sync/errgroup"
)

type Server struct {
	c        *config
	bind     string
	plain    *httpd.Server
	secure   *httpd.Server
	handlers []httpd.IHandler
}

func New(bind string, opts ...Option) (*Server, error) {
	c := applyOpts(opts...)
	if c.fmgr == nil || c.userDao == nil || c.st == nil {
		return nil, fmt.Errorf("file manager, user dao and session store are required")
	}
	svr := &Server{c: c, bind: bind}
	if err := svr.initHandlers(); err != nil {
		return nil, err
	}
	var err error
	svr.plain, err = httpd.New(svr.serverOptions()...)
	if err != nil {
		return nil, fmt.Errorf("init http server failed, err:%w", err)
	}
	if len(c.tlsBind) > 0 {
		cert, err := tls.LoadX509KeyPair(c.tlsCert, c.tlsKey)
		if err != nil {
			return nil, fmt.Errorf("load tls cert failed, err:%w", err)
		}
		opts := append(svr.serverOptions(), httpd.WithTLSConfig(&tls.Config{
			Certificates: []tls.Certificate{cert},
			MinVersion:   tls.VersionTLS12,
		}))
		svr.secure, err = httpd.New(opts...)
		if err != nil {
			return nil, fmt.Errorf("init https server failed, err:%w", err)
		}
	}
	return svr, nil
}

// initHandlers 处理链按顺序匹配, webdav优先, fallback兜底
func (s *Server) initHandlers() error {
	dav, err := webdav.New(s.c.fmgr, s.c.st, webdav.WithDavName(s.c.davName))
	if err != nil {
		return fmt.Errorf("init webdav handler failed, err:%w", err)
	}
	s.handlers = append(s.handlers, dav)
	if s.c.enableMetrics {
		s.handlers = append(s.handlers, metricsHandler.New())
	}
	s.handlers = append(s.handlers,
		api.New(s.c.userDao, s.c.st, api.WithAllowRegister(s.c.allowRegister)),
		fallback.New(),
	)
	return nil
}

func (s *Server) serverOptions() []httpd.Option {
	opts := []httpd.Option{
		httpd.WithHandlers(s.handlers...),
		httpd.WithCodecs(httpd.DefaultCodecs()...),
	}
	if s.c.enableMetrics {
		opts = append(opts, httpd.WithObserver(metrics.ObserveRequest))
	}
	return opts
}

func (s *Server) HandlerNames() []string {
	rs := make([]string, 0, len(s.handlers))
	for _, h := range s.handlers {
		rs = append(rs, h.Name())
	}
	return rs
}

// Run 同时运行http与https监听, 任意一个退出都会取消另一个
func (s *Server) Run(ctx context.Context) error {
	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		return s.plain.ListenAndServe(ctx, s.bind)
	})
	if s.secure != nil {
		eg.Go(func() error {
			return s.secure.ListenAndServe(ctx, s.c.tlsBind)
		})
	}
	return eg.Wait()
}
