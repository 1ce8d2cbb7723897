package httpd

import (
	"bufio"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net"
	"runtime/debug"
	"sync"
	"time"

	"github.com/xxxsen/common/idgen"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"
)

type Server struct {
	c *config
}

func New(opts ...Option) (*Server, error) {
	c := applyOpts(opts...)
	if len(c.handlers) == 0 {
		return nil, fmt.Errorf("no handler found")
	}
	return &Server{c: c}, nil
}

func (s *Server) IsTLS() bool {
	return s.c.tlsConfig != nil
}

func (s *Server) ListenAndServe(ctx context.Context, bind string) error {
	l, err := net.Listen("tcp", bind)
	if err != nil {
		return fmt.Errorf("listen failed, bind:%s, err:%w", bind, err)
	}
	return s.Serve(ctx, l)
}

// Serve 每个连接一个goroutine, ctx取消后关闭listener并等待存量连接结束
func (s *Server) Serve(ctx context.Context, l net.Listener) error {
	logger := logutil.GetLogger(ctx).With(zap.String("addr", l.Addr().String()), zap.Bool("tls", s.IsTLS()))
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			_ = l.Close()
		case <-done:
		}
	}()
	logger.Info("server start listening")
	wg := sync.WaitGroup{}
	var serveErr error
	for {
		conn, err := l.Accept()
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			if errors.Is(err, net.ErrClosed) {
				serveErr = err
				break
			}
			logger.Error("accept conn failed", zap.Error(err))
			time.Sleep(defaultIdleSleep)
			continue
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.serveConn(ctx, conn)
		}()
	}
	wg.Wait()
	logger.Info("server stopped")
	return serveErr
}

func (s *Server) serveConn(ctx context.Context, conn net.Conn) {
	logger := logutil.GetLogger(ctx).With(zap.Uint64("conn_id", idgen.Default().NextId()), zap.String("remote", conn.RemoteAddr().String()))
	var br *bufio.Reader
	defer func() {
		if r := recover(); r != nil {
			logger.Error("handle conn panic", zap.Any("panic", r), zap.String("stack", string(debug.Stack())))
		}
		if br != nil {
			lingerClose(conn, br)
		}
		_ = conn.Close()
	}()
	if s.c.tlsConfig != nil {
		tlsConn := tls.Server(conn, s.c.tlsConfig)
		if err := tlsConn.SetDeadline(time.Now().Add(s.c.handshakeTimeout)); err != nil {
			return
		}
		if err := tlsConn.HandshakeContext(ctx); err != nil {
			logger.Debug("tls handshake failed", zap.Error(err))
			return
		}
		_ = tlsConn.SetDeadline(time.Time{})
		conn = tlsConn
	}
	if s.c.readTimeout > 0 {
		_ = conn.SetReadDeadline(time.Now().Add(s.c.readTimeout))
	}
	br = bufio.NewReader(conn)
	bw := bufio.NewWriter(conn)
	start := time.Now()
	req, err := ReadRequest(br, s.c.threshold)
	if err != nil {
		if pe, ok := AsProtocolError(err); ok {
			logger.Error("parse request failed", zap.Error(err))
			_ = WriteResponse(bw, nil, TextResponse(pe.Status, StatusText(pe.Status)), s.c.codecs)
			return
		}
		if !errors.Is(err, io.EOF) {
			logger.Error("read request failed", zap.Error(err))
		}
		return
	}
	req.RemoteAddr = conn.RemoteAddr().String()
	req.TLS = s.IsTLS()
	req = req.WithContext(ctx)
	logger = logger.With(zap.String("method", req.Method), zap.String("path", req.Path))
	name, rsp := s.dispatch(ctx, req)
	if err := WriteResponse(bw, req, rsp, s.c.codecs); err != nil {
		logger.Error("write response failed", zap.Error(err))
	}
	cost := time.Since(start)
	logger.Debug("request finish", zap.String("handler", name), zap.Int("status", rsp.Status), zap.Duration("cost", cost))
	if s.c.observer != nil {
		s.c.observer(name, req.Method, rsp.Status, cost)
	}
}

func (s *Server) dispatch(ctx context.Context, req *Request) (string, *Response) {
	h, ok := findHandler(s.c.handlers, req)
	if !ok {
		return "", TextResponse(StatusInternalServerError, "No Handler Found")
	}
	rsp, err := h.Handle(ctx, req)
	if err != nil {
		if pe, ok := AsProtocolError(err); ok {
			logutil.GetLogger(ctx).Error("handle request failed with protocol error", zap.String("handler", h.Name()), zap.Error(err))
			return h.Name(), TextResponse(pe.Status, pe.Msg)
		}
		logutil.GetLogger(ctx).Error("handle request failed", zap.String("handler", h.Name()), zap.Error(err))
		return h.Name(), TextResponse(StatusInternalServerError, StatusText(StatusInternalServerError))
	}
	if rsp == nil {
		rsp = NewResponse(StatusNoContent)
	}
	if rsp.Header == nil {
		rsp.Header = NewHeader()
	}
	return h.Name(), rsp
}

// lingerClose 关闭写端后丢弃客户端未发送完的数据
func lingerClose(conn net.Conn, br *bufio.Reader) {
	if cw, ok := conn.(interface{ CloseWrite() error }); ok {
		_ = cw.CloseWrite()
	}
	_ = conn.SetReadDeadline(time.Now().Add(lingerTimeout))
	_, _ = io.Copy(io.Discard, io.LimitReader(br, maxLingerBytes))
}
