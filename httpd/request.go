package httpd

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"net"
	"net/url"
	"strconv"
	"strings"
)

const (
	maxHeaderLines = 256
	maxLineSize    = 64 * 1024
)

type Request struct {
	Method        string
	Target        string
	Path          string
	RawQuery      string
	Version       string
	Header        *Header
	ContentLength int64 // 无请求体时为-1
	Body          []byte
	Stream        *BodyStream
	RemoteAddr    string
	TLS           bool
	ctx           context.Context
}

func (r *Request) Context() context.Context {
	if r.ctx == nil {
		return context.Background()
	}
	return r.ctx
}

func (r *Request) WithContext(ctx context.Context) *Request {
	r.ctx = ctx
	return r
}

func (r *Request) HasBody() bool {
	return r.ContentLength >= 0
}

// RemoteIp 去掉端口后的客户端地址
func (r *Request) RemoteIp() string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// BodyReader 对预读与流式两种请求体统一返回reader
func (r *Request) BodyReader() io.Reader {
	if r.Stream != nil {
		return r.Stream
	}
	return bytes.NewReader(r.Body)
}

// ReadBody 读取完整请求体, 超过limit时返回413
func (r *Request) ReadBody(limit int64) ([]byte, error) {
	if r.Stream == nil {
		if int64(len(r.Body)) > limit {
			return nil, NewProtocolErrorWithStatus(StatusContentTooLarge, "body too large, size:%d", len(r.Body))
		}
		return r.Body, nil
	}
	if r.Stream.Remaining() > limit {
		return nil, NewProtocolErrorWithStatus(StatusContentTooLarge, "body too large, size:%d", r.Stream.Remaining())
	}
	raw, err := io.ReadAll(r.Stream)
	if err != nil {
		return nil, fmt.Errorf("read body failed, err:%w", err)
	}
	r.Stream = nil
	r.Body = raw
	return raw, nil
}

func readLine(br *bufio.Reader) (string, error) {
	var sb strings.Builder
	for {
		frag, isPrefix, err := br.ReadLine()
		if err != nil {
			return "", err
		}
		sb.Write(frag)
		if sb.Len() > maxLineSize {
			return "", NewProtocolError("line too long")
		}
		if !isPrefix {
			return sb.String(), nil
		}
	}
}

func parseRequestLine(r *Request, line string) error {
	items := strings.Split(line, " ")
	if len(items) != 3 {
		return NewProtocolError("invalid request line:%q", line)
	}
	r.Method, r.Target, r.Version = items[0], items[1], items[2]
	if strings.ToUpper(r.Version) != "HTTP/1.1" {
		return NewProtocolError("unsupported version:%s", r.Version)
	}
	target := r.Target
	if idx := strings.IndexByte(target, '?'); idx >= 0 {
		target, r.RawQuery = target[:idx], target[idx+1:]
	}
	p, err := url.PathUnescape(target)
	if err != nil {
		return NewProtocolError("invalid target:%s", r.Target)
	}
	r.Path = p
	return nil
}

// parseHeaderLine 缺少": "的行视为值为空的key, 兼容不规范的客户端
func parseHeaderLine(h *Header, line string) {
	k, v, ok := strings.Cut(line, ": ")
	if !ok {
		h.Set(strings.TrimSpace(line), "")
		return
	}
	h.Set(strings.TrimSpace(k), strings.TrimSpace(v))
}

// ReadRequest 解析单个请求, threshold以下的请求体直接读入内存
func ReadRequest(br *bufio.Reader, threshold int64) (*Request, error) {
	line, err := readLine(br)
	if err != nil {
		return nil, err
	}
	r := &Request{Header: NewHeader(), ContentLength: -1}
	if err := parseRequestLine(r, line); err != nil {
		return nil, err
	}
	for i := 0; ; i++ {
		if i >= maxHeaderLines {
			return nil, NewProtocolError("too many header lines")
		}
		line, err := readLine(br)
		if err != nil {
			return nil, fmt.Errorf("read header failed, err:%w", err)
		}
		if len(line) == 0 {
			break
		}
		parseHeaderLine(r.Header, line)
	}
	if v, ok := r.Header.Lookup("Content-Length"); ok {
		sz, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return nil, NewProtocolError("invalid content-length:%s", v)
		}
		if sz >= 0 {
			r.ContentLength = sz
		}
	}
	if r.ContentLength < 0 {
		return r, nil
	}
	if r.ContentLength >= threshold {
		r.Stream = newBodyStream(br, r.ContentLength)
		return r, nil
	}
	r.Body = make([]byte, r.ContentLength)
	if _, err := io.ReadFull(br, r.Body); err != nil {
		return nil, fmt.Errorf("read body failed, err:%w", err)
	}
	return r, nil
}
