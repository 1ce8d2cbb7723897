package httpd

import (
	"bufio"
	"io"
	"strconv"
	"time"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"
)

// TimeFormat RFC1123格式, 固定使用GMT
const TimeFormat = "Mon, 02 Jan 2006 15:04:05 GMT"

type Response struct {
	Status int
	Header *Header
	Body   []byte
	File   io.ReadCloser // 非nil时以流的方式发送, 不压缩
	Size   int64
}

func NewResponse(status int) *Response {
	return &Response{Status: status, Header: NewHeader()}
}

func (r *Response) SetBody(contentType string, body []byte) *Response {
	if len(contentType) > 0 {
		r.Header.Set("Content-Type", contentType)
	}
	r.Body = body
	return r
}

func (r *Response) SetStream(rc io.ReadCloser, size int64) *Response {
	r.File = rc
	r.Size = size
	return r
}

func TextResponse(status int, text string) *Response {
	return NewResponse(status).SetBody("text/plain; charset=utf-8", []byte(text))
}

func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeFormat)
}

func defaultHeader() *Header {
	h := NewHeader()
	h.Set("Date", FormatTime(time.Now()))
	h.Set("Connection", "close")
	h.Set("Server", "davbox")
	return h
}

func noBodyStatus(code int) bool {
	return code == StatusNoContent || code == StatusNotModified || (code >= 100 && code < 200)
}

// encodeBody 压缩后更小时才使用压缩结果
func encodeBody(req *Request, rsp *Response, codecs []Codec) []byte {
	body := rsp.Body
	if len(body) == 0 || req == nil || rsp.Header.Has("Content-Encoding") {
		return body
	}
	c := pickCodec(codecs, req.Header.Get("Accept-Encoding"))
	if c == nil {
		return body
	}
	rsp.Header.Set("Vary", "Accept-Encoding")
	encoded, err := c.Encode(body)
	if err != nil {
		logutil.GetLogger(req.Context()).Error("encode body failed", zap.String("codec", c.Name()), zap.Error(err))
		return body
	}
	if len(encoded) >= len(body) {
		return body
	}
	rsp.Header.Set("Content-Encoding", c.Name())
	return encoded
}

// WriteResponse 输出状态行, 合并后的header与响应体. req可以为nil
func WriteResponse(w *bufio.Writer, req *Request, rsp *Response, codecs []Codec) error {
	if rsp.File != nil {
		defer rsp.File.Close()
	}
	h := defaultHeader()
	h.Merge(rsp.Header)
	rsp.Header = h
	isHead := req != nil && req.Method == "HEAD"
	var body []byte
	switch {
	case noBodyStatus(rsp.Status):
		rsp.Header.Del("Content-Length")
	case rsp.File != nil:
		rsp.Header.Set("Content-Length", strconv.FormatInt(rsp.Size, 10))
	case isHead && len(rsp.Body) == 0 && rsp.Header.Has("Content-Length"):
	default:
		body = encodeBody(req, rsp, codecs)
		rsp.Header.Set("Content-Length", strconv.Itoa(len(body)))
	}
	if _, err := w.WriteString(StatusLine(rsp.Status) + "\r\n"); err != nil {
		return err
	}
	var werr error
	rsp.Header.Each(func(k string, v string) {
		if werr != nil {
			return
		}
		_, werr = w.WriteString(k + ": " + v + "\r\n")
	})
	if werr != nil {
		return werr
	}
	if _, err := w.WriteString("\r\n"); err != nil {
		return err
	}
	if isHead || noBodyStatus(rsp.Status) {
		return w.Flush()
	}
	if rsp.File != nil {
		buf := make([]byte, transferChunkSize)
		if _, err := io.CopyBuffer(onlyWriter{w}, onlyReader{io.LimitReader(rsp.File, rsp.Size)}, buf); err != nil {
			return err
		}
		return w.Flush()
	}
	if _, err := w.Write(body); err != nil {
		return err
	}
	return w.Flush()
}
