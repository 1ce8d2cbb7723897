package httpd

import (
	"bytes"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zlib"
)

// Codec 响应体压缩算法
type Codec interface {
	Name() string
	Encode(raw []byte) ([]byte, error)
}

type gzipCodec struct{}

func (gzipCodec) Name() string {
	return "gzip"
}

func (gzipCodec) Encode(raw []byte) ([]byte, error) {
	buf := &bytes.Buffer{}
	w := gzip.NewWriter(buf)
	if _, err := w.Write(raw); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// deflateCodec http中的deflate实际为zlib格式
type deflateCodec struct{}

func (deflateCodec) Name() string {
	return "deflate"
}

func (deflateCodec) Encode(raw []byte) ([]byte, error) {
	buf := &bytes.Buffer{}
	w := zlib.NewWriter(buf)
	if _, err := w.Write(raw); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func GzipCodec() Codec {
	return gzipCodec{}
}

func DeflateCodec() Codec {
	return deflateCodec{}
}

func DefaultCodecs() []Codec {
	return []Codec{GzipCodec(), DeflateCodec()}
}

// parseAcceptEncoding 返回客户端接受的编码, q=0的项被排除
func parseAcceptEncoding(v string) map[string]bool {
	rs := make(map[string]bool)
	for _, item := range strings.Split(v, ",") {
		name, params, _ := strings.Cut(strings.TrimSpace(item), ";")
		name = strings.ToLower(strings.TrimSpace(name))
		if len(name) == 0 {
			continue
		}
		if q, ok := strings.CutPrefix(strings.TrimSpace(params), "q="); ok && isZeroQ(q) {
			continue
		}
		rs[name] = true
	}
	return rs
}

func isZeroQ(q string) bool {
	q = strings.TrimSpace(q)
	return strings.Trim(q, "0.") == "" && len(q) > 0
}

// pickCodec 按codecs顺序选第一个客户端接受的
func pickCodec(codecs []Codec, acceptEncoding string) Codec {
	if len(acceptEncoding) == 0 {
		return nil
	}
	accepted := parseAcceptEncoding(acceptEncoding)
	for _, c := range codecs {
		if accepted[c.Name()] || accepted["*"] {
			return c
		}
	}
	return nil
}
