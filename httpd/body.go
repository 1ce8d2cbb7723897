package httpd

import (
	"io"
)

// DefaultBufferThreshold 达到该大小的请求体不预读, 以流的方式交给handler
const DefaultBufferThreshold = 4096

const transferChunkSize = 4096

// BodyStream 惰性读取的请求体, 最多读取声明的Content-Length
type BodyStream struct {
	r      io.Reader
	remain int64
}

func newBodyStream(r io.Reader, size int64) *BodyStream {
	return &BodyStream{r: r, remain: size}
}

func (b *BodyStream) Remaining() int64 {
	return b.remain
}

func (b *BodyStream) Read(p []byte) (int, error) {
	if b.remain <= 0 {
		return 0, io.EOF
	}
	if int64(len(p)) > b.remain {
		p = p[:b.remain]
	}
	n, err := b.r.Read(p)
	b.remain -= int64(n)
	if err == io.EOF && b.remain > 0 {
		err = io.ErrUnexpectedEOF
	}
	return n, err
}

// ReceiveInto 分块写入目标, 不在内存中保留完整内容
func (b *BodyStream) ReceiveInto(w io.Writer) (int64, error) {
	buf := make([]byte, transferChunkSize)
	return io.CopyBuffer(onlyWriter{w}, onlyReader{b}, buf)
}

// Discard 丢弃剩余内容
func (b *BodyStream) Discard() error {
	_, err := io.Copy(io.Discard, onlyReader{b})
	return err
}

// onlyReader 屏蔽WriterTo/ReaderFrom, 确保按固定大小分块
type onlyReader struct {
	io.Reader
}

type onlyWriter struct {
	io.Writer
}
