package httpd

import (
	"bufio"
	"bytes"
	"io"
	"strconv"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zlib"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type rawResponse struct {
	status int
	header map[string]string
	body   []byte
}

func parseRawResponse(t *testing.T, raw []byte) *rawResponse {
	br := bufio.NewReader(bytes.NewReader(raw))
	line, err := br.ReadString('\n')
	require.NoError(t, err)
	items := strings.SplitN(strings.TrimSpace(line), " ", 3)
	require.True(t, len(items) >= 2)
	code, err := strconv.Atoi(items[1])
	require.NoError(t, err)
	rs := &rawResponse{status: code, header: map[string]string{}}
	for {
		line, err := br.ReadString('\n')
		require.NoError(t, err)
		line = strings.TrimRight(line, "\r\n")
		if len(line) == 0 {
			break
		}
		k, v, _ := strings.Cut(line, ": ")
		rs.header[strings.ToLower(k)] = v
	}
	rs.body, err = io.ReadAll(br)
	require.NoError(t, err)
	return rs
}

func writeToBytes(t *testing.T, req *Request, rsp *Response) *rawResponse {
	buf := &bytes.Buffer{}
	require.NoError(t, WriteResponse(bufio.NewWriter(buf), req, rsp, DefaultCodecs()))
	return parseRawResponse(t, buf.Bytes())
}

func newTestRequest(method string, headers map[string]string) *Request {
	r := &Request{Method: method, Path: "/", Header: NewHeader(), ContentLength: -1}
	for k, v := range headers {
		r.Header.Set(k, v)
	}
	return r
}

func TestWriteGzip(t *testing.T) {
	body := strings.Repeat("<D:response/>", 200)
	req := newTestRequest("PROPFIND", map[string]string{"Accept-Encoding": "gzip, deflate"})
	rs := writeToBytes(t, req, NewResponse(StatusMultiStatus).SetBody("application/xml", []byte(body)))
	assert.Equal(t, 207, rs.status)
	assert.Equal(t, "gzip", rs.header["content-encoding"])
	assert.Equal(t, "Accept-Encoding", rs.header["vary"])
	assert.Equal(t, "close", rs.header["connection"])
	assert.NotEmpty(t, rs.header["date"])
	assert.Equal(t, strconv.Itoa(len(rs.body)), rs.header["content-length"])
	zr, err := gzip.NewReader(bytes.NewReader(rs.body))
	require.NoError(t, err)
	plain, err := io.ReadAll(zr)
	require.NoError(t, err)
	assert.Equal(t, body, string(plain))
}

func TestWriteDeflate(t *testing.T) {
	body := strings.Repeat("abc", 300)
	req := newTestRequest("GET", map[string]string{"Accept-Encoding": "deflate, gzip;q=0"})
	rs := writeToBytes(t, req, NewResponse(StatusOK).SetBody("text/plain", []byte(body)))
	assert.Equal(t, "deflate", rs.header["content-encoding"])
	zr, err := zlib.NewReader(bytes.NewReader(rs.body))
	require.NoError(t, err)
	plain, err := io.ReadAll(zr)
	require.NoError(t, err)
	assert.Equal(t, body, string(plain))
}

func TestWriteNoCompressWhenLarger(t *testing.T) {
	req := newTestRequest("GET", map[string]string{"Accept-Encoding": "gzip"})
	rs := writeToBytes(t, req, NewResponse(StatusOK).SetBody("text/plain", []byte("hi")))
	_, ok := rs.header["content-encoding"]
	assert.False(t, ok)
	assert.Equal(t, "2", rs.header["content-length"])
	assert.Equal(t, "hi", string(rs.body))

	rs = writeToBytes(t, newTestRequest("GET", nil), NewResponse(StatusOK).SetBody("text/plain", []byte(strings.Repeat("a", 1000))))
	_, ok = rs.header["content-encoding"]
	assert.False(t, ok)
	assert.Equal(t, 1000, len(rs.body))
}

func TestWriteNoBodyStatus(t *testing.T) {
	rsp := NewResponse(StatusNoContent)
	rsp.Header.Set("DAV", "1, 3")
	rs := writeToBytes(t, newTestRequest("OPTIONS", nil), rsp)
	assert.Equal(t, 204, rs.status)
	_, ok := rs.header["content-length"]
	assert.False(t, ok)
	assert.Equal(t, "1, 3", rs.header["dav"])
	assert.Empty(t, rs.body)

	rs = writeToBytes(t, newTestRequest("MKCOL", nil), NewResponse(StatusCreated))
	assert.Equal(t, "0", rs.header["content-length"])
}

func TestWriteHead(t *testing.T) {
	rsp := NewResponse(StatusOK)
	rsp.Header.Set("Content-Length", "1234")
	rs := writeToBytes(t, newTestRequest("HEAD", nil), rsp)
	assert.Equal(t, "1234", rs.header["content-length"])
	assert.Empty(t, rs.body)
}

func TestWriteHandlerHeaderWins(t *testing.T) {
	rsp := NewResponse(StatusOK)
	rsp.Header.Set("connection", "keep-alive")
	rs := writeToBytes(t, nil, rsp)
	assert.Equal(t, "keep-alive", rs.header["connection"])
}

type closeRecorder struct {
	io.Reader
	closed bool
}

func (c *closeRecorder) Close() error {
	c.closed = true
	return nil
}

func TestWriteStream(t *testing.T) {
	payload := bytes.Repeat([]byte("x"), 10000)
	rc := &closeRecorder{Reader: bytes.NewReader(payload)}
	req := newTestRequest("GET", map[string]string{"Accept-Encoding": "gzip"})
	rs := writeToBytes(t, req, NewResponse(StatusOK).SetStream(rc, int64(len(payload))))
	assert.True(t, rc.closed)
	assert.Equal(t, "10000", rs.header["content-length"])
	_, ok := rs.header["content-encoding"]
	assert.False(t, ok)
	assert.Equal(t, payload, rs.body)
}

func TestStatusLine(t *testing.T) {
	assert.Equal(t, "HTTP/1.1 207 Multi-Status", StatusLine(207))
	assert.Equal(t, "HTTP/1.1 599 Unknown", StatusLine(599))
}

func TestPickCodec(t *testing.T) {
	cs := DefaultCodecs()
	assert.Nil(t, pickCodec(cs, ""))
	assert.Nil(t, pickCodec(cs, "br"))
	assert.Equal(t, "gzip", pickCodec(cs, "br, gzip;q=0.5").Name())
	assert.Equal(t, "deflate", pickCodec(cs, "gzip;q=0, deflate").Name())
	assert.Equal(t, "gzip", pickCodec(cs, "*").Name())
}
