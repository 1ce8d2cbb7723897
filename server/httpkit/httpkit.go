package httpkit

import (
	"encoding/json"
	"fmt"
	"mime"
	"path"
	"strconv"
	"time"

	"github.com/xxxsen/davbox/davxml"
	"github.com/xxxsen/davbox/httpd"

	"github.com/gabriel-vasile/mimetype"
)

const DefaultMimeType = "application/octet-stream"

func DetermineMimeType(filename string) string {
	ext := path.Ext(filename)
	mimeType := mime.TypeByExtension(ext)
	if mimeType == "" {
		return DefaultMimeType
	}
	return mimeType
}

// DetectMimeType 扩展名无法识别时根据内容头部探测
func DetectMimeType(filename string, head []byte) string {
	if mimeType := mime.TypeByExtension(path.Ext(filename)); mimeType != "" {
		return mimeType
	}
	if len(head) == 0 {
		return DefaultMimeType
	}
	return mimetype.Detect(head).String()
}

func SetDefaultDownloadHeader(rsp *httpd.Response, filename string, mimeType string, size int64, mtime time.Time) {
	rsp.Header.Set("Content-Type", mimeType)
	rsp.Header.Set("Content-Length", strconv.FormatInt(size, 10))
	rsp.Header.Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	if !mtime.IsZero() {
		rsp.Header.Set("Last-Modified", httpd.FormatTime(mtime))
	}
}

func XMLResponse(status int, frag *davxml.Fragment) *httpd.Response {
	return httpd.NewResponse(status).SetBody("application/xml; charset=utf-8", []byte(davxml.Serialize(frag)))
}

type commonResponse struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func JSONResponse(status int, code int, msg string, data interface{}) *httpd.Response {
	raw, err := json.Marshal(&commonResponse{Code: code, Message: msg, Data: data})
	if err != nil {
		return httpd.TextResponse(httpd.StatusInternalServerError, err.Error())
	}
	return httpd.NewResponse(status).SetBody("application/json; charset=utf-8", raw)
}

func SuccessJson(data interface{}) *httpd.Response {
	return JSONResponse(httpd.StatusOK, 0, "success", data)
}

func FailStatus(status int, err error) *httpd.Response {
	return JSONResponse(status, status, err.Error(), nil)
}
