package httpd

import (
	"errors"
	"fmt"
)

// ProtocolError 请求格式错误, 由连接层转换为4xx响应
type ProtocolError struct {
	Status int
	Msg    string
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("protocol error, status:%d, msg:%s", e.Status, e.Msg)
}

func NewProtocolError(format string, args ...interface{}) *ProtocolError {
	return &ProtocolError{Status: StatusBadRequest, Msg: fmt.Sprintf(format, args...)}
}

func NewProtocolErrorWithStatus(status int, format string, args ...interface{}) *ProtocolError {
	return &ProtocolError{Status: status, Msg: fmt.Sprintf(format, args...)}
}

func AsProtocolError(err error) (*ProtocolError, bool) {
	var pe *ProtocolError
	if errors.As(err, &pe) {
		return pe, true
	}
	return nil, false
}
