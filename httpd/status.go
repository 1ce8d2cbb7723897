package httpd

import "strconv"

const ( // status codes
	StatusOK                   = 200
	StatusCreated              = 201
	StatusNoContent            = 204
	StatusMultiStatus          = 207
	StatusNotModified          = 304
	StatusBadRequest           = 400
	StatusUnauthorized         = 401
	StatusForbidden            = 403
	StatusNotFound             = 404
	StatusMethodNotAllowed     = 405
	StatusConflict             = 409
	StatusPreconditionFailed   = 412
	StatusContentTooLarge      = 413
	StatusUnsupportedMediaType = 415
	StatusInternalServerError  = 500
	StatusNotImplemented       = 501
)

var statusTexts = map[int]string{
	StatusOK:                   "OK",
	StatusCreated:              "Created",
	StatusNoContent:            "No Content",
	StatusMultiStatus:          "Multi-Status",
	StatusNotModified:          "Not Modified",
	StatusBadRequest:           "Bad Request",
	StatusUnauthorized:         "Unauthorized",
	StatusForbidden:            "Forbidden",
	StatusNotFound:             "Not Found",
	StatusMethodNotAllowed:     "Method Not Allowed",
	StatusConflict:             "Conflict",
	StatusPreconditionFailed:   "Precondition Failed",
	StatusContentTooLarge:      "Content Too Large",
	StatusUnsupportedMediaType: "Unsupported Media Type",
	StatusInternalServerError:  "Internal Server Error",
	StatusNotImplemented:       "Not Implemented",
}

func StatusText(code int) string {
	if s, ok := statusTexts[code]; ok {
		return s
	}
	return "Unknown"
}

// StatusLine 例如: HTTP/1.1 207 Multi-Status
func StatusLine(code int) string {
	return "HTTP/1.1 " + strconv.Itoa(code) + " " + StatusText(code)
}
