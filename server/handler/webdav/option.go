package webdav

import (
	"context"
	"strings"

	"github.com/xxxsen/davbox/httpd"
)

const davClass = "1, 3"

func (h *WebdavHandler) setDavHeader(rsp *httpd.Response) {
	rsp.Header.Set("Allow", strings.Join(AllowMethods, ", "))
	rsp.Header.Set("DAV", davClass)
}

func (h *WebdavHandler) handleOption(ctx context.Context, r *httpd.Request) (*httpd.Response, error) {
	rsp := status(httpd.StatusNoContent)
	h.setDavHeader(rsp)
	rsp.Header.Set("MS-Author-Via", "DAV")
	rsp.Header.Set("Accept-Encoding", "gzip, deflate")
	return rsp, nil
}
