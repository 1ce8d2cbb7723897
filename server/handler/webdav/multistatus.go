package webdav

import (
	"github.com/xxxsen/davbox/davxml"
	"github.com/xxxsen/davbox/httpd"
	"github.com/xxxsen/davbox/server/httpkit"
)

const davNamespaceURI = "DAV:"

func newMultistatus() *davxml.Fragment {
	return davxml.NewElement("D", "multistatus").SetAttr("xmlns:D", davNamespaceURI)
}

func statusText(code int) string {
	return httpd.StatusLine(code)
}

func newPropstat(code int, props ...*davxml.Fragment) *davxml.Fragment {
	return davxml.NewElement("D", "propstat",
		davxml.NewElement("D", "prop", props...),
		davxml.NewElement("D", "status", davxml.NewText(statusText(code))),
	)
}

func newResponse(href string, propstats ...*davxml.Fragment) *davxml.Fragment {
	rsp := davxml.NewElement("D", "response", davxml.NewElement("D", "href", davxml.NewText(href)))
	rsp.AddChild(propstats...)
	return rsp
}

func multistatusResponse(ms *davxml.Fragment) *httpd.Response {
	return httpkit.XMLResponse(httpd.StatusMultiStatus, ms)
}
