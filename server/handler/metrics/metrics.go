package metrics

import (
	"bytes"
	"context"
	"fmt"

	"github.com/xxxsen/davbox/httpd"
	"github.com/xxxsen/davbox/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
)

const Path = "/metrics"

type MetricsHandler struct {
	gatherer prometheus.Gatherer
}

func New() *MetricsHandler {
	return &MetricsHandler{gatherer: metrics.Gatherer()}
}

func (h *MetricsHandler) Name() string {
	return "metrics"
}

func (h *MetricsHandler) CanHandle(r *httpd.Request) bool {
	return r.Method == "GET" && r.Path == Path
}

func (h *MetricsHandler) Handle(ctx context.Context, r *httpd.Request) (*httpd.Response, error) {
	mfs, err := h.gatherer.Gather()
	if err != nil {
		return nil, fmt.Errorf("gather metrics failed, err:%w", err)
	}
	format := expfmt.NewFormat(expfmt.TypeTextPlain)
	buf := bytes.NewBuffer(nil)
	enc := expfmt.NewEncoder(buf, format)
	for _, mf := range mfs {
		if err := enc.Encode(mf); err != nil {
			return nil, fmt.Errorf("encode metric family failed, name:%s, err:%w", mf.GetName(), err)
		}
	}
	return httpd.NewResponse(httpd.StatusOK).SetBody(string(format), buf.Bytes()), nil
}
