package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "davbox"

var registry = prometheus.NewRegistry()

var (
	requestsTotal = promauto.With(registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_total",
			Help:      "Total number of handled requests",
		},
		[]string{"handler", "method", "status"},
	)

	requestDuration = promauto.With(registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "request_duration_seconds",
			Help:      "Request handling duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"handler", "method"},
	)

	taskWaitDuration = promauto.With(registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "storage_task_wait_seconds",
			Help:      "Time a storage task spent in queue",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 10),
		},
		[]string{"task"},
	)

	taskExecDuration = promauto.With(registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "storage_task_exec_seconds",
			Help:      "Storage task execution time",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 10),
		},
		[]string{"task"},
	)

	bytesUploaded = promauto.With(registry).NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "content_bytes_uploaded_total",
			Help:      "Total bytes uploaded via PUT",
		},
	)

	bytesDownloaded = promauto.With(registry).NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "content_bytes_downloaded_total",
			Help:      "Total bytes served via GET",
		},
	)
)

func init() {
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
}

// Gatherer 供/metrics输出使用
func Gatherer() prometheus.Gatherer {
	return registry
}

func ObserveRequest(handler string, method string, status int, cost time.Duration) {
	requestsTotal.WithLabelValues(handler, method, strconv.Itoa(status)).Inc()
	requestDuration.WithLabelValues(handler, method).Observe(cost.Seconds())
}

func ObserveTask(name string, wait time.Duration, cost time.Duration) {
	taskWaitDuration.WithLabelValues(name).Observe(wait.Seconds())
	taskExecDuration.WithLabelValues(name).Observe(cost.Seconds())
}

func AddUploadBytes(n int64) {
	if n > 0 {
		bytesUploaded.Add(float64(n))
	}
}

func AddDownloadBytes(n int64) {
	if n > 0 {
		bytesDownloaded.Add(float64(n))
	}
}
