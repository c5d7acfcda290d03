// Package metrics 汇总 Prometheus 指标，进程内注册一次。
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequests 按路由模板统计请求数
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "gate",
		Name:      "http_requests_total",
		Help:      "HTTP requests processed, by method, route and status.",
	}, []string{"method", "route", "status"})

	// HTTPLatency 请求耗时
	HTTPLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "gate",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency, by method and route.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})

	// Toggles 出入状态切换次数
	Toggles = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "gate",
		Name:      "toggles_total",
		Help:      "Successful status toggles, by resulting direction.",
	}, []string{"direction"})

	// ToggleConflicts 并发切换被拒次数
	ToggleConflicts = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "gate",
		Name:      "toggle_conflicts_total",
		Help:      "Toggles rejected because the student row changed concurrently.",
	})

	// ImportRows CSV 导入行结果
	ImportRows = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "gate",
		Name:      "import_rows_total",
		Help:      "CSV import rows, by outcome (created, updated, error).",
	}, []string{"outcome"})
)
