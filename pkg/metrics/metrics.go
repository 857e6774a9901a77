// Package metrics 提供 Prometheus helper，包含 HTTP 指标与借阅业务指标
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics 指标集合
type Metrics struct {
	registry *prometheus.Registry

	// HTTP 请求计数（按方法、路由、状态码）
	HTTPRequestsTotal *prometheus.CounterVec
	// HTTP 请求耗时
	HTTPRequestDuration *prometheus.HistogramVec

	// 借出计数
	CheckoutsTotal prometheus.Counter
	// 归还计数
	ReturnsTotal prometheus.Counter
	// 被拒绝的借出计数（无库存/重复借阅）
	CheckoutRejectionsTotal prometheus.Counter
	// 当前在借数量
	LoansActive prometheus.Gauge
	// 报表导出计数（按报表、格式）
	ReportExportsTotal *prometheus.CounterVec
}

// New 创建指标实例，使用独立 registry 避免与默认 registry 冲突
func New(serviceName string) *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := &Metrics{
		registry: registry,
		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "library",
			Subsystem: serviceName,
			Name:      "http_requests_total",
			Help:      "Total HTTP requests",
		}, []string{"method", "path", "status"}),
		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "library",
			Subsystem: serviceName,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "path"}),
		CheckoutsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "library",
			Subsystem: serviceName,
			Name:      "checkouts_total",
			Help:      "Total successful book checkouts",
		}),
		ReturnsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "library",
			Subsystem: serviceName,
			Name:      "returns_total",
			Help:      "Total successful book returns",
		}),
		CheckoutRejectionsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "library",
			Subsystem: serviceName,
			Name:      "checkout_rejections_total",
			Help:      "Checkouts rejected by business rules",
		}),
		LoansActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "library",
			Subsystem: serviceName,
			Name:      "loans_active",
			Help:      "Currently open borrowing records",
		}),
		ReportExportsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "library",
			Subsystem: serviceName,
			Name:      "report_exports_total",
			Help:      "Report exports by report name and format",
		}, []string{"report", "format"}),
	}

	registry.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.CheckoutsTotal,
		m.ReturnsTotal,
		m.CheckoutRejectionsTotal,
		m.LoansActive,
		m.ReportExportsTotal,
	)

	return m
}

// Handler 返回 Prometheus 抓取端点的处理器
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
