// Package metrics 提供 Prometheus 指标集合，注册在独立的 Registry 上
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "stockinsight"

// Metrics 指标集合。所有 Record 方法对 nil 接收者安全，测试中可直接传 nil。
type Metrics struct {
	registry *prometheus.Registry

	// HTTP 请求计数
	HTTPRequestsTotal *prometheus.CounterVec
	// HTTP 请求耗时
	HTTPRequestDuration *prometheus.HistogramVec

	// 行情拉取次数，按数据类型与结果区分
	FetchTotal *prometheus.CounterVec
	// 写入（upsert）的 K 线条数
	BarsUpsertedTotal prometheus.Counter
	// 持久化的预测条数
	PredictionsPersistedTotal prometheus.Counter
	// 回测次数
	BacktestsTotal prometheus.Counter
	// 回测成交笔数
	TradesTotal prometheus.Counter
	// 报告生成次数
	ReportsRenderedTotal *prometheus.CounterVec
	// 定时刷新任务
	ScheduledRefreshTotal *prometheus.CounterVec
}

// New 创建指标实例并注册到私有 Registry
func New(serviceName string) *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: serviceName,
			Name:      "http_requests_total",
			Help:      "Total HTTP requests",
		}, []string{"method", "route", "status"}),
		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: serviceName,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		FetchTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fetch_total",
			Help:      "Market data fetches by kind and outcome",
		}, []string{"kind", "outcome"}),
		BarsUpsertedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bars_upserted_total",
			Help:      "Daily bars written to the price store",
		}),
		PredictionsPersistedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "predictions_persisted_total",
			Help:      "Predicted prices inserted",
		}),
		BacktestsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "backtests_total",
			Help:      "Backtests executed",
		}),
		TradesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "trades_total",
			Help:      "Simulated trades executed by backtests",
		}),
		ReportsRenderedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reports_rendered_total",
			Help:      "Reports rendered by format",
		}, []string{"format"}),
		ScheduledRefreshTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scheduled_refresh_total",
			Help:      "Watchlist refresh jobs by outcome",
		}, []string{"outcome"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.FetchTotal,
		m.BarsUpsertedTotal,
		m.PredictionsPersistedTotal,
		m.BacktestsTotal,
		m.TradesTotal,
		m.ReportsRenderedTotal,
		m.ScheduledRefreshTotal,
	)
	return m
}

// Registry 返回私有 Registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler 返回 /metrics 处理器
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) RecordHTTPRequest(method, route string, status int, seconds float64) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, route).Observe(seconds)
}

func (m *Metrics) RecordFetch(kind, outcome string) {
	if m == nil {
		return
	}
	m.FetchTotal.WithLabelValues(kind, outcome).Inc()
}

func (m *Metrics) RecordBarsUpserted(n int) {
	if m == nil {
		return
	}
	m.BarsUpsertedTotal.Add(float64(n))
}

func (m *Metrics) RecordPredictionsPersisted(n int) {
	if m == nil {
		return
	}
	m.PredictionsPersistedTotal.Add(float64(n))
}

// RecordBacktest 记录一次回测及其成交笔数
func (m *Metrics) RecordBacktest(trades int) {
	if m == nil {
		return
	}
	m.BacktestsTotal.Inc()
	m.TradesTotal.Add(float64(trades))
}

func (m *Metrics) RecordReport(format string) {
	if m == nil {
		return
	}
	m.ReportsRenderedTotal.WithLabelValues(format).Inc()
}

func (m *Metrics) RecordScheduledRefresh(outcome string) {
	if m == nil {
		return
	}
	m.ScheduledRefreshTotal.WithLabelValues(outcome).Inc()
}
