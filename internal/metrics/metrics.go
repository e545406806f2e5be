// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsCollector はメトリクス収集のインターフェース。
// 生成パイプラインやハンドラー層から利用する。
type MetricsCollector interface {
	RecordGenerationOutcome(outcome string)
	RecordSearch(provider string)
	RecordSearchError(provider string)
	RecordArticleFetchLatency(duration time.Duration)
	RecordSummarizeFailure()
	RecordDelivery(delivered bool)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	generationOutcome *prometheus.CounterVec
	searchTotal       *prometheus.CounterVec
	searchErrors      *prometheus.CounterVec
	fetchLatency      prometheus.Histogram
	summarizeFail     prometheus.Counter
	deliveries        *prometheus.CounterVec
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		generationOutcome: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "newspulse_generation_total",
			Help: "ニュースレター生成の結果別合計数",
		}, []string{"outcome"}),
		searchTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "newspulse_search_total",
			Help: "検索プロバイダ呼び出しの合計数",
		}, []string{"provider"}),
		searchErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "newspulse_search_errors_total",
			Help: "検索プロバイダエラーの合計数",
		}, []string{"provider"}),
		fetchLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "newspulse_article_fetch_latency_seconds",
			Help:    "記事フェッチのレイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}),
		summarizeFail: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "newspulse_summarize_fail_total",
			Help: "要約生成失敗の合計数",
		}),
		deliveries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "newspulse_deliveries_total",
			Help: "メール配信試行の結果別合計数",
		}, []string{"delivered"}),
	}

	reg.MustRegister(
		c.generationOutcome,
		c.searchTotal,
		c.searchErrors,
		c.fetchLatency,
		c.summarizeFail,
		c.deliveries,
	)

	return c
}

// RecordGenerationOutcome は生成結果（Sent/Skipped/Failed）を記録する。
func (c *Collector) RecordGenerationOutcome(outcome string) {
	c.generationOutcome.WithLabelValues(outcome).Inc()
}

// RecordSearch は検索プロバイダ呼び出しを記録する。
func (c *Collector) RecordSearch(provider string) {
	c.searchTotal.WithLabelValues(provider).Inc()
}

// RecordSearchError は検索プロバイダエラーを記録する。
func (c *Collector) RecordSearchError(provider string) {
	c.searchErrors.WithLabelValues(provider).Inc()
}

// RecordArticleFetchLatency は記事フェッチのレイテンシを記録する。
func (c *Collector) RecordArticleFetchLatency(duration time.Duration) {
	c.fetchLatency.Observe(duration.Seconds())
}

// RecordSummarizeFailure は要約生成失敗を記録する。
func (c *Collector) RecordSummarizeFailure() {
	c.summarizeFail.Inc()
}

// RecordDelivery はメール配信試行を記録する。
func (c *Collector) RecordDelivery(delivered bool) {
	label := "false"
	if delivered {
		label = "true"
	}
	c.deliveries.WithLabelValues(label).Inc()
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// SetupMetricsRoute は/metricsエンドポイントを提供するHTTPハンドラーを返す。
// Prometheusスクレイプに対応する。
func SetupMetricsRoute(gatherer prometheus.Gatherer) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler(gatherer))
	return mux
}

// compile-time interface check
var _ MetricsCollector = (*Collector)(nil)
