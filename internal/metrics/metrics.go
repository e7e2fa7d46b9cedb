// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsCollector はメトリクス収集のインターフェース。
// ハンドラーやサービス層から利用する。
type MetricsCollector interface {
	RecordHTTPStatus(statusCode int)
	RecordSearchLatency(duration time.Duration)
	RecordKeywordClick(keyword string)
	RecordPageDownload()
	RecordProxyFetchSuccess()
	RecordProxyFetchFailure(reason string)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	httpStatus    *prometheus.CounterVec
	searchLatency prometheus.Histogram
	keywordClicks *prometheus.CounterVec
	pageDownloads prometheus.Counter
	proxySuccess  prometheus.Counter
	proxyFail     *prometheus.CounterVec
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "nurie_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
		searchLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "nurie_search_latency_seconds",
			Help:    "カタログ検索のレイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}),
		keywordClicks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "nurie_keyword_clicks_total",
			Help: "キーワード別のクリック数",
		}, []string{"keyword"}),
		pageDownloads: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "nurie_page_downloads_total",
			Help: "ぬりえページのダウンロード合計数",
		}),
		proxySuccess: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "nurie_proxy_fetch_success_total",
			Help: "画像プロキシ取得成功の合計数",
		}),
		proxyFail: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "nurie_proxy_fetch_fail_total",
			Help: "画像プロキシ取得失敗の理由別合計数",
		}, []string{"reason"}),
	}

	reg.MustRegister(
		c.httpStatus,
		c.searchLatency,
		c.keywordClicks,
		c.pageDownloads,
		c.proxySuccess,
		c.proxyFail,
	)

	return c
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// RecordSearchLatency はカタログ検索のレイテンシを記録する。
func (c *Collector) RecordSearchLatency(duration time.Duration) {
	c.searchLatency.Observe(duration.Seconds())
}

// RecordKeywordClick はキーワードのクリックを記録する。
func (c *Collector) RecordKeywordClick(keyword string) {
	c.keywordClicks.WithLabelValues(keyword).Inc()
}

// RecordPageDownload はページのダウンロードを記録する。
func (c *Collector) RecordPageDownload() {
	c.pageDownloads.Inc()
}

// RecordProxyFetchSuccess は画像プロキシの取得成功を記録する。
func (c *Collector) RecordProxyFetchSuccess() {
	c.proxySuccess.Inc()
}

// RecordProxyFetchFailure は画像プロキシの取得失敗を理由付きで記録する。
func (c *Collector) RecordProxyFetchFailure(reason string) {
	c.proxyFail.WithLabelValues(reason).Inc()
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
