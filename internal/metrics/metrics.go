// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// キャッシュ参照結果のラベル値
const (
	CacheHit   = "hit"
	CacheMiss  = "miss"
	CacheStale = "stale"
)

// 上流リクエストの種別ラベル値
const (
	KindListing = "listing"
	KindItem    = "item"
)

// MetricsCollector はメトリクス収集のインターフェース。
// hnapiクライアントやHTTPハンドラーから利用する。
type MetricsCollector interface {
	RecordCacheResult(result string)
	RecordUpstreamStatus(statusCode int)
	RecordUpstreamLatency(duration time.Duration)
	RecordUpstreamFailure(kind string)
	RecordItemSkipped()
	RecordStoriesLoaded(category string, count int)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	cacheResults    *prometheus.CounterVec
	upstreamStatus  *prometheus.CounterVec
	upstreamLatency prometheus.Histogram
	upstreamFail    *prometheus.CounterVec
	itemsSkipped    prometheus.Counter
	storiesLoaded   *prometheus.CounterVec
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		cacheResults: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "hnfeed_cache_lookups_total",
			Help: "レスポンスキャッシュの参照結果別の回数",
		}, []string{"result"}),
		upstreamStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "hnfeed_upstream_status_total",
			Help: "Hacker News APIのHTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
		upstreamLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "hnfeed_upstream_latency_seconds",
			Help:    "Hacker News API呼び出しのレイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}),
		upstreamFail: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "hnfeed_upstream_fail_total",
			Help: "Hacker News API呼び出し失敗の合計数",
		}, []string{"kind"}),
		itemsSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "hnfeed_items_skipped_total",
			Help: "取得できなかった、または削除済みのためスキップしたアイテム数",
		}),
		storiesLoaded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "hnfeed_stories_loaded_total",
			Help: "カテゴリ別に読み込んだストーリーの合計数",
		}, []string{"category"}),
	}

	reg.MustRegister(
		c.cacheResults,
		c.upstreamStatus,
		c.upstreamLatency,
		c.upstreamFail,
		c.itemsSkipped,
		c.storiesLoaded,
	)

	return c
}

// RecordCacheResult はキャッシュ参照結果（hit/miss/stale）を記録する。
func (c *Collector) RecordCacheResult(result string) {
	c.cacheResults.WithLabelValues(result).Inc()
}

// RecordUpstreamStatus は上流APIのHTTPステータスコードを記録する。
func (c *Collector) RecordUpstreamStatus(statusCode int) {
	c.upstreamStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// RecordUpstreamLatency は上流API呼び出しのレイテンシを記録する。
func (c *Collector) RecordUpstreamLatency(duration time.Duration) {
	c.upstreamLatency.Observe(duration.Seconds())
}

// RecordUpstreamFailure は上流API呼び出しの失敗を記録する。
func (c *Collector) RecordUpstreamFailure(kind string) {
	c.upstreamFail.WithLabelValues(kind).Inc()
}

// RecordItemSkipped はスキップしたアイテムを記録する。
func (c *Collector) RecordItemSkipped() {
	c.itemsSkipped.Inc()
}

// RecordStoriesLoaded は読み込んだストーリー数を記録する。
func (c *Collector) RecordStoriesLoaded(category string, count int) {
	c.storiesLoaded.WithLabelValues(category).Add(float64(count))
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// Nop は何も記録しないMetricsCollector。
type Nop struct{}

func (Nop) RecordCacheResult(string) {}
func (Nop) RecordUpstreamStatus(int) {}
func (Nop) RecordUpstreamLatency(time.Duration) {}
func (Nop) RecordUpstreamFailure(string) {}
func (Nop) RecordItemSkipped() {}
func (Nop) RecordStoriesLoaded(string, int) {}
