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
// サービス層・ミドルウェア・ワーカーから利用する。
type MetricsCollector interface {
	RecordProgressSaved()
	RecordProgressSaveFailure(reason string)
	RecordLogin(success bool)
	RecordSignup(success bool)
	RecordHTTPStatus(statusCode int)
	RecordRequestLatency(duration time.Duration)
	RecordSessionsCleaned(count int64)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	progressSaved    prometheus.Counter
	progressSaveFail *prometheus.CounterVec
	logins           *prometheus.CounterVec
	signups          *prometheus.CounterVec
	httpStatus       *prometheus.CounterVec
	requestLatency   prometheus.Histogram
	sessionsCleaned  prometheus.Counter
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		progressSaved: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "earshelf_progress_saved_total",
			Help: "再生位置保存成功の合計数",
		}),
		progressSaveFail: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "earshelf_progress_save_fail_total",
			Help: "再生位置保存失敗の合計数",
		}, []string{"reason"}),
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "earshelf_login_total",
			Help: "ログイン試行の合計数",
		}, []string{"result"}),
		signups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "earshelf_signup_total",
			Help: "サインアップ試行の合計数",
		}, []string{"result"}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "earshelf_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
		requestLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "earshelf_request_latency_seconds",
			Help:    "HTTPリクエストのレイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}),
		sessionsCleaned: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "earshelf_sessions_cleaned_total",
			Help: "削除された期限切れセッションの合計数",
		}),
	}

	reg.MustRegister(
		c.progressSaved,
		c.progressSaveFail,
		c.logins,
		c.signups,
		c.httpStatus,
		c.requestLatency,
		c.sessionsCleaned,
	)

	return c
}

// RecordProgressSaved は再生位置保存の成功を記録する。
func (c *Collector) RecordProgressSaved() {
	c.progressSaved.Inc()
}

// RecordProgressSaveFailure は再生位置保存の失敗を記録する。
// reasonはエラーコード（INVALID_INPUT, NOT_FOUND, STORAGE_UNAVAILABLE等）。
func (c *Collector) RecordProgressSaveFailure(reason string) {
	c.progressSaveFail.WithLabelValues(reason).Inc()
}

// RecordLogin はログイン試行の結果を記録する。
func (c *Collector) RecordLogin(success bool) {
	c.logins.WithLabelValues(resultLabel(success)).Inc()
}

// RecordSignup はサインアップ試行の結果を記録する。
func (c *Collector) RecordSignup(success bool) {
	c.signups.WithLabelValues(resultLabel(success)).Inc()
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// RecordRequestLatency はリクエストのレイテンシを記録する。
func (c *Collector) RecordRequestLatency(duration time.Duration) {
	c.requestLatency.Observe(duration.Seconds())
}

// RecordSessionsCleaned は削除された期限切れセッション数を記録する。
func (c *Collector) RecordSessionsCleaned(count int64) {
	c.sessionsCleaned.Add(float64(count))
}

func resultLabel(success bool) string {
	if success {
		return "success"
	}
	return "failure"
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// Nop は何も記録しないMetricsCollector。テストやメトリクス無効時に使用する。
type Nop struct{}

func (Nop) RecordProgressSaved()               {}
func (Nop) RecordProgressSaveFailure(string)   {}
func (Nop) RecordLogin(bool)                   {}
func (Nop) RecordSignup(bool)                  {}
func (Nop) RecordHTTPStatus(int)               {}
func (Nop) RecordRequestLatency(time.Duration) {}
func (Nop) RecordSessionsCleaned(int64)        {}

var (
	_ MetricsCollector = (*Collector)(nil)
	_ MetricsCollector = Nop{}
)
