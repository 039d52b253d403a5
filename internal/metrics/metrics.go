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
// サービス層およびミドルウェアから利用する。
type MetricsCollector interface {
	RecordLogin(success bool)
	RecordSignup()
	RecordFeedbackCreated(rating int)
	RecordAIRequest(operation string, success bool, duration time.Duration)
	RecordHTTPRequest(statusCode int, duration time.Duration)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	logins          *prometheus.CounterVec
	signups         prometheus.Counter
	feedbackCreated *prometheus.CounterVec
	aiRequests      *prometheus.CounterVec
	aiLatency       prometheus.Histogram
	httpStatus      *prometheus.CounterVec
	httpLatency     prometheus.Histogram
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "classpulse_logins_total",
			Help: "ログイン試行の合計数（結果別）",
		}, []string{"result"}),
		signups: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "classpulse_signups_total",
			Help: "サインアップ成功の合計数",
		}),
		feedbackCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "classpulse_feedback_created_total",
			Help: "投稿されたフィードバックの合計数（評価別）",
		}, []string{"rating"}),
		aiRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "classpulse_ai_requests_total",
			Help: "AI生成リクエストの合計数（操作・結果別）",
		}, []string{"operation", "result"}),
		aiLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "classpulse_ai_latency_seconds",
			Help:    "AI生成リクエストのレイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "classpulse_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
		httpLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "classpulse_http_latency_seconds",
			Help:    "HTTPリクエストのレイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}),
	}

	reg.MustRegister(
		c.logins,
		c.signups,
		c.feedbackCreated,
		c.aiRequests,
		c.aiLatency,
		c.httpStatus,
		c.httpLatency,
	)

	return c
}

// RecordLogin はログイン試行の結果を記録する。
func (c *Collector) RecordLogin(success bool) {
	c.logins.WithLabelValues(resultLabel(success)).Inc()
}

// RecordSignup はサインアップ成功を記録する。
func (c *Collector) RecordSignup() {
	c.signups.Inc()
}

// RecordFeedbackCreated はフィードバック投稿を評価別に記録する。
func (c *Collector) RecordFeedbackCreated(rating int) {
	c.feedbackCreated.WithLabelValues(strconv.Itoa(rating)).Inc()
}

// RecordAIRequest はAI生成リクエストの結果とレイテンシを記録する。
func (c *Collector) RecordAIRequest(operation string, success bool, duration time.Duration) {
	c.aiRequests.WithLabelValues(operation, resultLabel(success)).Inc()
	c.aiLatency.Observe(duration.Seconds())
}

// RecordHTTPRequest はHTTPレスポンスのステータスコードとレイテンシを記録する。
func (c *Collector) RecordHTTPRequest(statusCode int, duration time.Duration) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
	c.httpLatency.Observe(duration.Seconds())
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
