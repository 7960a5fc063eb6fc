package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP request metrics
	HttpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status_code"},
	)

	HttpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// Business metrics for the analysis pipeline
	AnalysisRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "analysis_runs_total",
			Help: "Total number of analysis runs by terminal outcome",
		},
		[]string{"outcome"},
	)

	AnalysisRunDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "analysis_run_duration_seconds",
			Help:    "Wall-clock duration of completed analysis runs",
			Buckets: []float64{1, 2, 5, 10, 20, 30, 60, 120},
		},
	)

	CommentsFetched = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "analysis_comments_fetched",
			Help:    "Comments fetched per run before analyzer truncation",
			Buckets: []float64{0, 10, 25, 50, 100, 150, 200, 300},
		},
	)

	// Upstream API metrics
	YouTubeRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "youtube_api_requests_total",
			Help: "Total number of YouTube Data API requests",
		},
		[]string{"endpoint", "status"},
	)

	GeminiRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gemini_requests_total",
			Help: "Total number of Gemini generateContent requests",
		},
		[]string{"status"},
	)

	// Application health metrics
	ApplicationInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "application_info",
			Help: "Application information",
		},
		[]string{"service", "version", "environment"},
	)
)

// Init stamps the application info gauge with static labels.
func Init(serviceName, version, environment string) {
	ApplicationInfo.WithLabelValues(serviceName, version, environment).Set(1)
}
