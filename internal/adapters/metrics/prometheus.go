package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	once sync.Once

	ReportsSavedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "inspection",
		Subsystem: "reports",
		Name:      "saved_total",
		Help:      "Reports persisted, labeled by project.",
	}, []string{"project_id"})

	LatestScore = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "inspection",
		Subsystem: "reports",
		Name:      "latest_score",
		Help:      "Overall score of the most recently saved report per project.",
	}, []string{"project_id"})

	SignaturesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "inspection",
		Subsystem: "reports",
		Name:      "signatures_total",
		Help:      "Signatures recorded, labeled by slot.",
	}, []string{"slot"})

	CompletedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "inspection",
		Subsystem: "reports",
		Name:      "completed_total",
		Help:      "Reports moved to Completed, labeled by project.",
	}, []string{"project_id"})

	TransitionsRejectedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "inspection",
		Subsystem: "lifecycle",
		Name:      "rejected_total",
		Help:      "Lifecycle operations refused, labeled by operation and reason.",
	}, []string{"operation", "reason"})

	PhotoUploadsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "inspection",
		Subsystem: "photos",
		Name:      "uploads_total",
		Help:      "Photo uploads, labeled by outcome.",
	}, []string{"outcome"})

	HTTPRequestDurationSeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "inspection",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency by method, route pattern and status.",
		Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
	}, []string{"method", "route", "status"})
)

// Init registers every collector once with the default registry.
func Init() {
	once.Do(func() {
		prometheus.MustRegister(
			ReportsSavedTotal,
			LatestScore,
			SignaturesTotal,
			CompletedTotal,
			TransitionsRejectedTotal,
			PhotoUploadsTotal,
			HTTPRequestDurationSeconds,
		)
	})
}

func Handler() http.Handler {
	Init()
	return promhttp.Handler()
}

// Recorder implements ports.Metrics on top of the package collectors.
type Recorder struct{}

func NewRecorder() *Recorder {
	Init()
	return &Recorder{}
}

func (Recorder) ReportSaved(projectID string, score int) {
	ReportsSavedTotal.WithLabelValues(projectID).Inc()
	LatestScore.WithLabelValues(projectID).Set(float64(score))
}

func (Recorder) ReportSigned(slot string) {
	SignaturesTotal.WithLabelValues(slot).Inc()
}

func (Recorder) ReportCompleted(projectID string) {
	CompletedTotal.WithLabelValues(projectID).Inc()
}

func (Recorder) TransitionRejected(operation, reason string) {
	TransitionsRejectedTotal.WithLabelValues(operation, reason).Inc()
}

func (Recorder) PhotoUpload(outcome string) {
	PhotoUploadsTotal.WithLabelValues(outcome).Inc()
}

func ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	HTTPRequestDurationSeconds.WithLabelValues(method, route, strconv.Itoa(status)).Observe(elapsed.Seconds())
}
