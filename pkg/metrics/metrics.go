package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/arnavshah/exam-staffing-api/pkg/models"
)

// Metrics owns a private Prometheus registry.
type Metrics struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	runDuration     prometheus.Histogram
	runsTotal       *prometheus.CounterVec
	sessionStatus   *prometheus.CounterVec
	backupsTotal    prometheus.Counter
	fairness        prometheus.Gauge
}

func New() *Metrics {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	runDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "schedule_run_duration_seconds",
		Help:    "Time spent computing one staffing schedule",
		Buckets: prometheus.ExponentialBuckets(0.001, 4, 8),
	})

	runsTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "schedule_runs_total",
		Help: "Scheduling runs by source",
	}, []string{"source"})

	sessionStatus := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "schedule_sessions_total",
		Help: "Sessions scheduled, by final status",
	}, []string{"status"})

	backupsTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "schedule_backups_total",
		Help: "Backup assignments generated",
	})

	fairness := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "schedule_fairness_score",
		Help: "Fairness score of the most recent run",
	})

	registry.MustRegister(requestDuration, requestTotal, runDuration, runsTotal, sessionStatus, backupsTotal, fairness)

	return &Metrics{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		runDuration:     runDuration,
		runsTotal:       runsTotal,
		sessionStatus:   sessionStatus,
		backupsTotal:    backupsTotal,
		fairness:        fairness,
	}
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

func (m *Metrics) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := strconv.Itoa(status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
}

// ObserveRun records one completed scheduling run
func (m *Metrics) ObserveRun(source string, result *models.AssignmentResult, duration time.Duration) {
	if m == nil || result == nil {
		return
	}
	m.runsTotal.WithLabelValues(source).Inc()
	m.runDuration.Observe(duration.Seconds())
	counts := result.Counts()
	m.sessionStatus.WithLabelValues(string(models.StatusAssigned)).Add(float64(counts.Assigned))
	m.sessionStatus.WithLabelValues(string(models.StatusPartiallyAssigned)).Add(float64(counts.PartiallyAssigned))
	m.sessionStatus.WithLabelValues(string(models.StatusUnassigned)).Add(float64(counts.Unassigned))
	m.backupsTotal.Add(float64(len(result.Backups)))
	m.fairness.Set(result.FairnessScore)
}

// GinMiddleware records request metrics labelled by route template
func (m *Metrics) GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		m.ObserveHTTPRequest(c.Request.Method, path, c.Writer.Status(), time.Since(start))
	}
}
