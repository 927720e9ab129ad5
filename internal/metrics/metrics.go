// Package metrics exposes Prometheus collectors for the HTTP surface and
// the generation and quiz flows. Every method is safe on a nil *Metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "questionai"

type Metrics struct {
	Registry *prometheus.Registry

	summaryVec *prometheus.SummaryVec
	counterVec *prometheus.CounterVec

	quotaRejections *prometheus.CounterVec
	generations     *prometheus.CounterVec
	questions       prometheus.Counter
	quizSubmissions *prometheus.CounterVec
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	f := promauto.With(reg)

	return &Metrics{
		Registry: reg,
		summaryVec: f.NewSummaryVec(prometheus.SummaryOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Objectives: map[float64]float64{
				0.5:  0.05,
				0.9:  0.01,
				0.95: 0.005,
				0.99: 0.001,
			},
		}, []string{"method", "path", "status_code"}),
		counterVec: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		}, []string{"method", "path", "status_code"}),
		quotaRejections: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "quota_rejections_total",
			Help:      "Generation requests refused by the daily quota",
		}, []string{"subject"}),
		generations: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "generations_total",
			Help:      "Completed generation requests by question source",
		}, []string{"subject", "source"}),
		questions: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "questions_generated_total",
			Help:      "Questions handed out to users",
		}),
		quizSubmissions: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "quiz_submissions_total",
			Help:      "Quiz submissions by outcome",
		}, []string{"outcome"}),
	}
}

// Middleware records duration and count per route pattern.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		path := r.URL.Path
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			path = rc.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		code := strconv.Itoa(status)
		m.summaryVec.WithLabelValues(r.Method, path, code).Observe(time.Since(start).Seconds())
		m.counterVec.WithLabelValues(r.Method, path, code).Inc()
	})
}

func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{Registry: m.Registry})
}

func (m *Metrics) QuotaRejected(subject string) {
	if m == nil {
		return
	}
	m.quotaRejections.WithLabelValues(subject).Inc()
}

func (m *Metrics) Generated(subject, source string, n int) {
	if m == nil {
		return
	}
	m.generations.WithLabelValues(subject, source).Inc()
	m.questions.Add(float64(n))
}

func (m *Metrics) QuizSubmitted(outcome string) {
	if m == nil {
		return
	}
	m.quizSubmissions.WithLabelValues(outcome).Inc()
}
