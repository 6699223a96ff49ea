package monitoring

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	DBDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name: "reviewdesk_db_call_duration_seconds",
		Help: "Duration of database calls.",
	}, []string{"operation"})

	LLMDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "reviewdesk_llm_call_duration_seconds",
		Help:    "Duration of LLM completion calls.",
		Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 20, 30, 60},
	}, []string{"provider", "outcome"})

	LLMFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "reviewdesk_llm_failures_total",
		Help: "Total number of failed LLM completion calls.",
	}, []string{"provider"})

	FallbacksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "reviewdesk_generation_fallbacks_total",
		Help: "Generation flows that ended on a deterministic fallback.",
	}, []string{"flow", "reason"})

	ConflictsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "reviewdesk_rating_conflicts_total",
		Help: "Reviews whose rating contradicts the sentiment of their text.",
	})

	LogQueueSize = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "reviewdesk_log_queue_size",
		Help: "Current size of the log queue.",
	})

	LogsDroppedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "reviewdesk_logs_dropped_total",
		Help: "Total number of logs dropped due to a full queue.",
	})

	httpDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name: "reviewdesk_http_request_duration_seconds",
		Help: "Duration of HTTP requests.",
	}, []string{"path"})

	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "reviewdesk_http_requests_total",
		Help: "Total number of HTTP requests.",
	}, []string{"path", "method", "code"})
)

// RecordDBTime times f under the given operation label.
func RecordDBTime(operation string, f func() error) error {
	start := time.Now()
	err := f()
	DBDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	return err
}

// ObserveLLM records one completion call.
func ObserveLLM(provider string, d time.Duration, err error) {
	outcome := "success"
	if err != nil {
		outcome = "failure"
		LLMFailuresTotal.WithLabelValues(provider).Inc()
	}
	LLMDuration.WithLabelValues(provider, outcome).Observe(d.Seconds())
}

// PrometheusMiddleware counts requests per chi route pattern, so path
// parameters do not explode label cardinality.
func PrometheusMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		d := &responseData{
			status: 200,
		}
		lrw := loggingResponseWriter{
			ResponseWriter: w,
			responseData:   d,
		}
		next.ServeHTTP(&lrw, r)

		path := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				path = pattern
			}
		}
		httpRequestsTotal.WithLabelValues(path, r.Method, strconv.Itoa(d.status)).Inc()
		httpDuration.WithLabelValues(path).Observe(time.Since(start).Seconds())
	})
}

type responseData struct {
	status int
	size   int
}

type loggingResponseWriter struct {
	http.ResponseWriter
	responseData *responseData
}

func (r *loggingResponseWriter) Write(b []byte) (int, error) {
	size, err := r.ResponseWriter.Write(b)
	r.responseData.size += size
	return size, err
}

func (r *loggingResponseWriter) WriteHeader(statusCode int) {
	r.ResponseWriter.WriteHeader(statusCode)
	r.responseData.status = statusCode
}

func MetricsHandler() http.Handler {
	return promhttp.Handler()
}
