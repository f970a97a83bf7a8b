package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
)

var requestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: "go_bpmn_history",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "Duration of HTTP requests, by method, route pattern and status code",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"method", "pattern", "status"},
)

// statusRecorder captures the status code, written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (w *statusRecorder) WriteHeader(statusCode int) {
	w.status = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}

// loggingHandler provides the logger via request context, logs one line per request and observes its duration.
type loggingHandler struct {
	logger  zerolog.Logger
	handler http.Handler
}

func (h *loggingHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	r = r.WithContext(h.logger.WithContext(r.Context()))

	rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
	h.handler.ServeHTTP(rec, r)

	duration := time.Since(start)

	// set by the mux, when a route matched
	pattern := r.Pattern
	if pattern == "" {
		pattern = "unmatched"
	}

	requestDuration.WithLabelValues(r.Method, pattern, strconv.Itoa(rec.status)).Observe(duration.Seconds())

	var event *zerolog.Event
	if rec.status >= http.StatusInternalServerError {
		event = h.logger.Error()
	} else {
		event = h.logger.Info()
	}

	event.
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Int("status", rec.status).
		Dur("duration", duration).
		Msg("request")
}
