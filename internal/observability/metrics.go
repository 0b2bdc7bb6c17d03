package observability

import (
	"net/http"
	"regexp"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics mengumpulkan metrik Prometheus untuk klien POS.
type Metrics struct {
	registry          *prometheus.Registry
	handler           http.Handler
	apiRequests       *prometheus.CounterVec
	apiDuration       *prometheus.HistogramVec
	cartMutations     *prometheus.CounterVec
	checkouts         *prometheus.CounterVec
	servedRequests    *prometheus.CounterVec
	servedRequestTime *prometheus.HistogramVec
}

// NewMetrics menginisialisasi registry dan metrik dasar.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	apiRequests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "pos_api_requests_total",
		Help: "Backend API calls by method, route and status code.",
	}, []string{"method", "route", "code"})
	apiDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "pos_api_request_duration_seconds",
		Help:    "Backend API call latency by route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})
	cartMutations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "pos_cart_mutations_total",
		Help: "Cart mutations by operation.",
	}, []string{"op"})
	checkouts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "pos_checkouts_total",
		Help: "Checkout attempts by outcome.",
	}, []string{"outcome"})
	served := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "pos_http_requests_total",
		Help: "Requests served by route and status.",
	}, []string{"route", "code"})
	servedTime := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "pos_http_request_duration_seconds",
		Help:    "Served request latency per route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})
	registry.MustRegister(apiRequests, apiDuration, cartMutations, checkouts, served, servedTime)
	return &Metrics{
		registry:          registry,
		handler:           promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		apiRequests:       apiRequests,
		apiDuration:       apiDuration,
		cartMutations:     cartMutations,
		checkouts:         checkouts,
		servedRequests:    served,
		servedRequestTime: servedTime,
	}
}

// Handler mengembalikan http.Handler untuk endpoint /metrics.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// Transport wraps next so every backend call is counted and timed.
// Transport errors are recorded with code "error".
func (m *Metrics) Transport(next http.RoundTripper) http.RoundTripper {
	if next == nil {
		next = http.DefaultTransport
	}
	if m == nil {
		return next
	}
	return roundTripFunc(func(req *http.Request) (*http.Response, error) {
		start := time.Now()
		route := RouteLabel(req.URL.Path)
		resp, err := next.RoundTrip(req)
		code := "error"
		if err == nil {
			code = strconv.Itoa(resp.StatusCode)
		}
		m.apiRequests.WithLabelValues(req.Method, route, code).Inc()
		m.apiDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
		return resp, err
	})
}

// CartMutation counts one cart operation (add, change, remove, clear).
func (m *Metrics) CartMutation(op string) {
	if m == nil {
		return
	}
	m.cartMutations.WithLabelValues(op).Inc()
}

// Checkout counts one checkout attempt outcome.
func (m *Metrics) Checkout(outcome string) {
	if m == nil {
		return
	}
	m.checkouts.WithLabelValues(outcome).Inc()
}

// Middleware mencatat metrik untuk setiap permintaan ke server metrik.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(&recorder, r)
		route := routePattern(r)
		m.servedRequests.WithLabelValues(route, strconv.Itoa(recorder.status)).Inc()
		m.servedRequestTime.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}

var numericSegment = regexp.MustCompile(`/\d+(/|$)`)

// RouteLabel collapses numeric path segments so ids do not explode label cardinality.
func RouteLabel(path string) string {
	if path == "" {
		return "/"
	}
	for numericSegment.MatchString(path) {
		path = numericSegment.ReplaceAllString(path, "/{id}$1")
	}
	return path
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) { return f(req) }

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func routePattern(r *http.Request) string {
	if routeCtx := chi.RouteContext(r.Context()); routeCtx != nil {
		if pattern := routeCtx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return "unknown"
}
