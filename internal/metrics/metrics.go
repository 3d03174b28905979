package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shop_admin_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "shop_admin_http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path", "status"},
	)

	backendRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shop_admin_backend_requests_total",
			Help: "Total number of calls to the shop backend",
		},
		[]string{"operation", "outcome"},
	)

	backendRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "shop_admin_backend_request_duration_seconds",
			Help:    "Duration of calls to the shop backend",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	workflowTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shop_admin_payment_workflow_transitions_total",
			Help: "Payment workflow step transitions",
		},
		[]string{"from", "to"},
	)

	boardLoads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shop_admin_cart_board_loads_total",
			Help: "Admin cart board loads",
		},
		[]string{"status"},
	)

	boardPlaceholderRows = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "shop_admin_cart_board_placeholder_rows_total",
			Help: "Cart rows replaced by an empty placeholder after a fetch failure",
		},
	)

	cartOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shop_admin_cart_operations_total",
			Help: "Admin cart mutations",
		},
		[]string{"operation", "status"},
	)

	outboxPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shop_admin_outbox_events_total",
			Help: "Events written to the admin event stream",
		},
		[]string{"status"},
	)

	outboxDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "shop_admin_outbox_queue_depth",
			Help: "Events waiting to be published",
		},
	)
)

// Middleware records request count and latency per chi route pattern.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		path := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				path = pattern
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		code := strconv.Itoa(status)

		httpRequestsTotal.WithLabelValues(r.Method, path, code).Inc()
		httpRequestDuration.WithLabelValues(r.Method, path, code).Observe(time.Since(start).Seconds())
	})
}

func Handler() http.Handler {
	return promhttp.Handler()
}

func RecordBackendCall(operation, outcome string, elapsed time.Duration) {
	backendRequestsTotal.WithLabelValues(operation, outcome).Inc()
	backendRequestDuration.WithLabelValues(operation).Observe(elapsed.Seconds())
}

func RecordWorkflowTransition(from, to string) {
	workflowTransitions.WithLabelValues(from, to).Inc()
}

func RecordBoardLoad(success bool, placeholders int) {
	boardLoads.WithLabelValues(statusLabel(success)).Inc()
	if placeholders > 0 {
		boardPlaceholderRows.Add(float64(placeholders))
	}
}

func RecordCartOperation(operation string, success bool) {
	cartOperations.WithLabelValues(operation, statusLabel(success)).Inc()
}

func RecordOutboxPublish(success bool, n int) {
	outboxPublished.WithLabelValues(statusLabel(success)).Add(float64(n))
}

func SetOutboxDepth(n int) {
	outboxDepth.Set(float64(n))
}

func statusLabel(success bool) string {
	if success {
		return "success"
	}
	return "error"
}
