package httptransport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	agenthandler "fieldforce/internal/agent/handler"
	"fieldforce/internal/platform/health"
	adminmw "fieldforce/pkg/platform/middleware/admin"
	request "fieldforce/pkg/platform/middleware/request"
	"fieldforce/pkg/platform/validation"
)

const requestTimeout = 30 * time.Second

// Deps are the handlers and settings the router mounts.
type Deps struct {
	Agents     *agenthandler.Handler
	Health     *health.Handler
	AdminToken string
	Metrics    *request.Metrics
	// MetricsHandler serves /metrics. Nil uses the default Prometheus registry.
	MetricsHandler http.Handler
	Logger         *slog.Logger
}

// NewRouter wires the public, admin and ops endpoints with the middleware stack.
func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(request.Recovery(d.Logger))
	r.Use(request.RequestID)
	r.Use(request.Logger(d.Logger))
	r.Use(request.Timeout(requestTimeout))
	r.Use(request.ContentTypeJSON)
	r.Use(request.BodyLimit(validation.MaxBodySize))
	r.Use(request.LatencyMiddleware(d.Metrics, routePattern))

	// Ops
	d.Health.Register(r)
	metricsHandler := d.MetricsHandler
	if metricsHandler == nil {
		metricsHandler = promhttp.Handler()
	}
	r.Method(http.MethodGet, "/metrics", metricsHandler)

	// Agents
	d.Agents.Register(r)
	r.Group(func(r chi.Router) {
		r.Use(adminmw.RequireAdminToken(d.AdminToken, d.Logger))
		d.Agents.RegisterAdmin(r)
	})

	return r
}

// routePattern is read after the handler ran, once chi has filled in the pattern.
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		return rctx.RoutePattern()
	}
	return ""
}
