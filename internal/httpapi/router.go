package httpapi

import (
	"net/http"

	"go.uber.org/zap"
)

// Router wraps the standard library http.ServeMux; no third-party router is
// worth the dependency for a handful of prefixes.
type Router struct {
	mux    *http.ServeMux
	logger *zap.Logger
}

func NewRouter(logger *zap.Logger) *Router {
	return &Router{
		mux:    http.NewServeMux(),
		logger: logger,
	}
}

func (r *Router) Handle(pattern string, h http.HandlerFunc) {
	r.mux.HandleFunc(pattern, h)
}

func (r *Router) HandleHandler(pattern string, h http.Handler) {
	r.mux.Handle(pattern, h)
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

// RegisterRecordRoutes mounts the per-kind record API.
func (r *Router) RegisterRecordRoutes(h *RecordHandler) {
	r.HandleHandler("/api/v1/records/", h)
}

// RegisterReportRoutes mounts the dashboard summary.
func (r *Router) RegisterReportRoutes(h *ReportHandler) {
	r.Handle("/api/v1/reports/summary", h.Summary)
}

// RegisterHealthRoutes mounts liveness and readiness.
func (r *Router) RegisterHealthRoutes(h *HealthHandler) {
	r.Handle("/healthz", h.Healthz)
	r.Handle("/readyz", h.Readyz)
}
