package httpapi

import (
	"context"
	"net/http"
	"time"

	"kojen-data/internal/domain"

	"go.uber.org/zap"
)

// Pinger is the health slice of the sheets client.
type Pinger interface {
	Ping(ctx context.Context, kind domain.Kind) error
}

// HealthHandler reports service liveness and, per record kind, whether the
// backing web app answers its test action.
type HealthHandler struct {
	pinger Pinger
	kinds  []domain.Kind
	logger *zap.Logger
}

func NewHealthHandler(pinger Pinger, kinds []domain.Kind, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{pinger: pinger, kinds: kinds, logger: logger}
}

// Healthz is pure liveness: the process is up and serving.
func (h *HealthHandler) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

// Readyz probes each configured web app. The service stays "degraded" rather
// than failing outright when a module is unreachable, because every read path
// falls back to the cache.
func (h *HealthHandler) Readyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	modules := make(map[string]string, len(h.kinds))
	status := "ok"
	for _, kind := range h.kinds {
		if err := h.pinger.Ping(ctx, kind); err != nil {
			h.logger.Warn("module ping failed", zap.String("module", string(kind)), zap.Error(err))
			modules[string(kind)] = "unreachable"
			status = "degraded"
		} else {
			modules[string(kind)] = "ok"
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":  status,
		"modules": modules,
	})
}
