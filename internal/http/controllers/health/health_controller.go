// Package health contiene el controller para health checks.
package health

import (
	"context"
	"net/http"
	"time"

	"github.com/dropDatabas3/aestheticops/internal/http/helpers"
	"github.com/dropDatabas3/aestheticops/internal/observability/logger"
)

// Pinger es cualquier dependencia que sabe verificar su conexión (store,
// cache).
type Pinger interface {
	Ping(ctx context.Context) error
}

type response struct {
	Status     string            `json:"status"`
	Version    string            `json:"version,omitempty"`
	Components map[string]string `json:"components,omitempty"`
}

// HealthController maneja /healthz y /readyz.
type HealthController struct {
	version string
	checks  map[string]Pinger
	timeout time.Duration
}

// NewHealthController crea el controller. checks se consultan en /readyz.
func NewHealthController(version string, checks map[string]Pinger) *HealthController {
	return &HealthController{version: version, checks: checks, timeout: 2 * time.Second}
}

// Healthz maneja GET /healthz: el proceso responde.
func (c *HealthController) Healthz(w http.ResponseWriter, r *http.Request) {
	helpers.WriteJSON(w, http.StatusOK, response{Status: "ok", Version: c.version})
}

// Readyz maneja GET /readyz: 503 si alguna dependencia no responde.
func (c *HealthController) Readyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), c.timeout)
	defer cancel()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("HealthController.Readyz"))

	resp := response{Status: "ready", Version: c.version, Components: map[string]string{}}
	status := http.StatusOK
	for name, p := range c.checks {
		if p == nil {
			continue
		}
		if err := p.Ping(ctx); err != nil {
			log.Warn("readiness check failed", logger.String("component", name), logger.Err(err))
			resp.Components[name] = "down"
			resp.Status = "unavailable"
			status = http.StatusServiceUnavailable
			continue
		}
		resp.Components[name] = "up"
	}

	w.Header().Set("Cache-Control", "no-store")
	helpers.WriteJSON(w, status, resp)
}
