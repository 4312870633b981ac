package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/kopaska88/pengaduan-jokerbola/internal/observability"
	"github.com/kopaska88/pengaduan-jokerbola/internal/session"
)

// MetricsHandler exposes the in-memory counters as JSON.
type MetricsHandler struct {
	metrics  *observability.Metrics
	sessions *session.Store
}

// NewMetricsHandler returns a new handler instance.
func NewMetricsHandler(metrics *observability.Metrics, sessions *session.Store) *MetricsHandler {
	return &MetricsHandler{metrics: metrics, sessions: sessions}
}

// Snapshot renders current counter values plus the live session count.
func (h *MetricsHandler) Snapshot(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"counters":      h.metrics.Snapshot(),
		"live_sessions": h.sessions.Len(),
	})
}
