package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/kopaska88/pengaduan-jokerbola/internal/persistence"
	"github.com/kopaska88/pengaduan-jokerbola/internal/store"
)

// HealthHandler responds to liveness and readiness probes.
type HealthHandler struct {
	serviceName string
	version     string
	records     store.RecordStore
	redis       *persistence.Redis
}

// NewHealthHandler returns a new handler instance. redis may be nil
// when the deployment runs without one.
func NewHealthHandler(serviceName, version string, records store.RecordStore, redis *persistence.Redis) *HealthHandler {
	return &HealthHandler{serviceName: serviceName, version: version, records: records, redis: redis}
}

// Live reports service liveness.
func (h *HealthHandler) Live(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "alive",
		"service": h.serviceName,
		"version": h.version,
	})
}

// Ready reports service readiness by checking dependencies.
func (h *HealthHandler) Ready(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	depStatus := fiber.Map{}
	ready := true

	if pinger, ok := h.records.(store.Pinger); ok {
		if err := pinger.Ping(ctx); err != nil {
			depStatus["record_store"] = err.Error()
			ready = false
		} else {
			depStatus["record_store"] = "ok"
		}
	} else {
		depStatus["record_store"] = "not probed"
	}

	if h.redis != nil {
		if err := h.redis.Ping(ctx); err != nil {
			depStatus["redis"] = err.Error()
			ready = false
		} else {
			depStatus["redis"] = "ok"
		}
	}

	if ready {
		return c.JSON(fiber.Map{
			"status":       "ready",
			"dependencies": depStatus,
		})
	}

	return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
		"error": fiber.Map{
			"code":    "DEPENDENCY_UNAVAILABLE",
			"message": "one or more dependencies unavailable",
			"details": depStatus,
		},
	})
}
