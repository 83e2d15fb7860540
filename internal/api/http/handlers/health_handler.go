package handlers

import (
	"github.com/gofiber/fiber/v2"
)

// HealthHandler responds to liveness and readiness probes. The gateway keeps
// no connections of its own, so readiness reports configuration only; a dead
// backend surfaces through proxied responses, not through readiness.
type HealthHandler struct {
	serviceName string
	version     string
	upstreamURL string
}

// NewHealthHandler returns a new handler instance.
func NewHealthHandler(serviceName, version, upstreamURL string) *HealthHandler {
	return &HealthHandler{serviceName: serviceName, version: version, upstreamURL: upstreamURL}
}

// Live reports service liveness.
func (h *HealthHandler) Live(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "alive",
		"service": h.serviceName,
		"version": h.version,
	})
}

// Ready reports service readiness.
func (h *HealthHandler) Ready(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":   "ready",
		"upstream": h.upstreamURL,
	})
}
