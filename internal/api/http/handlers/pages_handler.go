package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/talent-gateway/internal/auth"
	"github.com/spec-kit/talent-gateway/internal/guard"
)

// PagesHandler serves the guarded page namespaces. Browsing traffic gets
// redirects, not JSON errors; allowed requests are proxied like any other.
type PagesHandler struct {
	table *guard.Table
	proxy *ProxyHandler
}

// NewPagesHandler constructs handler.
func NewPagesHandler(table *guard.Table, proxyHandler *ProxyHandler) *PagesHandler {
	return &PagesHandler{table: table, proxy: proxyHandler}
}

// Handle evaluates the guard table and either redirects or dispatches.
func (h *PagesHandler) Handle() fiber.Handler {
	forward := h.proxy.PassThrough("Page unavailable")

	return func(c *fiber.Ctx) error {
		identity, _ := auth.IdentityFromContext(c)

		decision := h.table.Decide(c.Path(), identity)
		if decision.Action == guard.ActionRedirect {
			return c.Redirect(decision.Target, fiber.StatusFound)
		}
		return forward(c)
	}
}
