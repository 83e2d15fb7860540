package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/talent-gateway/internal/auth"
	"github.com/spec-kit/talent-gateway/internal/proxy"
	apperrors "github.com/spec-kit/talent-gateway/pkg/util"
)

// TargetFunc derives the backend path for a request.
type TargetFunc func(c *fiber.Ctx) string

// ProxyHandler turns routes into thin instantiations of the dispatch
// contract. Only the target path and fallback message vary per route; the
// trust and error-shaping logic is shared, never special-cased.
type ProxyHandler struct {
	dispatcher *proxy.Dispatcher
}

// NewProxyHandler constructs handler.
func NewProxyHandler(dispatcher *proxy.Dispatcher) *ProxyHandler {
	return &ProxyHandler{dispatcher: dispatcher}
}

// PassThrough forwards the request path to the backend unchanged.
func (h *ProxyHandler) PassThrough(fallback string) fiber.Handler {
	return h.Forward(func(c *fiber.Ctx) string { return c.Path() }, fallback)
}

// Fixed forwards every request to one backend path.
func (h *ProxyHandler) Fixed(path, fallback string) fiber.Handler {
	return h.Forward(func(*fiber.Ctx) string { return path }, fallback)
}

// Forward builds a handler that dispatches to the derived target path and
// relays the backend response verbatim.
func (h *ProxyHandler) Forward(target TargetFunc, fallback string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		identity, _ := auth.IdentityFromContext(c)

		resp, err := h.dispatcher.Dispatch(c.UserContext(), proxy.Request{
			Method:      c.Method(),
			Path:        target(c),
			RawQuery:    string(c.Request().URI().QueryString()),
			Body:        c.Body(),
			ContentType: c.Get(fiber.HeaderContentType),
			Identity:    identity,
			RequestID:   c.GetRespHeader(fiber.HeaderXRequestID),
			Fallback:    fallback,
		})
		if err != nil {
			if errors.Is(err, proxy.ErrUpstreamUnavailable) {
				return apperrors.NewUpstreamUnavailable(err)
			}
			return apperrors.NewInternalError(err)
		}

		c.Set(fiber.HeaderContentType, resp.ContentType)
		return c.Status(resp.StatusCode).Send(resp.Body)
	}
}
