package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/talent-gateway/internal/api/dto"
	"github.com/spec-kit/talent-gateway/internal/auth"
	"github.com/spec-kit/talent-gateway/internal/service"
	"github.com/spec-kit/talent-gateway/internal/upstream"
	apperrors "github.com/spec-kit/talent-gateway/pkg/util"
)

// AuthHandler exposes login, logout and session introspection.
type AuthHandler struct {
	auth *service.AuthService
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: authService}
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewMalformedPayload(err)
	}
	if req.Email == "" || req.Password == "" {
		return apperrors.NewMalformedPayload(errors.New("email and password required"))
	}

	identity, token, expiresAt, err := h.auth.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, upstream.ErrInvalidCredentials):
			return apperrors.NewInvalidCredentials()
		case errors.Is(err, upstream.ErrUpstreamUnavailable):
			return apperrors.NewUpstreamUnavailable(err)
		default:
			return apperrors.NewInternalError(err)
		}
	}

	auth.SetSessionCookie(c, token, expiresAt)

	return c.JSON(fiber.Map{
		"data": fiber.Map{
			"identity": dto.IdentityResponse{
				ID:     identity.SubjectID,
				Email:  identity.Email,
				Role:   string(identity.Role),
				Status: identity.Status,
			},
			"auth": dto.AuthResponse{Token: token, ExpiresAt: expiresAt},
		},
	})
}

// Logout handles POST /auth/logout. Sessions are stateless signed tokens, so
// logout only discards the cookie; expiry remains the sole invalidation.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	auth.ClearSessionCookie(c)
	return c.JSON(fiber.Map{"data": fiber.Map{"logged_out": true}})
}

// Me handles GET /auth/me.
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	identity, ok := auth.IdentityFromContext(c)
	if !ok {
		return apperrors.NewAuthenticationRequired()
	}
	return c.JSON(fiber.Map{
		"data": dto.IdentityResponse{
			ID:     identity.SubjectID,
			Email:  identity.Email,
			Role:   string(identity.Role),
			Status: identity.Status,
		},
	})
}
