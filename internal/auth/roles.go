package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/talent-gateway/internal/domain"
	apperrors "github.com/spec-kit/talent-gateway/pkg/util"
)

// RequireAuth ensures the caller presented a valid session.
func RequireAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, ok := IdentityFromContext(c); !ok {
			return apperrors.NewAuthenticationRequired()
		}
		return c.Next()
	}
}

// RequireRole ensures the session role is one of the allowed roles. This
// guards individual API operations and is enforced independently of the
// page-level redirect guard, even though both share the role vocabulary.
func RequireRole(allowed ...domain.Role) fiber.Handler {
	allowedSet := make(map[domain.Role]struct{}, len(allowed))
	for _, role := range allowed {
		allowedSet[role] = struct{}{}
	}

	return func(c *fiber.Ctx) error {
		identity, ok := IdentityFromContext(c)
		if !ok {
			return apperrors.NewAuthenticationRequired()
		}
		if len(allowedSet) == 0 {
			return c.Next()
		}
		if _, exists := allowedSet[identity.Role]; !exists {
			return apperrors.NewRoleRequired(identity.Role)
		}
		return c.Next()
	}
}

// RequireAdmin ensures the session belongs to an administrator.
func RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		identity, ok := IdentityFromContext(c)
		if !ok {
			return apperrors.NewAuthenticationRequired()
		}
		if identity.Role != domain.RoleAdmin {
			return apperrors.NewAdminRequired()
		}
		return c.Next()
	}
}
