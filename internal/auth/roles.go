package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/tour-marketplace/internal/domain"
	apperrors "github.com/spec-kit/tour-marketplace/pkg/util"
)

// RequireRole admits principals whose active role satisfies one of allowed.
// Must run after AuthMiddleware.Handle.
func RequireRole(allowed ...domain.Role) fiber.Handler {
	allowedRoles := append([]domain.Role(nil), allowed...)

	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return apperrors.NewAuthenticationRequired("authentication required")
		}
		if !principal.ActiveRole.SatisfiesAny(allowedRoles...) {
			return apperrors.NewAccessDenied("insufficient role")
		}
		return c.Next()
	}
}

// RequireAuthenticated ensures a principal is attached, whatever its role.
func RequireAuthenticated() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, ok := PrincipalFromContext(c); !ok {
			return apperrors.NewAuthenticationRequired("authentication required")
		}
		return c.Next()
	}
}
